package parse

import (
	"fmt"
	"strings"
)

// SheetCSV parses a spreadsheet CSV export with flexible header matching: any
// column containing "date", "description"/"merchant"/"name", and "amount".
// Rows that do not fit are skipped silently; an empty sheet is not an error.
// Sheet rows use the internal sign convention already (positive = expense),
// with parentheses or a leading minus marking an inflow.
func SheetCSV(content string) ([]ParsedTransaction, error) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) < 2 {
		return nil, nil
	}

	header := splitLine(lines[0])
	dateIdx, descIdx, amountIdx := -1, -1, -1
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case dateIdx == -1 && strings.Contains(h, "date"):
			dateIdx = i
		case descIdx == -1 && (strings.Contains(h, "description") || strings.Contains(h, "merchant") || strings.Contains(h, "name")):
			descIdx = i
		case amountIdx == -1 && strings.Contains(h, "amount"):
			amountIdx = i
		}
	}

	if dateIdx == -1 || descIdx == -1 || amountIdx == -1 {
		return nil, fmt.Errorf("%w: found %s, need Date, Description, Amount",
			ErrBadColumns, strings.Join(header, ", "))
	}

	var transactions []ParsedTransaction
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cols := splitLine(line)
		if len(cols) <= dateIdx || len(cols) <= descIdx || len(cols) <= amountIdx {
			continue
		}

		dateStr := strings.TrimSpace(cols[dateIdx])
		description := strings.TrimSpace(cols[descIdx])
		amountStr := strings.TrimSpace(cols[amountIdx])
		if dateStr == "" || description == "" || amountStr == "" {
			continue
		}

		date, ok := parseDate(dateStr)
		if !ok {
			continue
		}

		cents, err := amountCents(amountStr)
		if err != nil {
			continue
		}

		transactions = append(transactions, ParsedTransaction{
			AmountCents: cents,
			Merchant:    description,
			Date:        date,
			IsCredit:    cents < 0,
		})
	}

	return transactions, nil
}
