package parse

import (
	"fmt"
	"regexp"
	"strings"
)

// CSVResult carries the rows that parsed plus per-row errors for the ones
// that did not. The batch only fails wholesale when zero rows parse.
type CSVResult struct {
	Transactions []ParsedTransaction
	Errors       []string
}

var (
	txDateCol   = regexp.MustCompile(`(?i)transaction\s*date`)
	postDateCol = regexp.MustCompile(`(?i)posting\s*date`)
	descCol     = regexp.MustCompile(`(?i)description`)
	amountCol   = regexp.MustCompile(`(?i)^amount$`)
)

// BankCSV parses a bank CSV export. The file uses the bank's sign convention
// (negative = charge, positive = credit), which is inverted into the internal
// one (positive = outflow) here.
func BankCSV(content string) (*CSVResult, error) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) < 2 {
		return nil, ErrEmptyFile
	}

	header := splitLine(lines[0])
	dateIdx := findColumn(header, txDateCol)
	if dateIdx == -1 {
		dateIdx = findColumn(header, postDateCol)
	}
	descIdx := findColumn(header, descCol)
	amountIdx := findColumn(header, amountCol)

	if dateIdx == -1 || descIdx == -1 || amountIdx == -1 {
		return nil, fmt.Errorf("%w: found columns %s, expected Posting Date (or Transaction Date), Description, Amount",
			ErrBadColumns, strings.Join(header, ", "))
	}

	result := &CSVResult{}
	for i, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rowNum := i + 2

		cols := splitLine(line)
		if len(cols) <= dateIdx || len(cols) <= descIdx || len(cols) <= amountIdx {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: too few columns", rowNum))
			continue
		}

		date, ok := parseDate(cols[dateIdx])
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid date", rowNum))
			continue
		}

		cents, err := amountCents(cols[amountIdx])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid amount", rowNum))
			continue
		}

		// Source: negative = charge, positive = credit. Flip into the
		// internal convention.
		isCredit := cents > 0
		result.Transactions = append(result.Transactions, ParsedTransaction{
			AmountCents: -cents,
			Merchant:    cols[descIdx],
			Date:        date,
			IsCredit:    isCredit,
		})
	}

	if len(result.Transactions) == 0 {
		if len(result.Errors) > 0 {
			return nil, fmt.Errorf("no rows parsed: %s", strings.Join(result.Errors, "; "))
		}
		return nil, ErrEmptyFile
	}
	return result, nil
}

func findColumn(header []string, pattern *regexp.Regexp) int {
	for i, h := range header {
		if pattern.MatchString(h) {
			return i
		}
	}
	return -1
}
