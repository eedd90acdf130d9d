// Package parse converts heterogeneous transaction sources (bank CSV exports,
// forwarded alert emails, spreadsheet rows) into a common ParsedTransaction
// shape for ingestion.
package parse

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParsedTransaction is the normalized form every source reduces to.
// AmountCents follows the internal sign convention: positive = outflow,
// negative = inflow.
type ParsedTransaction struct {
	AmountCents int64     `json:"amount_cents"`
	Merchant    string    `json:"merchant"`
	Date        time.Time `json:"date"`
	CardLast4   string    `json:"card_last4,omitempty"`
	IsCredit    bool      `json:"is_credit"`
}

var (
	ErrNoAmount    = errors.New("could not find amount")
	ErrNoMerchant  = errors.New("merchant is required")
	ErrEmptyFile   = errors.New("file is empty or has no data rows")
	ErrBadColumns  = errors.New("required columns not found")
	ErrBadPayload  = errors.New("unrecognized payload shape")
)

var centsFactor = decimal.NewFromInt(100)

// amountCents parses a money string ("45.67", "$1,234.50", "(12.00)") into
// signed minor units. Parenthesized amounts are negative (accounting
// notation).
func amountCents(s string) (int64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, ErrNoAmount
	}
	cents := d.Mul(centsFactor).Round(0).IntPart()
	if negative {
		cents = -cents
	}
	return cents, nil
}

// splitLine splits a single CSV line honoring double-quoted fields. The
// sources here need per-line tolerance (bad rows skipped, stray quotes
// forgiven), which rules out a whole-file reader.
func splitLine(line string) []string {
	var result []string
	var current strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	result = append(result, strings.TrimSpace(current.String()))
	return result
}

// dateOnly truncates to a calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDate tries the date shapes the sources produce: M/D/YYYY, M/D/YY,
// and YYYY-MM-DD.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"1/2/2006", "1/2/06", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}
