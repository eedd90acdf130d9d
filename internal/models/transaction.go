package models

import (
	"fmt"
	"strings"
	"time"
)

// Transaction is a single bank money movement. Amounts are signed integer
// minor units: positive = outflow/expense, negative = inflow/credit.
type Transaction struct {
	ID            string    `json:"id"`
	FamilyID      string    `json:"family_id"`
	AccountID     string    `json:"account_id"`
	ExternalID    string    `json:"external_id"`
	Amount        int64     `json:"amount"`
	Name          string    `json:"name"`
	MerchantName  *string   `json:"merchant_name"`
	Date          time.Time `json:"date"`
	Pending       bool      `json:"pending"`
	Hidden        bool      `json:"is_hidden"`
	CategoryID    *string   `json:"category_id"`
	LinkedEventID *string   `json:"linked_event_id"`
	SkipAutoMatch bool      `json:"skip_auto_match"`
	CreatedAt     time.Time `json:"created_at"`
}

// DisplayName returns the merchant name when one was resolved, otherwise the
// raw statement name.
func (t *Transaction) DisplayName() string {
	if t.MerchantName != nil && *t.MerchantName != "" {
		return *t.MerchantName
	}
	return t.Name
}

// Fingerprint returns the duplicate-detection key for this transaction.
// Two imports of the same (amount, name, date) triple collapse to one row.
func (t *Transaction) Fingerprint() string {
	return TransactionFingerprint(t.Amount, t.Name, t.Date)
}

func TransactionFingerprint(amount int64, name string, date time.Time) string {
	return fmt.Sprintf("%d|%s|%s", amount, strings.ToLower(name), date.Format("2006-01-02"))
}
