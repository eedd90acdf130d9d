package models

import "time"

// BankConnection groups accounts from one institution or import source.
// Import sources (CSV upload, webhook, spreadsheet sync) get a virtual
// connection whose ExternalItemID is the source tag.
type BankConnection struct {
	ID              string     `json:"id"`
	FamilyID        string     `json:"family_id"`
	ExternalItemID  string     `json:"external_item_id"`
	InstitutionName string     `json:"institution_name"`
	Status          string     `json:"status"`
	LastSyncedAt    *time.Time `json:"last_synced_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// BankAccount holds transactions. Virtual accounts are keyed by the same
// source tag as their connection; (family_id, external_account_id) is unique.
type BankAccount struct {
	ID                string    `json:"id"`
	ConnectionID      string    `json:"connection_id"`
	FamilyID          string    `json:"family_id"`
	ExternalAccountID string    `json:"external_account_id"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	Subtype           string    `json:"subtype"`
	Mask              *string   `json:"mask"`
	Tracked           bool      `json:"is_tracked"`
	CreatedAt         time.Time `json:"created_at"`
}
