package models

import (
	"errors"
	"strings"
	"time"
)

type CategoryType string

const (
	CategoryTypeBudget CategoryType = "budget"
	CategoryTypeEvent  CategoryType = "event"
)

// MerchantCategory is a keyword-based classification rule. Budget-type
// categories carry a monthly budget; event-type categories point at a fixed
// event. Exactly one of MonthlyBudget/EventID is set, per Type.
type MerchantCategory struct {
	ID            string       `json:"id"`
	FamilyID      string       `json:"family_id"`
	Name          string       `json:"name"`
	Keywords      []string     `json:"keywords"`
	Type          CategoryType `json:"category_type"`
	MonthlyBudget *int64       `json:"monthly_budget"`
	EventID       *string      `json:"event_id"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// MerchantRule is the legacy single-keyword rule: one keyword links to one
// event, keyword unique per family.
type MerchantRule struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"family_id"`
	Keyword   string    `json:"keyword"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrNoKeywords      = errors.New("at least one keyword is required")
	ErrBudgetRequired  = errors.New("monthly budget is required for budget-type categories")
	ErrEventRequired   = errors.New("event is required for event-type categories")
	ErrBadCategoryType = errors.New("category type must be budget or event")
)

// NormalizeKeywords lowercases, trims, and drops empty keyword entries.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Validate normalizes the keyword list and checks the type-dependent field
// pairing. Call before persisting a new or updated category.
func (c *MerchantCategory) Validate() error {
	c.Keywords = NormalizeKeywords(c.Keywords)
	if len(c.Keywords) == 0 {
		return ErrNoKeywords
	}
	switch c.Type {
	case CategoryTypeBudget:
		if c.MonthlyBudget == nil || *c.MonthlyBudget <= 0 {
			return ErrBudgetRequired
		}
		c.EventID = nil
	case CategoryTypeEvent:
		if c.EventID == nil || *c.EventID == "" {
			return ErrEventRequired
		}
		c.MonthlyBudget = nil
	default:
		return ErrBadCategoryType
	}
	return nil
}
