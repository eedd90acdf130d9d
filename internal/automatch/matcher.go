// Package automatch links unclassified bank transactions to events and
// merchant categories.
//
// Stages, in priority order (first hit wins per transaction):
//
//  1. Event-title match: merchant text and event title contain each other or
//     share a significant keyword, transaction dated in the event's month.
//  2. Merchant category keywords: budget-type tags the transaction only;
//     event-type tags and links to the category's event (same-month).
//  3. Legacy single-keyword rules (same-month).
//
// Category links deliberately allow many transactions on one event (grouping
// recurring bills); every other link type is one-to-one, enforced against
// both persisted links and links made earlier in the same run.
package automatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mholloway/tally/internal/models"
)

type MatchType string

const (
	MatchCategory   MatchType = "category"
	MatchRule       MatchType = "keyword_rule"
	MatchEventTitle MatchType = "event_title"
)

// Detail records one successful match for reporting.
type Detail struct {
	TransactionID   string    `json:"transaction_id"`
	EventID         string    `json:"event_id,omitempty"`
	TransactionName string    `json:"transaction_name"`
	EventTitle      string    `json:"event_title"`
	MatchType       MatchType `json:"match_type"`
}

type Result struct {
	Matched int      `json:"matched"`
	Details []Detail `json:"details"`
}

// Store is the persistence surface for one matching run. LinkTransaction
// must set the transaction's linked event and mark the event completed with
// the transaction's amount as actual cost, in that order.
type Store interface {
	ListUnmatched(ctx context.Context, familyID string) ([]*models.Transaction, error)
	ListCategories(ctx context.Context, familyID string) ([]*models.MerchantCategory, error)
	ListRules(ctx context.Context, familyID string) ([]*models.MerchantRule, error)
	ListEvents(ctx context.Context, familyID string) ([]*models.Event, error)
	ListLinkedEventIDs(ctx context.Context, familyID string) (map[string]struct{}, error)
	TagCategory(ctx context.Context, transactionID, categoryID string) error
	LinkTransaction(ctx context.Context, transactionID, eventID string, amount int64) error
}

// monthTolerance lets a transaction dated a few days outside the event's
// calendar month still count as in-month (statements often post across the
// boundary).
const monthTolerance = 3 * 24 * time.Hour

type Matcher struct {
	store  Store
	logger *log.Logger
}

func New(store Store, logger *log.Logger) *Matcher {
	return &Matcher{store: store, logger: logger}
}

// Run scans every unlinked, visible, match-eligible transaction for the
// family and attempts to classify each one. State is loaded once; the pass
// itself is sequential and in-memory.
func (m *Matcher) Run(ctx context.Context, familyID string) (*Result, error) {
	result := &Result{Details: []Detail{}}

	transactions, err := m.store.ListUnmatched(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if len(transactions) == 0 {
		return result, nil
	}

	categories, err := m.store.ListCategories(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	rules, err := m.store.ListRules(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	events, err := m.store.ListEvents(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	linked, err := m.store.ListLinkedEventIDs(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("load linked events: %w", err)
	}

	eventByID := make(map[string]*models.Event, len(events))
	for _, event := range events {
		eventByID[event.ID] = event
	}

	claims := newClaimSet(linked)

	for _, tx := range transactions {
		detail, err := m.matchOne(ctx, tx, events, eventByID, categories, rules, claims)
		if err != nil {
			return nil, err
		}
		if detail != nil {
			result.Matched++
			result.Details = append(result.Details, *detail)
		}
	}

	m.logger.Info("auto-match complete", "family", familyID,
		"scanned", len(transactions), "matched", result.Matched)
	return result, nil
}

func (m *Matcher) matchOne(
	ctx context.Context,
	tx *models.Transaction,
	events []*models.Event,
	eventByID map[string]*models.Event,
	categories []*models.MerchantCategory,
	rules []*models.MerchantRule,
	claims *claimSet,
) (*Detail, error) {
	merchant := strings.ToLower(strings.TrimSpace(tx.DisplayName()))
	if merchant == "" {
		// An empty merchant substring-matches every title.
		return nil, nil
	}
	merchantKeywords := extractKeywords(merchant)

	// Stage 1: event titles.
	for _, event := range events {
		if event.Status == models.EventStatusCancelled {
			continue
		}
		if !claims.available(event.ID) {
			continue
		}
		if !inEventMonth(tx.Date, event.Date) {
			continue
		}

		title := strings.ToLower(event.Title)
		titleMatch := strings.Contains(merchant, title) ||
			strings.Contains(title, merchant) ||
			keywordsOverlap(merchantKeywords, extractKeywords(title))
		if !titleMatch {
			continue
		}

		if err := m.store.LinkTransaction(ctx, tx.ID, event.ID, tx.Amount); err != nil {
			return nil, fmt.Errorf("link transaction %s: %w", tx.ID, err)
		}
		claims.claim(event.ID)
		return &Detail{
			TransactionID:   tx.ID,
			EventID:         event.ID,
			TransactionName: tx.Name,
			EventTitle:      event.Title,
			MatchType:       MatchEventTitle,
		}, nil
	}

	// Stage 2: merchant categories.
	for _, category := range categories {
		if !keywordHit(merchant, category.Keywords) {
			continue
		}

		switch category.Type {
		case models.CategoryTypeBudget:
			if err := m.store.TagCategory(ctx, tx.ID, category.ID); err != nil {
				return nil, fmt.Errorf("tag transaction %s: %w", tx.ID, err)
			}
			return &Detail{
				TransactionID:   tx.ID,
				TransactionName: tx.Name,
				EventTitle:      category.Name,
				MatchType:       MatchCategory,
			}, nil

		case models.CategoryTypeEvent:
			if category.EventID == nil {
				continue
			}
			event, ok := eventByID[*category.EventID]
			if !ok || !inEventMonth(tx.Date, event.Date) {
				continue
			}
			if err := m.store.TagCategory(ctx, tx.ID, category.ID); err != nil {
				return nil, fmt.Errorf("tag transaction %s: %w", tx.ID, err)
			}
			// Category links group many transactions onto one event, so the
			// event is not claimed.
			if err := m.store.LinkTransaction(ctx, tx.ID, event.ID, tx.Amount); err != nil {
				return nil, fmt.Errorf("link transaction %s: %w", tx.ID, err)
			}
			return &Detail{
				TransactionID:   tx.ID,
				EventID:         event.ID,
				TransactionName: tx.Name,
				EventTitle:      event.Title,
				MatchType:       MatchCategory,
			}, nil
		}
	}

	// Stage 3: legacy keyword rules.
	for _, rule := range rules {
		if !strings.Contains(merchant, strings.ToLower(rule.Keyword)) {
			continue
		}
		event, ok := eventByID[rule.EventID]
		if !ok || !claims.available(event.ID) || !inEventMonth(tx.Date, event.Date) {
			continue
		}

		if err := m.store.LinkTransaction(ctx, tx.ID, event.ID, tx.Amount); err != nil {
			return nil, fmt.Errorf("link transaction %s: %w", tx.ID, err)
		}
		claims.claim(event.ID)
		return &Detail{
			TransactionID:   tx.ID,
			EventID:         event.ID,
			TransactionName: tx.Name,
			EventTitle:      event.Title,
			MatchType:       MatchRule,
		}, nil
	}

	return nil, nil
}

func keywordHit(merchant string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(merchant, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// inEventMonth reports whether the transaction date falls in the event's
// calendar month, give or take monthTolerance on either side.
func inEventMonth(txDate, eventDate time.Time) bool {
	monthStart := time.Date(eventDate.Year(), eventDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-24 * time.Hour)
	return !txDate.Before(monthStart.Add(-monthTolerance)) && !txDate.After(monthEnd.Add(monthTolerance))
}

// claimSet tracks which events are spoken for: persisted links plus links
// made earlier in this run. Making this an explicit value keeps the
// one-to-one invariant testable on its own.
type claimSet struct {
	taken map[string]struct{}
}

func newClaimSet(persisted map[string]struct{}) *claimSet {
	taken := make(map[string]struct{}, len(persisted))
	for id := range persisted {
		taken[id] = struct{}{}
	}
	return &claimSet{taken: taken}
}

func (c *claimSet) available(eventID string) bool {
	_, ok := c.taken[eventID]
	return !ok
}

func (c *claimSet) claim(eventID string) {
	c.taken[eventID] = struct{}{}
}
