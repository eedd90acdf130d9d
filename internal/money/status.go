// Package money computes the month "available money" breakdown: budget and
// income versus spent, spoken-for, and free.
package money

import (
	"context"
	"fmt"
	"time"

	"github.com/mholloway/tally/internal/models"
)

// CategorySpending is one budget category's consumption for the month.
type CategorySpending struct {
	CategoryID      string `json:"category_id"`
	CategoryName    string `json:"category_name"`
	Spent           int64  `json:"spent"`
	BudgetRemaining int64  `json:"budget_remaining"`
}

// Status is the month aggregate. All amounts are minor units.
// Unallocated = max(0, (Budget + IncomeReceived + IncomeExpected) - Spent - SpokenFor).
type Status struct {
	Budget           int64              `json:"budget"`
	Spent            int64              `json:"spent"`
	SpokenFor        int64              `json:"spoken_for"`
	Unallocated      int64              `json:"unallocated"`
	IncomeReceived   int64              `json:"income_received"`
	IncomeExpected   int64              `json:"income_expected"`
	SpentEvents      []*models.Event    `json:"spent_events"`
	SpokenForEvents  []*models.Event    `json:"spoken_for_events"`
	CategorySpending []CategorySpending `json:"category_spending"`
}

// Store provides the reads the aggregation needs. CategorySpent sums the
// month's non-hidden transactions tagged with each category id.
type Store interface {
	FamilyBudget(ctx context.Context, familyID string) (int64, error)
	ListEventsInRange(ctx context.Context, familyID string, start, end time.Time) ([]*models.Event, error)
	ListBudgetCategories(ctx context.Context, familyID string) ([]*models.MerchantCategory, error)
	CategorySpent(ctx context.Context, familyID string, start, end time.Time) (map[string]int64, error)
}

type Aggregator struct {
	store Store
}

func New(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// MonthRange returns the first and last day of a month as calendar dates.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// Compute builds the status for one family and month. Pure read; order of
// events and categories never changes the totals because each transaction
// carries at most one category id.
func (a *Aggregator) Compute(ctx context.Context, familyID string, year int, month time.Month) (*Status, error) {
	start, end := MonthRange(year, month)

	budget, err := a.store.FamilyBudget(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("load family budget: %w", err)
	}
	events, err := a.store.ListEventsInRange(ctx, familyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load month events: %w", err)
	}

	status := &Status{
		Budget:           budget,
		SpentEvents:      []*models.Event{},
		SpokenForEvents:  []*models.Event{},
		CategorySpending: []CategorySpending{},
	}

	for _, event := range events {
		switch event.Type {
		case models.EventTypeExpense:
			switch {
			case event.Status == models.EventStatusCompleted && event.ActualCost != nil:
				status.Spent += *event.ActualCost
				status.SpentEvents = append(status.SpentEvents, event)
			case event.Status == models.EventStatusUpcoming:
				status.SpokenFor += event.EstimatedCost
				status.SpokenForEvents = append(status.SpokenForEvents, event)
			}
		case models.EventTypeIncome:
			switch {
			case event.Status == models.EventStatusCompleted && event.ActualCost != nil:
				status.IncomeReceived += *event.ActualCost
			case event.Status == models.EventStatusUpcoming:
				status.IncomeExpected += event.EstimatedCost
			}
		}
		// Calendar events carry no money.
	}

	categories, err := a.store.ListBudgetCategories(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("load budget categories: %w", err)
	}
	if len(categories) > 0 {
		spentByCategory, err := a.store.CategorySpent(ctx, familyID, start, end)
		if err != nil {
			return nil, fmt.Errorf("load category spending: %w", err)
		}

		for _, category := range categories {
			catSpent := spentByCategory[category.ID]
			var catBudget int64
			if category.MonthlyBudget != nil {
				catBudget = *category.MonthlyBudget
			}
			remaining := max(0, catBudget-catSpent)

			// Consumed budget counts as spent; the rest of the envelope is
			// still committed.
			status.Spent += catSpent
			status.SpokenFor += remaining
			status.CategorySpending = append(status.CategorySpending, CategorySpending{
				CategoryID:      category.ID,
				CategoryName:    category.Name,
				Spent:           catSpent,
				BudgetRemaining: remaining,
			})
		}
	}

	totalAvailable := status.Budget + status.IncomeReceived + status.IncomeExpected
	status.Unallocated = max(0, totalAvailable-status.Spent-status.SpokenFor)
	return status, nil
}
