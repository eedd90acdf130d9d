// Package events manages the lifecycle of scheduled events: creation
// (including recurring series expansion), completion, cancellation, and
// linking transactions to events by hand.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mholloway/tally/internal/models"
)

var (
	ErrNotFound      = errors.New("event not found")
	ErrNotCalendar   = errors.New("event is not a calendar event")
	ErrTitleRequired = errors.New("event title is required")
)

// Store is the persistence surface the service needs.
type Store interface {
	GetEvent(ctx context.Context, familyID, eventID string) (*models.Event, error)
	InsertEvents(ctx context.Context, events []*models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event) error
	UpdateUpcomingChildren(ctx context.Context, familyID, parentID string, update EventUpdate) error

	GetTransaction(ctx context.Context, familyID, transactionID string) (*models.Transaction, error)
	LinkTransaction(ctx context.Context, transactionID, eventID string, amount int64) error
	UnlinkTransactions(ctx context.Context, familyID, eventID string) error
}

// CreateInput carries everything needed to create an event or a recurring
// series.
type CreateInput struct {
	Title             string
	Description       *string
	Date              time.Time
	Time              *string
	Type              models.EventType
	EstimatedCost     int64
	Recurrence        *models.Recurrence
	RecurrenceEndDate *time.Time
}

// EventUpdate is the field set a series edit can change.
type EventUpdate = models.EventUpdate

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create inserts the event and, when a recurrence is set, the generated
// series children pointing back at it. It returns the parent event.
func (s *Service) Create(ctx context.Context, familyID string, in CreateInput) (*models.Event, error) {
	if in.Title == "" {
		return nil, ErrTitleRequired
	}

	parent := &models.Event{
		ID:                uuid.NewString(),
		FamilyID:          familyID,
		Title:             in.Title,
		Description:       in.Description,
		Date:              in.Date,
		Time:              in.Time,
		Type:              in.Type,
		Status:            models.EventStatusUpcoming,
		EstimatedCost:     in.EstimatedCost,
		Recurrence:        in.Recurrence,
		RecurrenceEndDate: in.RecurrenceEndDate,
		CreatedAt:         time.Now(),
	}

	batch := []*models.Event{parent}
	if parent.IsRecurring() {
		dates, err := seriesDates(in.Date, *in.Recurrence, in.RecurrenceEndDate)
		if err != nil {
			return nil, err
		}
		for _, date := range dates {
			child := *parent
			child.ID = uuid.NewString()
			child.Date = date
			child.RecurrenceParent = &parent.ID
			batch = append(batch, &child)
		}
	}

	if err := s.store.InsertEvents(ctx, batch); err != nil {
		return nil, fmt.Errorf("insert events: %w", err)
	}
	return parent, nil
}

// Complete marks the event completed with the given actual cost.
func (s *Service) Complete(ctx context.Context, familyID, eventID string, actualCost int64) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, familyID, eventID)
	if err != nil {
		return nil, err
	}
	event.Status = models.EventStatusCompleted
	event.ActualCost = &actualCost
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// CompleteCalendar completes a calendar event. Calendar events carry no
// money, so the actual cost is recorded as zero.
func (s *Service) CompleteCalendar(ctx context.Context, familyID, eventID string) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, familyID, eventID)
	if err != nil {
		return nil, err
	}
	if event.Type != models.EventTypeCalendar {
		return nil, ErrNotCalendar
	}
	event.Status = models.EventStatusCompleted
	zero := int64(0)
	event.ActualCost = &zero
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// Cancel marks the event cancelled. Cancelled events drop out of both money
// aggregation and auto-matching.
func (s *Service) Cancel(ctx context.Context, familyID, eventID string) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, familyID, eventID)
	if err != nil {
		return nil, err
	}
	event.Status = models.EventStatusCancelled
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// Reopen returns a completed or cancelled event to upcoming, clears its
// actual cost, and detaches any transactions linked to it.
func (s *Service) Reopen(ctx context.Context, familyID, eventID string) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, familyID, eventID)
	if err != nil {
		return nil, err
	}
	event.Status = models.EventStatusUpcoming
	event.ActualCost = nil
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if err := s.store.UnlinkTransactions(ctx, familyID, eventID); err != nil {
		return nil, fmt.Errorf("unlink transactions: %w", err)
	}
	return event, nil
}

// Link attaches a transaction to an event by hand. The event is completed
// and its actual cost set to the transaction amount, same as an automatic
// match.
func (s *Service) Link(ctx context.Context, familyID, transactionID, eventID string) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, familyID, eventID)
	if err != nil {
		return nil, err
	}
	tx, err := s.store.GetTransaction(ctx, familyID, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.store.LinkTransaction(ctx, tx.ID, event.ID, tx.Amount); err != nil {
		return nil, fmt.Errorf("link transaction: %w", err)
	}
	event.Status = models.EventStatusCompleted
	event.ActualCost = &tx.Amount
	return event, nil
}

// Unlink detaches every transaction from the event and reopens it. It is the
// exact inverse of Link.
func (s *Service) Unlink(ctx context.Context, familyID, eventID string) (*models.Event, error) {
	return s.Reopen(ctx, familyID, eventID)
}

// CreateFromTransaction creates a completed expense event out of an existing
// transaction and links the transaction to it.
func (s *Service) CreateFromTransaction(ctx context.Context, familyID, transactionID string) (*models.Event, error) {
	tx, err := s.store.GetTransaction(ctx, familyID, transactionID)
	if err != nil {
		return nil, err
	}

	eventType := models.EventTypeExpense
	if tx.Amount < 0 {
		eventType = models.EventTypeIncome
	}
	event := &models.Event{
		ID:            uuid.NewString(),
		FamilyID:      familyID,
		Title:         tx.DisplayName(),
		Date:          tx.Date,
		Type:          eventType,
		Status:        models.EventStatusCompleted,
		EstimatedCost: tx.Amount,
		ActualCost:    &tx.Amount,
		CreatedAt:     time.Now(),
	}
	if err := s.store.InsertEvents(ctx, []*models.Event{event}); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	if err := s.store.LinkTransaction(ctx, tx.ID, event.ID, tx.Amount); err != nil {
		return nil, fmt.Errorf("link transaction: %w", err)
	}
	return event, nil
}

// UpdateSeries edits an event and, when it heads a recurring series, pushes
// the same edit to its upcoming children. Completed and cancelled children
// keep what actually happened.
func (s *Service) UpdateSeries(ctx context.Context, familyID, eventID string, update EventUpdate) (*models.Event, error) {
	if update.Title == "" {
		return nil, ErrTitleRequired
	}
	event, err := s.store.GetEvent(ctx, familyID, eventID)
	if err != nil {
		return nil, err
	}
	event.Title = update.Title
	event.Description = update.Description
	event.Time = update.Time
	event.Type = update.Type
	event.EstimatedCost = update.EstimatedCost
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if event.IsRecurring() && event.RecurrenceParent == nil {
		if err := s.store.UpdateUpcomingChildren(ctx, familyID, event.ID, update); err != nil {
			return nil, fmt.Errorf("update series: %w", err)
		}
	}
	return event, nil
}
