package models

import "time"

type EventType string

const (
	EventTypeExpense  EventType = "expense"
	EventTypeIncome   EventType = "income"
	EventTypeCalendar EventType = "calendar"
)

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

type Recurrence string

const (
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceBiweekly Recurrence = "biweekly"
	RecurrenceMonthly  Recurrence = "monthly"
	RecurrenceYearly   Recurrence = "yearly"
)

// Event is a scheduled financial or calendar occurrence. EstimatedCost and
// ActualCost are minor units; ActualCost is set only while the event is
// completed.
type Event struct {
	ID                string      `json:"id"`
	FamilyID          string      `json:"family_id"`
	Title             string      `json:"title"`
	Description       *string     `json:"description"`
	Date              time.Time   `json:"event_date"`
	Time              *string     `json:"event_time"`
	Type              EventType   `json:"event_type"`
	Status            EventStatus `json:"status"`
	EstimatedCost     int64       `json:"estimated_cost"`
	ActualCost        *int64      `json:"actual_cost"`
	Recurrence        *Recurrence `json:"recurrence"`
	RecurrenceEndDate *time.Time  `json:"recurrence_end_date"`
	RecurrenceParent  *string     `json:"recurrence_parent_id"`
	CreatedAt         time.Time   `json:"created_at"`
}

// EventUpdate is the set of fields an edit can change. Date is deliberately
// absent: series children keep their own occurrence dates.
type EventUpdate struct {
	Title         string
	Description   *string
	Time          *string
	Type          EventType
	EstimatedCost int64
}

func (e *Event) IsRecurring() bool {
	return e.Recurrence != nil && *e.Recurrence != ""
}

// CountsTowardBudget reports whether the event participates in money math.
// Calendar events never do.
func (e *Event) CountsTowardBudget() bool {
	return e.Type == EventTypeExpense || e.Type == EventTypeIncome
}
