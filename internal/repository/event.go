package repository

import (
	"context"
	"time"

	"github.com/mholloway/tally/internal/database"
	"github.com/mholloway/tally/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, family_id, title, description, event_date, event_time, event_type, status,
	 estimated_cost, actual_cost, recurrence, recurrence_end_date, recurrence_parent_id, created_at`

func (r *EventRepository) GetEvent(ctx context.Context, familyID, eventID string) (*models.Event, error) {
	event := &models.Event{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+eventColumns+`
		 FROM event WHERE id = $1 AND family_id = $2`,
		eventID, familyID,
	).Scan(&event.ID, &event.FamilyID, &event.Title, &event.Description, &event.Date, &event.Time,
		&event.Type, &event.Status, &event.EstimatedCost, &event.ActualCost, &event.Recurrence,
		&event.RecurrenceEndDate, &event.RecurrenceParent, &event.CreatedAt)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// InsertEvents writes a batch in one database transaction so a recurring
// series lands whole or not at all.
func (r *EventRepository) InsertEvents(ctx context.Context, events []*models.Event) error {
	dbtx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbtx.Rollback(ctx)

	for _, event := range events {
		if _, err := dbtx.Exec(ctx,
			`INSERT INTO event (id, family_id, title, description, event_date, event_time, event_type,
			 status, estimated_cost, actual_cost, recurrence, recurrence_end_date, recurrence_parent_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			event.ID, event.FamilyID, event.Title, event.Description, event.Date, event.Time,
			event.Type, event.Status, event.EstimatedCost, event.ActualCost, event.Recurrence,
			event.RecurrenceEndDate, event.RecurrenceParent,
		); err != nil {
			return err
		}
	}
	return dbtx.Commit(ctx)
}

func (r *EventRepository) UpdateEvent(ctx context.Context, event *models.Event) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE event SET title = $1, description = $2, event_date = $3, event_time = $4,
		 event_type = $5, status = $6, estimated_cost = $7, actual_cost = $8
		 WHERE id = $9 AND family_id = $10`,
		event.Title, event.Description, event.Date, event.Time, event.Type, event.Status,
		event.EstimatedCost, event.ActualCost, event.ID, event.FamilyID,
	)
	return err
}

// UpdateUpcomingChildren pushes a series edit to the children that have not
// happened yet. Completed and cancelled occurrences are left alone.
func (r *EventRepository) UpdateUpcomingChildren(ctx context.Context, familyID, parentID string, update models.EventUpdate) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE event SET title = $1, description = $2, event_time = $3, event_type = $4, estimated_cost = $5
		 WHERE family_id = $6 AND recurrence_parent_id = $7 AND status = 'upcoming'`,
		update.Title, update.Description, update.Time, update.Type, update.EstimatedCost,
		familyID, parentID,
	)
	return err
}

func (r *EventRepository) ListEvents(ctx context.Context, familyID string) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM event WHERE family_id = $1
		 ORDER BY event_date, created_at`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

func (r *EventRepository) ListEventsInRange(ctx context.Context, familyID string, start, end time.Time) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM event WHERE family_id = $1 AND event_date >= $2 AND event_date <= $3
		 ORDER BY event_date, created_at`,
		familyID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

// DeleteEvent removes an event and, through the cascade, any series children
// pointing at it. Linked transactions fall back to unlinked.
func (r *EventRepository) DeleteEvent(ctx context.Context, familyID, eventID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM event WHERE id = $1 AND family_id = $2`,
		eventID, familyID,
	)
	return err
}

func (r *EventRepository) scanEvents(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		if err := rows.Scan(&event.ID, &event.FamilyID, &event.Title, &event.Description,
			&event.Date, &event.Time, &event.Type, &event.Status, &event.EstimatedCost,
			&event.ActualCost, &event.Recurrence, &event.RecurrenceEndDate,
			&event.RecurrenceParent, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
