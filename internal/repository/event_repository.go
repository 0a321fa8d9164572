package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ragul198/Event/internal/models"
)

const eventColumns = `id, title, COALESCE(date, '') AS date, COALESCE(time, '') AS time, COALESCE(venue, '') AS venue,
        COALESCE(description, '') AS description, COALESCE(image, '') AS image, registration_deadline,
        COALESCE(rules, '{}') AS rules, COALESCE(instructions, '{}') AS instructions`

// EventRepository manages the events table.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListOpen returns events whose deadline has not passed, soonest deadline first.
func (r *EventRepository) ListOpen(ctx context.Context, now time.Time) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE registration_deadline >= $1 ORDER BY registration_deadline ASC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, now); err != nil {
		return nil, fmt.Errorf("list open events: %w", err)
	}
	return events, nil
}

// ListByDeadline returns every event, soonest deadline first.
func (r *EventRepository) ListByDeadline(ctx context.Context) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events ORDER BY registration_deadline ASC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListByDate returns every event ordered by its date column, as the admin manage tab shows them.
func (r *EventRepository) ListByDate(ctx context.Context) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events ORDER BY date ASC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events by date: %w", err)
	}
	return events, nil
}

// FindByID fetches one event. sql.ErrNoRows is returned unwrapped when it does not exist.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a new event, assigning an id when missing.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	const query = `INSERT INTO events (id, title, date, time, venue, description, image, registration_deadline, rules, instructions)
        VALUES (:id, :title, :date, :time, :venue, :description, :image, :registration_deadline, :rules, :instructions)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update overwrites an event. sql.ErrNoRows is returned when no row matched.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	const query = `UPDATE events SET title = :title, date = :date, time = :time, venue = :venue, description = :description,
        image = :image, registration_deadline = :registration_deadline, rules = :rules, instructions = :instructions WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return expectAffected(res, "update event")
}

// Delete removes an event. sql.ErrNoRows is returned when no row matched.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return expectAffected(res, "delete event")
}

func expectAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
