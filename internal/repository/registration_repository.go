package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ragul198/Event/internal/models"
)

// RegistrationRepository manages the registrations table. A unique constraint on
// (user_id, event_id) backs Insert.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Exists reports whether the user already registered for the event.
func (r *RegistrationRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM registrations WHERE user_id = $1 AND event_id = $2 LIMIT 1`, userID, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check registration: %w", err)
	}
	return true, nil
}

// EventIDsForUser returns the set of events the user registered for.
func (r *RegistrationRepository) EventIDsForUser(ctx context.Context, userID string) (map[string]struct{}, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT event_id FROM registrations WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("list registered event ids: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// Insert adds a registration unless one already exists for the pair. The boolean is false on a duplicate.
func (r *RegistrationRepository) Insert(ctx context.Context, reg *models.Registration) (bool, error) {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	const query = `INSERT INTO registrations (id, user_id, event_id, form_data)
        VALUES (:id, :user_id, :event_id, :form_data)
        ON CONFLICT (user_id, event_id) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, reg)
	if err != nil {
		return false, fmt.Errorf("insert registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert registration rows affected: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a registration by id. sql.ErrNoRows is returned when no row matched.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return expectAffected(res, "delete registration")
}

// EventsForUser joins the user's registrations to their events.
func (r *RegistrationRepository) EventsForUser(ctx context.Context, userID string) ([]models.Event, error) {
	const query = `SELECT e.id, e.title, COALESCE(e.date, '') AS date, COALESCE(e.time, '') AS time, COALESCE(e.venue, '') AS venue,
        COALESCE(e.description, '') AS description, COALESCE(e.image, '') AS image, e.registration_deadline,
        COALESCE(e.rules, '{}') AS rules, COALESCE(e.instructions, '{}') AS instructions
        FROM registrations r JOIN events e ON e.id = r.event_id
        WHERE r.user_id = $1 ORDER BY e.registration_deadline ASC`
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, userID); err != nil {
		return nil, fmt.Errorf("list events for user: %w", err)
	}
	return events, nil
}
