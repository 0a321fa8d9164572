package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Ragul198/Event/internal/models"
)

// ParticipantRepository reads the denormalized participants view exposed as a database function.
type ParticipantRepository struct {
	db *sqlx.DB
}

// NewParticipantRepository constructs a ParticipantRepository.
func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// List calls get_event_participants_view() and returns every row.
func (r *ParticipantRepository) List(ctx context.Context) ([]models.Participant, error) {
	const query = `SELECT registration_id, event_id, COALESCE(event_title, '') AS event_title, COALESCE(name, '') AS name,
        COALESCE(email, '') AS email, COALESCE(mobile, '') AS mobile, COALESCE(year, '') AS year,
        COALESCE(department, '') AS department, COALESCE(gender, '') AS gender
        FROM get_event_participants_view()`
	var rows []models.Participant
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("call get_event_participants_view: %w", err)
	}
	return rows, nil
}
