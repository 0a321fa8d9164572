package models

import "time"

// Participant is one row of the denormalized participants view.
type Participant struct {
	RegistrationID string `db:"registration_id" json:"registration_id"`
	EventID        string `db:"event_id" json:"event_id"`
	EventTitle     string `db:"event_title" json:"event_title"`
	Name           string `db:"name" json:"name"`
	Email          string `db:"email" json:"email"`
	Mobile         string `db:"mobile" json:"mobile"`
	Year           string `db:"year" json:"year"`
	Department     string `db:"department" json:"department"`
	Gender         string `db:"gender" json:"gender"`
}

// EventStats counts participants of one event by gender bucket.
type EventStats struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Total  int    `json:"total"`
	Male   int    `json:"male"`
	Female int    `json:"female"`
	Other  int    `json:"other"`
}

// Roster is the admin view of an event's registrations.
type Roster struct {
	EventID      string        `json:"event_id"`
	EventTitle   string        `json:"event_title"`
	Participants []Participant `json:"participants"`
}

// ExportFile describes a rendered roster export.
type ExportFile struct {
	ID        string    `json:"id"`
	Format    string    `json:"format"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
