package models

import (
	"time"

	"github.com/lib/pq"
)

// RegistrationState is the reconciled status of one user against one event.
type RegistrationState string

const (
	RegistrationOpen              RegistrationState = "OPEN"
	RegistrationClosed            RegistrationState = "CLOSED"
	RegistrationAlreadyRegistered RegistrationState = "ALREADY_REGISTERED"
)

// Event is a row of the events table. Date and time are display strings kept as entered.
type Event struct {
	ID                   string         `db:"id" json:"id"`
	Title                string         `db:"title" json:"title"`
	Date                 string         `db:"date" json:"date"`
	Time                 string         `db:"time" json:"time"`
	Venue                string         `db:"venue" json:"venue"`
	Description          string         `db:"description" json:"description"`
	Image                string         `db:"image" json:"image"`
	RegistrationDeadline time.Time      `db:"registration_deadline" json:"registration_deadline"`
	Rules                pq.StringArray `db:"rules" json:"rules"`
	Instructions         pq.StringArray `db:"instructions" json:"instructions"`
}

// EventCard is a listing entry carrying the caller's registration state.
type EventCard struct {
	Event
	State RegistrationState `json:"state"`
}

// EventDetail adds the rendered description.
type EventDetail struct {
	Event
	DescriptionHTML string            `json:"description_html"`
	State           RegistrationState `json:"state"`
}

// EventForm is the admin create/update payload. Rules and instructions are newline separated text.
type EventForm struct {
	Title                string `form:"title" json:"title"`
	Date                 string `form:"date" json:"date"`
	Time                 string `form:"time" json:"time"`
	Venue                string `form:"venue" json:"venue"`
	Description          string `form:"description" json:"description"`
	Image                string `form:"image" json:"image"`
	RegistrationDeadline string `form:"registration_deadline" json:"registration_deadline" validate:"required"`
	Rules                string `form:"rules" json:"rules"`
	Instructions         string `form:"instructions" json:"instructions"`
}
