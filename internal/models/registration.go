package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RegistrationForm holds the answers submitted with a registration.
type RegistrationForm struct {
	Year       string `json:"year" validate:"required"`
	Department string `json:"department" validate:"required"`
	Gender     string `json:"gender" validate:"required,oneof=Male Female Other"`
}

// Value stores the form as JSON.
func (f RegistrationForm) Value() (driver.Value, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a JSON column.
func (f *RegistrationForm) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = RegistrationForm{}
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("unsupported form_data type %T", src)
	}
}

// Registration links a user to an event.
type Registration struct {
	ID       string           `db:"id" json:"id"`
	UserID   string           `db:"user_id" json:"user_id"`
	EventID  string           `db:"event_id" json:"event_id"`
	FormData RegistrationForm `db:"form_data" json:"form_data"`
}

// RegistrationStatus answers "can I register for this event".
type RegistrationStatus struct {
	EventID    string            `json:"event_id"`
	EventTitle string            `json:"event_title"`
	State      RegistrationState `json:"state"`
}
