package client

import "github.com/Ragul198/Event/internal/models"

// Roster is a roster loaded into memory by a client.
type Roster struct {
	models.Roster
}

// Remove drops a registration from the in-memory list and reports whether it was present.
func (r *Roster) Remove(registrationID string) bool {
	for i, p := range r.Participants {
		if p.RegistrationID == registrationID {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			return true
		}
	}
	return false
}
