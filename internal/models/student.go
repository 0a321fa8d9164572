package models

// Student is the profile row that extends an identity-provider user with academic data.
type Student struct {
	ID             string `db:"id" json:"id"`
	UserID         string `db:"user_id" json:"user_id"`
	Email          string `db:"email" json:"email"`
	FirstName      string `db:"first_name" json:"first_name"`
	LastName       string `db:"last_name" json:"last_name"`
	College        string `db:"college" json:"college"`
	Department     string `db:"department" json:"department"`
	Year           string `db:"year" json:"year"`
	Gender         string `db:"gender" json:"gender"`
	RegisterNumber string `db:"register_number" json:"register_number"`
	Mobile         string `db:"mobile" json:"mobile"`
	Role           Role   `db:"role" json:"role,omitempty"`
}

// FullName joins first and last name the way the directory search sees it.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentFilter narrows the admin student directory. Empty fields do not filter.
type StudentFilter struct {
	Search     string `form:"search"`
	Year       string `form:"year"`
	Department string `form:"department"`
	Gender     string `form:"gender"`
}

// StudentSetupRequest is submitted once after first sign-in.
type StudentSetupRequest struct {
	FirstName      string `json:"first_name" validate:"filled,plaintext"`
	LastName       string `json:"last_name" validate:"filled,plaintext"`
	College        string `json:"college" validate:"filled,plaintext"`
	Department     string `json:"department" validate:"filled,department"`
	Year           string `json:"year" validate:"filled"`
	Gender         string `json:"gender" validate:"filled,gender"`
	RegisterNumber string `json:"register_number" validate:"filled,regnumber"`
	Mobile         string `json:"mobile" validate:"filled,mobile"`
}

// ProfileOptions lists the selectable academic values.
type ProfileOptions struct {
	Departments []string            `json:"departments"`
	Years       map[string][]string `json:"years"`
	Genders     []string            `json:"genders"`
}
