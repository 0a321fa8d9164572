package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Ragul198/Event/internal/models"
)

// Academic option catalogue offered by the setup form.
var (
	Departments  = []string{"CSE", "MECH", "IT", "AI", "ECE", "CIVIL", "EEE", "MBA"}
	DefaultYears = []string{"1st Year", "2nd Year", "3rd Year", "4th Year"}
	MBAYears     = []string{"1st Year", "2nd Year"}
	Genders      = []string{"Male", "Female", "Other"}
)

var (
	emojiPattern     = regexp.MustCompile(`[\x{1F600}-\x{1F6FF}]`)
	symbolPattern    = regexp.MustCompile(`[^a-zA-Z0-9\s\.\-]`)
	mobilePattern    = regexp.MustCompile(`^\d{10}$`)
	regNumberPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// Setup messages in the order the rules are checked.
const (
	msgFillAllFields  = "Please fill in all fields."
	msgPlainText      = "Text fields must not contain emojis or special characters."
	msgMobile         = "Mobile number must be exactly 10 digits."
	msgRegisterNumber = "Register number should not contain special characters."
	msgDepartment     = "Please choose a valid department."
	msgYear           = "Please choose a valid year for the selected department."
	msgGender         = "Gender must be Male, Female or Other."
	msgInvalidStudent = "Invalid student details."
)

var setupRuleOrder = []struct {
	tag     string
	message string
}{
	{"filled", msgFillAllFields},
	{"plaintext", msgPlainText},
	{"mobile", msgMobile},
	{"regnumber", msgRegisterNumber},
	{"department", msgDepartment},
	{"studyyear", msgYear},
	{"gender", msgGender},
}

// NewStudentValidator returns a validator that knows the profile setup rules.
func NewStudentValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("filled", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("plaintext", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return !emojiPattern.MatchString(value) && !symbolPattern.MatchString(value)
	})
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("regnumber", func(fl validator.FieldLevel) bool {
		return regNumberPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return contains(Departments, fl.Field().String())
	})
	_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return contains(Genders, fl.Field().String())
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(models.StudentSetupRequest)
		if !contains(YearsFor(req.Department), req.Year) {
			sl.ReportError(req.Year, "Year", "year", "studyyear", "")
		}
	}, models.StudentSetupRequest{})
	return v
}

// YearsFor returns the selectable years of a department.
func YearsFor(department string) []string {
	if department == "MBA" {
		return MBAYears
	}
	return DefaultYears
}

// setupMessage picks the message of the earliest rule that failed.
func setupMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msgInvalidStudent
	}
	failed := make(map[string]struct{}, len(verrs))
	for _, fe := range verrs {
		failed[fe.Tag()] = struct{}{}
	}
	for _, rule := range setupRuleOrder {
		if _, ok := failed[rule.tag]; ok {
			return rule.message
		}
	}
	return msgInvalidStudent
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
