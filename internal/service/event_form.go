package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/Ragul198/Event/internal/models"
)

// Layouts accepted for the registration deadline: the browser datetime-local value first.
var deadlineLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339}

// ImageUpload is an optional poster attached to an admin event form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// SplitLines turns newline separated text into ordered non-blank entries.
func SplitLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// JoinLines is the inverse of SplitLines for loading an edit form.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// ParseDeadline reads a deadline in loc unless the value carries its own offset.
func ParseDeadline(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("deadline is required")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("deadline %q is not a valid date and time", raw)
}

// formToEvent copies form fields onto an event row. The deadline must already be parsed.
func formToEvent(form models.EventForm, deadline time.Time) models.Event {
	return models.Event{
		Title:                form.Title,
		Date:                 form.Date,
		Time:                 form.Time,
		Venue:                form.Venue,
		Description:          form.Description,
		Image:                form.Image,
		RegistrationDeadline: deadline,
		Rules:                pq.StringArray(SplitLines(form.Rules)),
		Instructions:         pq.StringArray(SplitLines(form.Instructions)),
	}
}

// eventToForm renders an event back into its editable form.
func eventToForm(event models.Event, loc *time.Location) models.EventForm {
	if loc == nil {
		loc = time.UTC
	}
	return models.EventForm{
		Title:                event.Title,
		Date:                 event.Date,
		Time:                 event.Time,
		Venue:                event.Venue,
		Description:          event.Description,
		Image:                event.Image,
		RegistrationDeadline: event.RegistrationDeadline.In(loc).Format(deadlineLayouts[0]),
		Rules:                JoinLines(event.Rules),
		Instructions:         JoinLines(event.Instructions),
	}
}
