package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ragul198/Event/internal/models"
)

func TestSplitLinesDropsBlankLines(t *testing.T) {
	assert.Equal(t, []string{"Bring ID", "  Be on time", "No phones"}, SplitLines("Bring ID\n\n  Be on time\r\n   \nNo phones\n\n"))
	assert.Empty(t, SplitLines(""))
	assert.Empty(t, SplitLines(" \n\t\n"))
}

func TestRulesRoundTripThroughForm(t *testing.T) {
	original := "Teams of three\nBring laptops\nJudging at 5pm"
	loc := time.UTC
	deadline, err := ParseDeadline("2025-03-10T18:00", loc)
	require.NoError(t, err)

	event := formToEvent(models.EventForm{Rules: original + "\n\n", Instructions: "Report at gate 2\n", RegistrationDeadline: "2025-03-10T18:00"}, deadline)
	form := eventToForm(event, loc)

	assert.Equal(t, original, form.Rules)
	assert.Equal(t, "Report at gate 2", form.Instructions)
	assert.Equal(t, "2025-03-10T18:00", form.RegistrationDeadline)
}

func TestParseDeadline(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)

	local, err := ParseDeadline("2025-03-10T18:00", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC), local.UTC())

	withOffset, err := ParseDeadline("2025-03-10T18:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), withOffset.UTC())

	_, err = ParseDeadline("   ", loc)
	assert.Error(t, err)
	_, err = ParseDeadline("next friday", loc)
	assert.Error(t, err)
}
