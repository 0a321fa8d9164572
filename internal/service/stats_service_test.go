package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ragul198/Event/internal/models"
	appErrors "github.com/Ragul198/Event/pkg/errors"
)

type mockParticipantSource struct {
	rows  []models.Participant
	err   error
	calls int
}

func (m *mockParticipantSource) List(ctx context.Context) ([]models.Participant, error) {
	m.calls++
	return m.rows, m.err
}

func participantFixture() []models.Participant {
	return []models.Participant{
		{RegistrationID: "r1", EventID: "e2", EventTitle: "Hackathon", Name: "Asha R", Gender: "Female"},
		{RegistrationID: "r2", EventID: "e1", EventTitle: "Quiz", Name: "Arun K", Gender: "Male"},
		{RegistrationID: "r3", EventID: "e2", EventTitle: "Hackathon", Name: "Kiran P", Gender: "Male"},
		{RegistrationID: "r4", EventID: "e2", EventTitle: "Hackathon", Name: "Sam T", Gender: "Other"},
		{RegistrationID: "r5", EventID: "e2", EventTitle: "Hackathon", Name: "Lee M", Gender: "male"},
		{RegistrationID: "r6", EventID: "e1", EventTitle: "Quiz", Name: "Noor A", Gender: ""},
	}
}

func TestAggregateStats(t *testing.T) {
	stats := AggregateStats(participantFixture())
	require.Len(t, stats, 2)
	assert.Equal(t, models.EventStats{ID: "e2", Title: "Hackathon", Total: 4, Male: 1, Female: 1, Other: 2}, stats[0])
	assert.Equal(t, models.EventStats{ID: "e1", Title: "Quiz", Total: 2, Male: 1, Female: 0, Other: 1}, stats[1])
	assert.Empty(t, AggregateStats(nil))
}

func TestStatsServiceCachesUntilInvalidated(t *testing.T) {
	source := &mockParticipantSource{rows: participantFixture()}
	cacheRepo := newMockCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewStatsService(source, cache, nil)

	first, err := svc.Events(context.Background())
	require.NoError(t, err)
	second, err := svc.Events(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.calls)

	cache.Invalidate(context.Background(), statsCachePattern)
	_, err = svc.Events(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestStatsServiceFetchError(t *testing.T) {
	svc := NewStatsService(&mockParticipantSource{err: errors.New("rpc failed")}, nil, nil)
	_, err := svc.Events(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrUpstream)
}
