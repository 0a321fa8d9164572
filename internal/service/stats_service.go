package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Ragul198/Event/internal/models"
	appErrors "github.com/Ragul198/Event/pkg/errors"
)

type participantSource interface {
	List(ctx context.Context) ([]models.Participant, error)
}

// StatsService aggregates participant counts for the admin dashboard.
type StatsService struct {
	participants participantSource
	cache        *CacheService
	logger       *zap.Logger
}

// NewStatsService constructs StatsService.
func NewStatsService(participants participantSource, cache *CacheService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{participants: participants, cache: cache, logger: logger}
}

// Events returns per-event totals, served from cache while no registration changed.
func (s *StatsService) Events(ctx context.Context) ([]models.EventStats, error) {
	var cached []models.EventStats
	if s.cache.Get(ctx, statsCacheKey, &cached) {
		return cached, nil
	}
	rows, err := s.participants.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load participants")
	}
	stats := AggregateStats(rows)
	s.cache.Set(ctx, statsCacheKey, stats, 0)
	return stats, nil
}

// AggregateStats groups rows by event in order of first appearance.
// Genders other than exactly "Male" or "Female" count as Other.
func AggregateStats(rows []models.Participant) []models.EventStats {
	index := make(map[string]int)
	stats := make([]models.EventStats, 0)
	for _, row := range rows {
		i, ok := index[row.EventID]
		if !ok {
			i = len(stats)
			index[row.EventID] = i
			stats = append(stats, models.EventStats{ID: row.EventID, Title: row.EventTitle})
		}
		entry := &stats[i]
		entry.Total++
		switch row.Gender {
		case "Male":
			entry.Male++
		case "Female":
			entry.Female++
		default:
			entry.Other++
		}
	}
	return stats
}
