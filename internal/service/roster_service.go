package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ragul198/Event/internal/models"
	appErrors "github.com/Ragul198/Event/pkg/errors"
	"github.com/Ragul198/Event/pkg/export"
	"github.com/Ragul198/Event/pkg/storage"
)

type registrationRemover interface {
	Delete(ctx context.Context, id string) error
}

type exportStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// RosterConfig tunes where export links point and how long files live.
type RosterConfig struct {
	APIPrefix string
	FileTTL   time.Duration
}

// RosterService serves per-event participant lists and their exports.
type RosterService struct {
	events        eventFinder
	participants  participantSource
	registrations registrationRemover
	files         exportStorage
	signer        *storage.SignedURLSigner
	cache         *CacheService
	logger        *zap.Logger
	cfg           RosterConfig
	now           func() time.Time
}

// NewRosterService constructs RosterService.
func NewRosterService(events eventFinder, participants participantSource, registrations registrationRemover, files exportStorage, signer *storage.SignedURLSigner, cache *CacheService, logger *zap.Logger, cfg RosterConfig) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	if cfg.FileTTL <= 0 {
		cfg.FileTTL = 24 * time.Hour
	}
	return &RosterService{
		events:        events,
		participants:  participants,
		registrations: registrations,
		files:         files,
		signer:        signer,
		cache:         cache,
		logger:        logger,
		cfg:           cfg,
		now:           time.Now,
	}
}

// Roster returns the event title with the participants registered for it.
func (s *RosterService) Roster(ctx context.Context, eventID string) (*models.Roster, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Event not found.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load event")
	}
	rows, err := s.participants.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load participants")
	}
	roster := &models.Roster{EventID: event.ID, EventTitle: event.Title, Participants: make([]models.Participant, 0)}
	for _, row := range rows {
		if row.EventID == eventID {
			roster.Participants = append(roster.Participants, row)
		}
	}
	return roster, nil
}

// RemoveRegistration deletes one registration row after confirmation.
func (s *RosterService) RemoveRegistration(ctx context.Context, registrationID string, confirmed bool) error {
	if !confirmed {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, "confirm the deletion to continue")
	}
	if err := s.registrations.Delete(ctx, registrationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Registration not found.")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete registration")
	}
	s.cache.Invalidate(ctx, statsCachePattern)
	s.logger.Info("registration removed", zap.String("registration_id", registrationID))
	return nil
}

// Export renders the roster and returns a signed, expiring download link.
func (s *RosterService) Export(ctx context.Context, eventID string, format export.Format) (*models.ExportFile, error) {
	roster, err := s.Roster(ctx, eventID)
	if err != nil {
		return nil, err
	}
	payload, err := export.RendererFor(format).Render(RosterTable(roster))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	id := uuid.NewString()
	name := fmt.Sprintf("rosters/%s_%s_%s.%s", sanitizeFilename(roster.EventTitle), s.now().UTC().Format("20060102_150405"), id[:8], format)
	relPath, err := s.files.Save(name, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Sign(id, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}
	return &models.ExportFile{
		ID:        id,
		Format:    string(format),
		URL:       strings.TrimRight(s.cfg.APIPrefix, "/") + "/exports/download?token=" + url.QueryEscape(token),
		ExpiresAt: expiresAt,
	}, nil
}

// OpenExport verifies a download token and opens the file it points at.
func (s *RosterService) OpenExport(token string) (*os.File, storage.SignedLink, error) {
	link, err := s.signer.Verify(token)
	if err != nil {
		return nil, storage.SignedLink{}, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "download link is invalid or expired")
	}
	file, err := s.files.Open(link.Path)
	if err != nil {
		return nil, storage.SignedLink{}, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file no longer exists")
	}
	return file, link, nil
}

// CleanupExports removes export files older than the configured TTL.
func (s *RosterService) CleanupExports() ([]string, error) {
	removed, err := s.files.CleanupOlderThan(s.cfg.FileTTL)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return removed, nil
}

// RosterTable lays a roster out as an export table.
func RosterTable(roster *models.Roster) export.Table {
	table := export.Table{
		Title:   roster.EventTitle + " participants",
		Headers: []string{"Name", "Email", "Mobile", "Year", "Department", "Gender"},
		Rows:    make([][]string, 0, len(roster.Participants)),
	}
	for _, p := range roster.Participants {
		table.Rows = append(table.Rows, []string{p.Name, p.Email, p.Mobile, p.Year, p.Department, p.Gender})
	}
	return table
}

const maxFilenameRunes = 60

func sanitizeFilename(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "event"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(strings.TrimSpace(raw))
	if runes := []rune(result); len(runes) > maxFilenameRunes {
		return string(runes[:maxFilenameRunes])
	}
	return result
}
