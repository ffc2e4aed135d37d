package linestatus

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stationly/stationly/pkg/model"
	"github.com/stationly/stationly/pkg/tfl"
	"github.com/stationly/stationly/pkg/transform"
)

// GoodServiceMessages are the filler reasons shown while a line runs
// normally. TfL leaves the reason empty on Good Service, which renders badly
// on clients, so one of these is assigned instead. Once a line carries a
// filler reason it is pinned across polls to keep repeat cycles quiet.
var GoodServiceMessages = []string{
	"Trains are running smoothly across the line.",
	"All clear, services are on time.",
	"No reported issues on this line right now.",
	"Everything is running to timetable.",
	"Enjoy the ride, no delays reported.",
}

const goodServiceDescription = "Good Service"

// API is the slice of the TfL client the status sync needs.
type API interface {
	LineStatuses(ctx context.Context, mode string) ([]tfl.Line, error)
}

type StatusStore interface {
	GetAll(ctx context.Context) ([]model.LineStatus, error)
	BatchUpsert(ctx context.Context, statuses []model.LineStatus) error
}

// Publisher accepts topic payloads for debounced delivery.
type Publisher interface {
	PublishAll(topicPayloads map[string]any) int
}

type SyncResult struct {
	Statuses []model.LineStatus
	Changed  int
}

// Service polls line statuses, persists them and notifies subscribers of the
// lines whose status actually changed.
type Service struct {
	API       API
	Store     StatusStore
	Publisher Publisher
	Modes     []string
}

// Sync refreshes every configured mode. A mode that fails is logged and
// skipped; the rest still sync.
func (s *Service) Sync(ctx context.Context) (SyncResult, error) {
	result := SyncResult{}

	existing, err := s.Store.GetAll(ctx)
	if err != nil {
		return result, err
	}

	existingByID := make(map[string]model.LineStatus, len(existing))
	for _, status := range existing {
		existingByID[status.ID] = status
	}

	changedPayloads := map[string]any{}

	for _, mode := range s.Modes {
		lines, err := s.API.LineStatuses(ctx, mode)
		if err != nil {
			log.Error().Err(err).Str("mode", mode).Msg("Failed to fetch line statuses")
			continue
		}
		if len(lines) == 0 {
			log.Warn().Str("mode", mode).Msg("No line statuses received")
			continue
		}

		for _, line := range lines {
			newStatus := mapLineStatus(line, mode)

			oldStatus, known := existingByID[newStatus.ID]

			// A line back on Good Service keeps its pinned filler reason so
			// repeat polls do not look like changes
			if known && strings.EqualFold(newStatus.StatusSeverityDescription, goodServiceDescription) &&
				containsMessage(GoodServiceMessages, oldStatus.Reason) {
				newStatus.Reason = oldStatus.Reason
			}

			if hasStatusChanged(oldStatus, known, newStatus) {
				topic := transform.LineStatusTopic(mode, newStatus.ID)
				changedPayloads[topic] = newStatus
			}

			result.Statuses = append(result.Statuses, newStatus)
		}
	}

	if len(result.Statuses) > 0 {
		if err := s.Store.BatchUpsert(ctx, result.Statuses); err != nil {
			return result, err
		}
	}

	if len(changedPayloads) > 0 {
		result.Changed = s.Publisher.PublishAll(changedPayloads)
	}

	log.Info().
		Int("statuses", len(result.Statuses)).
		Int("changed", len(changedPayloads)).
		Msg("Line status sync completed")

	return result, nil
}

// GetStatuses returns persisted statuses, optionally filtered by line and
// mode. An empty store triggers a sync first.
func (s *Service) GetStatuses(ctx context.Context, lineID string, mode string) ([]model.LineStatus, error) {
	statuses, err := s.Store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if len(statuses) == 0 {
		result, err := s.Sync(ctx)
		if err != nil {
			return nil, err
		}
		statuses = result.Statuses
	}

	var filtered []model.LineStatus
	for _, status := range statuses {
		if mode != "" && !strings.EqualFold(status.ModeName, mode) {
			continue
		}
		if lineID != "" && !strings.EqualFold(status.ID, lineID) {
			continue
		}
		filtered = append(filtered, status)
	}

	return filtered, nil
}

// mapLineStatus flattens a line's first status into the persisted record.
func mapLineStatus(line tfl.Line, mode string) model.LineStatus {
	description := "Unknown"
	reason := ""

	if len(line.LineStatuses) > 0 {
		description = line.LineStatuses[0].StatusSeverityDescription
		reason = line.LineStatuses[0].Reason
	}

	return model.LineStatus{
		ID:                        line.ID,
		Name:                      line.Name,
		ModeName:                  mode,
		StatusSeverityDescription: description,
		Reason:                    fillerReason(description, reason),
		LastUpdatedTime:           time.Now().UTC().Format(time.RFC3339),
	}
}

func fillerReason(description string, reason string) string {
	if strings.EqualFold(description, goodServiceDescription) && strings.TrimSpace(reason) == "" {
		return GoodServiceMessages[rand.Intn(len(GoodServiceMessages))]
	}
	return reason
}

func containsMessage(messages []string, reason string) bool {
	for _, message := range messages {
		if message == reason {
			return true
		}
	}
	return false
}

// hasStatusChanged ignores LastUpdatedTime, only the visible status matters.
func hasStatusChanged(oldStatus model.LineStatus, known bool, newStatus model.LineStatus) bool {
	if !known {
		return true
	}

	return oldStatus.StatusSeverityDescription != newStatus.StatusSeverityDescription ||
		oldStatus.Reason != newStatus.Reason
}
