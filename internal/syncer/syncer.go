package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"tmpsync/internal/marker"
	"tmpsync/internal/models"
)

const auditReason = "Created from TruckersMP event"

// Platform is the scheduled-event surface of the chat platform the syncer
// publishes to.
type Platform interface {
	ScheduledEvents(ctx context.Context) ([]*discordgo.GuildScheduledEvent, error)
	CreateScheduledEvent(ctx context.Context, params *discordgo.GuildScheduledEventParams, reason string) error
	DownloadImage(ctx context.Context, url string) (string, error)
}

// Syncer mirrors TruckersMP events into a guild's scheduled events.
type Syncer struct {
	logger   *slog.Logger
	platform Platform
	dryRun   bool
}

// New creates a new Syncer.
func New(logger *slog.Logger, platform Platform, dryRun bool) *Syncer {
	return &Syncer{
		logger:   logger,
		platform: platform,
		dryRun:   dryRun,
	}
}

// Sync reconciles the candidate events against the guild's existing scheduled
// events and creates every candidate that is unmirrored and still upcoming.
// The first create failure aborts the run; already-created events are picked
// up via their markers on the next run.
func (s *Syncer) Sync(ctx context.Context, candidates []models.Event) error {
	existing, err := s.platform.ScheduledEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list scheduled events: %w", err)
	}

	newEvents := s.filterNew(candidates, existing)
	s.logger.Info("Reconciled against existing scheduled events.",
		"candidates", len(candidates), "existing", len(existing), "new", len(newEvents))

	for _, ev := range newEvents {
		start := parseStartTime(ev.StartAt)
		if !start.After(time.Now()) {
			s.logger.Info("Skipping event as it is in the past.", "id", ev.ID, "startAt", ev.StartAt)
			continue
		}

		params := buildEventParams(ev, start)

		if ev.Banner != "" {
			img, err := s.platform.DownloadImage(ctx, ev.Banner)
			if err != nil {
				s.logger.Warn("Failed to download banner, creating event without image.",
					"id", ev.ID, "error", err)
			} else {
				params.Image = img
			}
		}

		if s.dryRun {
			s.logger.Info("[DRY RUN] Would create scheduled event.", "id", ev.ID, "name", ev.Name)
			continue
		}

		s.logger.Info("Creating scheduled event.", "id", ev.ID, "name", ev.Name)
		if err := s.platform.CreateScheduledEvent(ctx, params, auditReason); err != nil {
			return fmt.Errorf("failed to create event for id %d: %w", ev.ID, err)
		}
	}

	return nil
}

// filterNew drops every candidate whose marker already appears in some
// existing event description, preserving candidate order.
func (s *Syncer) filterNew(candidates []models.Event, existing []*discordgo.GuildScheduledEvent) []models.Event {
	var newEvents []models.Event

outer:
	for _, cand := range candidates {
		for _, ev := range existing {
			if marker.Contains(ev.Description, cand.ID) {
				s.logger.Debug("Event already mirrored, skipping.", "id", cand.ID)
				continue outer
			}
		}
		newEvents = append(newEvents, cand)
	}

	return newEvents
}

// parseStartTime parses a TruckersMP start timestamp. The value is naive, no
// timezone attached; it is interpreted as UTC. A malformed timestamp degrades
// to the current instant, which the past-event check then filters out.
func parseStartTime(s string) time.Time {
	t, err := time.Parse(startTimeLayout, s)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
