package syncer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmpsync/internal/models"
)

// fakePlatform records create calls instead of talking to Discord.
type fakePlatform struct {
	existing  []*discordgo.GuildScheduledEvent
	listErr   error
	createErr error
	image     string
	imageErr  error

	created   []*discordgo.GuildScheduledEventParams
	reasons   []string
	imageURLs []string
}

func (f *fakePlatform) ScheduledEvents(_ context.Context) ([]*discordgo.GuildScheduledEvent, error) {
	return f.existing, f.listErr
}

func (f *fakePlatform) CreateScheduledEvent(_ context.Context, params *discordgo.GuildScheduledEventParams, reason string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, params)
	f.reasons = append(f.reasons, reason)
	return nil
}

func (f *fakePlatform) DownloadImage(_ context.Context, url string) (string, error) {
	f.imageURLs = append(f.imageURLs, url)
	return f.image, f.imageErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func futureStartAt(d time.Duration) string {
	return time.Now().UTC().Add(d).Format(startTimeLayout)
}

func TestSyncCreatesNewFutureEvent(t *testing.T) {
	platform := &fakePlatform{}
	s := New(testLogger(), platform, false)

	ev := models.Event{
		ID:        42,
		Name:      "Autumn Convoy",
		Departure: models.Location{City: "Duisburg"},
		StartAt:   futureStartAt(time.Hour),
		URL:       "/events/42",
	}

	err := s.Sync(context.Background(), []models.Event{ev})
	require.NoError(t, err)

	require.Len(t, platform.created, 1)
	created := platform.created[0]
	assert.True(t, strings.HasSuffix(created.Description, "### 42 ###"))
	assert.Equal(t, "Duisburg", created.EntityMetadata.Location)
	assert.Equal(t, []string{"Created from TruckersMP event"}, platform.reasons)
}

func TestSyncSkipsAlreadyMirroredEvent(t *testing.T) {
	platform := &fakePlatform{
		existing: []*discordgo.GuildScheduledEvent{
			{Description: "Mirrored earlier\n\n### 42 ###"},
		},
	}
	s := New(testLogger(), platform, false)

	ev := models.Event{ID: 42, StartAt: futureStartAt(time.Hour), URL: "/events/42"}

	err := s.Sync(context.Background(), []models.Event{ev})
	require.NoError(t, err)
	assert.Empty(t, platform.created)
}

func TestSyncSkipsPastEvent(t *testing.T) {
	platform := &fakePlatform{}
	s := New(testLogger(), platform, false)

	ev := models.Event{ID: 1, StartAt: "2020-01-01 12:00:00", URL: "/events/1"}

	err := s.Sync(context.Background(), []models.Event{ev})
	require.NoError(t, err)
	assert.Empty(t, platform.created)
}

func TestSyncSkipsEventWithMalformedStartAt(t *testing.T) {
	platform := &fakePlatform{}
	s := New(testLogger(), platform, false)

	ev := models.Event{ID: 1, StartAt: "garbage", URL: "/events/1"}

	err := s.Sync(context.Background(), []models.Event{ev})
	require.NoError(t, err)
	assert.Empty(t, platform.created)
}

func TestSyncSkipsDuplicateCandidatesWithExistingMarker(t *testing.T) {
	// The same event can show up in both the created and attending lists.
	platform := &fakePlatform{
		existing: []*discordgo.GuildScheduledEvent{
			{Description: "### 42 ###"},
		},
	}
	s := New(testLogger(), platform, false)

	ev := models.Event{ID: 42, StartAt: futureStartAt(time.Hour), URL: "/events/42"}

	err := s.Sync(context.Background(), []models.Event{ev, ev})
	require.NoError(t, err)
	assert.Empty(t, platform.created)
}

func TestSyncPreservesCandidateOrder(t *testing.T) {
	platform := &fakePlatform{}
	s := New(testLogger(), platform, false)

	events := []models.Event{
		{ID: 1, Name: "first", StartAt: futureStartAt(time.Hour), URL: "/events/1"},
		{ID: 2, Name: "second", StartAt: futureStartAt(2 * time.Hour), URL: "/events/2"},
	}

	err := s.Sync(context.Background(), events)
	require.NoError(t, err)

	require.Len(t, platform.created, 2)
	assert.Equal(t, "first", platform.created[0].Name)
	assert.Equal(t, "second", platform.created[1].Name)
}

func TestSyncListFailureAborts(t *testing.T) {
	platform := &fakePlatform{listErr: errors.New("boom")}
	s := New(testLogger(), platform, false)

	err := s.Sync(context.Background(), []models.Event{
		{ID: 1, StartAt: futureStartAt(time.Hour)},
	})
	require.Error(t, err)
	assert.Empty(t, platform.created)
}

func TestSyncCreateFailureAborts(t *testing.T) {
	platform := &fakePlatform{createErr: errors.New("boom")}
	s := New(testLogger(), platform, false)

	err := s.Sync(context.Background(), []models.Event{
		{ID: 1, StartAt: futureStartAt(time.Hour), URL: "/events/1"},
	})
	require.Error(t, err)
}

func TestSyncAttachesBanner(t *testing.T) {
	platform := &fakePlatform{image: "data:image/png;base64,aGVsbG8="}
	s := New(testLogger(), platform, false)

	ev := models.Event{
		ID:      1,
		StartAt: futureStartAt(time.Hour),
		Banner:  "https://example.com/banner.png",
		URL:     "/events/1",
	}

	err := s.Sync(context.Background(), []models.Event{ev})
	require.NoError(t, err)

	require.Len(t, platform.created, 1)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", platform.created[0].Image)
	assert.Equal(t, []string{"https://example.com/banner.png"}, platform.imageURLs)
}

func TestSyncBannerFailureIsNonFatal(t *testing.T) {
	platform := &fakePlatform{imageErr: errors.New("404")}
	s := New(testLogger(), platform, false)

	ev := models.Event{
		ID:      1,
		StartAt: futureStartAt(time.Hour),
		Banner:  "https://example.com/banner.png",
		URL:     "/events/1",
	}

	err := s.Sync(context.Background(), []models.Event{ev})
	require.NoError(t, err)

	require.Len(t, platform.created, 1)
	assert.Empty(t, platform.created[0].Image)
}

func TestSyncDryRunCreatesNothing(t *testing.T) {
	platform := &fakePlatform{}
	s := New(testLogger(), platform, true)

	err := s.Sync(context.Background(), []models.Event{
		{ID: 1, StartAt: futureStartAt(time.Hour), URL: "/events/1"},
	})
	require.NoError(t, err)
	assert.Empty(t, platform.created)
}
