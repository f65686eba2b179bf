package discord

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ErrGuildCount indicates the bot is not in exactly one guild. The sync only
// works with a single target server, anything else is a misconfiguration.
var ErrGuildCount = errors.New("bot must be in exactly one guild")

// Bot wraps a Discord gateway session scoped to a single guild.
type Bot struct {
	session    *discordgo.Session
	httpClient *http.Client
	logger     *slog.Logger
	ready      chan *discordgo.Ready
	guildID    string
}

// New creates a Bot for the given token. The gateway is not opened yet;
// call Connect before using the scheduled-event methods.
func New(logger *slog.Logger, token string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsNone

	b := &Bot{
		session:    session,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		ready:      make(chan *discordgo.Ready, 1),
	}
	session.AddHandler(b.handleReady)
	return b, nil
}

// handleReady forwards the gateway ready payload to Connect. Only the first
// ready matters; later ones (reconnects) are dropped.
func (b *Bot) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	select {
	case b.ready <- r:
	default:
	}
}

// Connect opens the gateway session, waits for the ready signal once, and
// pins the single guild the bot serves.
func (b *Bot) Connect(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway connection: %w", err)
	}

	select {
	case r := <-b.ready:
		b.logger.Info("Connected to Discord.", "user", r.User.Username)
		if len(r.Guilds) != 1 {
			return fmt.Errorf("%w, got %d", ErrGuildCount, len(r.Guilds))
		}
		b.guildID = r.Guilds[0].ID
		b.logger.Info("Working on guild.", "guildID", b.guildID)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears down the gateway session.
func (b *Bot) Close() error {
	return b.session.Close()
}

// ScheduledEvents lists all scheduled events currently on the guild.
func (b *Bot) ScheduledEvents(ctx context.Context) ([]*discordgo.GuildScheduledEvent, error) {
	events, err := b.session.GuildScheduledEvents(b.guildID, false, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled events: %w", err)
	}
	return events, nil
}

// CreateScheduledEvent creates one scheduled event on the guild, with the
// given audit log reason.
func (b *Bot) CreateScheduledEvent(ctx context.Context, params *discordgo.GuildScheduledEventParams, reason string) error {
	_, err := b.session.GuildScheduledEventCreate(b.guildID, params,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return fmt.Errorf("failed to create scheduled event: %w", err)
	}
	return nil
}

// DownloadImage fetches an image over HTTP and returns it as a data URI,
// the format the scheduled event image field expects.
func (b *Bot) DownloadImage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s downloading %s", resp.Status, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}
