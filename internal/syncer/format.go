package syncer

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"tmpsync/internal/marker"
	"tmpsync/internal/models"
)

const (
	tmpBaseURL      = "https://truckersmp.com"
	startTimeLayout = "2006-01-02 15:04:05"
	eventDuration   = time.Hour

	// Discord caps scheduled event descriptions at 1000 characters.
	maxDescriptionLen = 1000
)

var markdownImageRE = regexp.MustCompile(`!(\[[^\]]*\])?\([^)]*\)`)

// buildEventParams maps a TruckersMP event to a scheduled-event creation
// payload. The event is external: it points at the departure city rather
// than a voice channel.
func buildEventParams(ev models.Event, start time.Time) *discordgo.GuildScheduledEventParams {
	end := start.Add(eventDuration)

	return &discordgo.GuildScheduledEventParams{
		Name:               ev.Name,
		Description:        buildDescription(ev),
		ScheduledStartTime: &start,
		ScheduledEndTime:   &end,
		PrivacyLevel:       discordgo.GuildScheduledEventPrivacyLevelGuildOnly,
		EntityType:         discordgo.GuildScheduledEventEntityTypeExternal,
		EntityMetadata: &discordgo.GuildScheduledEventEntityMetadata{
			Location: ev.Departure.City,
		},
	}
}

// buildDescription assembles the mirrored description: a link back to the
// TruckersMP page, the sanitized event description, and the dedup marker.
// The body is truncated from the end so the whole string stays within the
// platform limit, never cutting through a multi-byte character.
func buildDescription(ev models.Event) string {
	prefix := fmt.Sprintf("[See on TruckersMP](%s%s)\n\n", tmpBaseURL, ev.URL)
	suffix := "\n\n" + marker.Format(ev.ID)

	body := strings.ReplaceAll(ev.Description, "\r", "")
	body = markdownImageRE.ReplaceAllString(body, "")

	if max := maxDescriptionLen - len(prefix) - len(suffix); len(body) > max {
		if max < 0 {
			max = 0
		}
		for max > 0 && !utf8.RuneStart(body[max]) {
			max--
		}
		body = body[:max]
	}

	return prefix + body + suffix
}
