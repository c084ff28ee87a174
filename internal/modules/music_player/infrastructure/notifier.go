package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorRed = 0xE74C3C
)

// Notifier sends notifications to Discord channels.
type Notifier struct {
	session    *discordgo.Session
	httpClient *http.Client
}

// NewNotifier creates a new Notifier.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{
		session: session,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// SendNowPlaying sends a "Now Playing" embed to the channel and returns the message ID.
func (n *Notifier) SendNowPlaying(
	channelID snowflake.ID,
	notification domain.NowPlayingNotification,
	requester *ports.Requester,
) (snowflake.ID, error) {
	track := notification.Track
	source := track.Source

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    "Now Playing",
			IconURL: source.IconURL(),
		},
		Title:     track.Title,
		URL:       track.URI,
		Color:     source.Color(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Artist",
				Value:  track.Author,
				Inline: true,
			},
		},
	}

	// Only show duration for non-stream tracks
	if !track.IsStream {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Duration",
			Value:  track.FormattedDuration(),
			Inline: true,
		})
	}

	if notification.LoopMode != domain.LoopModeOff {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Loop",
			Value:  notification.LoopMode.String(),
			Inline: true,
		})
	}

	if notification.Upcoming > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Up Next",
			Value:  fmt.Sprintf("%d track(s)", notification.Upcoming),
			Inline: true,
		})
	}

	if requester != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    fmt.Sprintf("Requested by %s", requester.DisplayName),
			IconURL: requester.AvatarURL,
		}
	}

	if thumbnailURL := n.getBestThumbnail(source, track.URI, track.ArtworkURL); thumbnailURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{
			URL: thumbnailURL,
		}
	}

	msg, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	if err != nil {
		return 0, err
	}
	messageID, err := snowflake.Parse(msg.ID)
	if err != nil {
		return 0, err
	}
	return messageID, nil
}

// DeleteMessage deletes a message from the channel.
func (n *Notifier) DeleteMessage(channelID snowflake.ID, messageID snowflake.ID) error {
	return n.session.ChannelMessageDelete(channelID.String(), messageID.String())
}

// SendPlaybackFailed reports a track that could not be played.
func (n *Notifier) SendPlaybackFailed(
	channelID snowflake.ID,
	notification domain.PlaybackFailedNotification,
) error {
	return n.sendError(channelID, fmt.Sprintf(
		"Could not play **%s**: %s",
		notification.Track.Title,
		notification.Hint.Description(),
	))
}

// SendPlaybackStuck reports a track that stalled and was skipped.
func (n *Notifier) SendPlaybackStuck(
	channelID snowflake.ID,
	notification domain.PlaybackStuckNotification,
) error {
	return n.sendError(channelID, fmt.Sprintf(
		"**%s** stopped producing audio for %s and was skipped.",
		notification.Track.Title,
		notification.Threshold.Round(time.Second),
	))
}

// SendIdleDisconnect reports that the bot left voice after idling.
func (n *Notifier) SendIdleDisconnect(
	channelID snowflake.ID,
	notification domain.IdleDisconnectNotification,
) error {
	embed := &discordgo.MessageEmbed{
		Description: fmt.Sprintf(
			"Left the voice channel after %s of inactivity.",
			notification.Timeout.Round(time.Second),
		),
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// sendError sends an error message embed to the channel.
func (n *Notifier) sendError(channelID snowflake.ID, message string) error {
	embed := &discordgo.MessageEmbed{
		Description: message,
		Color:       colorRed,
	}

	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// getBestThumbnail attempts to find the best quality thumbnail for the track.
// For YouTube, it tries different quality levels (maxresdefault, sddefault, etc.).
// For other sources, it returns the original artwork URL.
func (n *Notifier) getBestThumbnail(
	source domain.TrackSource,
	uri string,
	fallbackURL string,
) string {
	switch source {
	case domain.TrackSourceYouTube, domain.TrackSourceYouTubeMusic:
		videoID := youtubeVideoID(uri)
		if videoID == "" {
			return fallbackURL
		}
		return n.getYouTubeThumbnail(videoID, fallbackURL)
	default:
		return fallbackURL
	}
}

// youtubeVideoID extracts the video ID from a YouTube or YouTube Music URL.
func youtubeVideoID(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	if u.Host == "youtu.be" {
		return strings.TrimPrefix(u.Path, "/")
	}
	return u.Query().Get("v")
}

// getYouTubeThumbnail tries to find the highest quality YouTube thumbnail available.
func (n *Notifier) getYouTubeThumbnail(videoID string, fallbackURL string) string {
	qualities := []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault"}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, quality := range qualities {
		thumbnailURL := fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoID, quality)
		if n.urlExists(ctx, thumbnailURL) {
			return thumbnailURL
		}
	}

	return fallbackURL
}

// urlExists checks if a URL returns a successful response using a HEAD request.
func (n *Notifier) urlExists(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)
