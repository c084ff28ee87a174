package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/bot"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// commandTimeout bounds a single command, including track resolution.
const commandTimeout = 30 * time.Second

var errNotInGuild = errors.New("command used outside a guild")

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel *usecases.VoiceChannelService
	playback     *usecases.PlaybackService
	queue        *usecases.QueueService
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
) *CommandHandlers {
	return &CommandHandlers{
		voiceChannel: voiceChannel,
		playback:     playback,
		queue:        queue,
	}
}

// invocation holds the IDs every command needs.
type invocation struct {
	guildID   snowflake.ID
	userID    snowflake.ID
	channelID snowflake.ID
}

func parseInvocation(i *discordgo.InteractionCreate) (invocation, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return invocation{}, errNotInGuild
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return invocation{}, fmt.Errorf("invalid guild: %w", err)
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return invocation{}, fmt.Errorf("invalid user: %w", err)
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return invocation{}, fmt.Errorf("invalid channel: %w", err)
	}

	return invocation{guildID: guildID, userID: userID, channelID: channelID}, nil
}

// HandlePlay handles the /play command.
// Resolution may outlast the interaction deadline, so the response is deferred
// and edited once the tracks are queued.
func (h *CommandHandlers) HandlePlay(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := parseInvocation(i)
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}

	if err := r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.playback.Play(ctx, usecases.PlayInput{
		GuildID:               inv.guildID,
		UserID:                inv.userID,
		NotificationChannelID: inv.channelID,
		Query:                 query,
	})

	var embed *discordgo.MessageEmbed
	if err != nil {
		embed = errorEmbed(errorMessage(err))
	} else {
		embed = &discordgo.MessageEmbed{
			Description: playDescription(output),
			Color:       colorSuccess,
		}
	}

	return r.Edit([]*discordgo.MessageEmbed{embed})
}

// playDescription summarizes what /play queued.
func playDescription(output *usecases.PlayOutput) string {
	result := output.Result

	var sb strings.Builder
	if result.Kind == domain.ResultCollection {
		fmt.Fprintf(&sb, "Added **%d tracks** from %s **%s**",
			len(result.Tracks), result.CollectionKind, result.CollectionName)
		if output.Started == nil {
			fmt.Fprintf(&sb, " at position %d.", output.Position)
		} else {
			sb.WriteString(".")
		}
	} else {
		track := result.Tracks[0]
		if output.Started != nil {
			fmt.Fprintf(&sb, "Playing %s.", trackLink(track))
		} else {
			fmt.Fprintf(&sb, "Added %s to the queue at position %d.", trackLink(track), output.Position)
		}
	}

	if result.CrossResolved {
		fmt.Fprintf(&sb, "\nMatched from %s on %s.",
			result.Origin.DisplayName(), domain.ParseTrackSource(result.Provider).DisplayName())
	}
	return sb.String()
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := parseInvocation(i)
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.playback.Skip(ctx, usecases.SkipInput{GuildID: inv.guildID, UserID: inv.userID})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	// The next "Now Playing" is sent once the node starts the track.
	return respondSuccess(r, fmt.Sprintf("Skipped %s.", trackLink(output.SkippedTrack)))
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := parseInvocation(i)
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.playback.Stop(ctx, usecases.StopInput{GuildID: inv.guildID, UserID: inv.userID}); err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, "Stopped playback and cleared the queue.")
}

// HandleLeave handles the /leave command.
func (h *CommandHandlers) HandleLeave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := parseInvocation(i)
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.voiceChannel.Leave(ctx, usecases.LeaveInput{GuildID: inv.guildID, UserID: inv.userID}); err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, "Disconnected.")
}

// HandleLoop handles the /loop command.
func (h *CommandHandlers) HandleLoop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := parseInvocation(i)
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	var modeStr string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "mode" {
			modeStr = opt.StringValue()
		}
	}

	mode, ok := domain.ParseLoopMode(modeStr)
	if !ok {
		return respondError(r, fmt.Sprintf("Unknown loop mode %q.", modeStr))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	err = h.playback.SetLoopMode(ctx, usecases.SetLoopModeInput{
		GuildID: inv.guildID,
		UserID:  inv.userID,
		Mode:    mode,
	})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	var description string
	switch mode {
	case domain.LoopModeTrack:
		description = "Now looping the current track."
	case domain.LoopModeQueue:
		description = "Now looping the queue."
	default:
		description = "Loop disabled."
	}
	return respondSuccess(r, description)
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := parseInvocation(i)
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	var page int
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "page" {
			page = int(opt.IntValue())
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.queue.List(ctx, usecases.QueueListInput{GuildID: inv.guildID, Page: page})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{queueEmbed(output)},
		},
	})
}

// queueEmbed renders one page of the queue.
func queueEmbed(output *usecases.QueueListOutput) *discordgo.MessageEmbed {
	// Build title with loop mode indicator
	title := "Queue"
	switch output.LoopMode {
	case domain.LoopModeTrack:
		title = "Queue \U0001F502" // 🔂
	case domain.LoopModeQueue:
		title = "Queue \U0001F501" // 🔁
	}

	var sb strings.Builder
	if output.CurrentTrack != nil {
		sb.WriteString("### Now Playing\n")
		sb.WriteString(trackLink(*output.CurrentTrack))
		sb.WriteString("\n")
	}

	if len(output.Tracks) > 0 {
		sb.WriteString("### Up Next\n")
		for idx, track := range output.Tracks {
			writeTrackLine(&sb, output.Offset+idx, track)
		}
	} else if output.CurrentTrack == nil {
		sb.WriteString("Queue is empty.")
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: sb.String(),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d · %d upcoming",
				output.CurrentPage, output.TotalPages, output.TotalTracks),
		},
	}
}

// HandleNowPlaying handles the /nowplaying command.
func (h *CommandHandlers) HandleNowPlaying(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := parseInvocation(i)
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.queue.NowPlaying(ctx, usecases.NowPlayingInput{GuildID: inv.guildID})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{nowPlayingEmbed(output)},
		},
	})
}

func nowPlayingEmbed(output *usecases.NowPlayingOutput) *discordgo.MessageEmbed {
	track := output.Track

	return &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    "Now Playing",
			IconURL: track.Source.IconURL(),
		},
		Title: track.Title,
		URL:   track.URI,
		Color: track.Source.Color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Artist", Value: track.Author, Inline: true},
			{Name: "Duration", Value: track.FormattedDuration(), Inline: true},
			{Name: "Requested by", Value: fmt.Sprintf("<@%d>", track.RequesterID), Inline: true},
			{Name: "Loop", Value: output.LoopMode.String(), Inline: true},
			{Name: "Volume", Value: fmt.Sprintf("%d%%", output.Volume), Inline: true},
			{Name: "Up Next", Value: fmt.Sprintf("%d track(s)", output.Upcoming), Inline: true},
		},
	}
}

// HandleVolume handles the /volume command.
func (h *CommandHandlers) HandleVolume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, err := parseInvocation(i)
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	var level int
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "level" {
			level = int(opt.IntValue())
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.playback.SetVolume(ctx, usecases.SetVolumeInput{
		GuildID: inv.guildID,
		UserID:  inv.userID,
		Volume:  level,
	})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	if output.Applied {
		return respondSuccess(r, fmt.Sprintf("Volume set to %d%%.", output.Volume))
	}
	return respondSuccess(r, fmt.Sprintf("Default volume set to %d%% for the next session.", output.Volume))
}

// errorMessage maps use case errors to user-facing text.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, errNotInGuild):
		return "This command can only be used in a server."
	case errors.Is(err, usecases.ErrInvalidQuery):
		return "That query can't be searched. Use a search term or a supported link."
	case errors.Is(err, usecases.ErrNoResults):
		return "No results found."
	case errors.Is(err, usecases.ErrCrossResolutionFailed):
		return "Couldn't find a playable match for that link."
	case errors.Is(err, usecases.ErrUserNotInVoice):
		return "You need to be in a voice channel."
	case errors.Is(err, usecases.ErrDifferentVoiceChannel):
		return "You need to be in the same voice channel as the bot."
	case errors.Is(err, usecases.ErrNotConnected):
		return "Not connected to a voice channel."
	case errors.Is(err, usecases.ErrNotPlaying):
		return "Nothing is playing."
	case errors.Is(err, usecases.ErrVoiceConnectionFailed):
		return "Failed to join your voice channel."
	case errors.Is(err, usecases.ErrSessionClosed):
		return "The player disconnected while handling your request."
	case errors.Is(err, usecases.ErrInvalidVolume):
		return fmt.Sprintf("Volume must be between 0 and %d.", usecases.MaxUserVolume)
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out."
	default:
		slog.Error("music command failed", "error", err)
		return "Something went wrong."
	}
}

// Response helpers.

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	}
}

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{errorEmbed(message)},
		},
	})
}

func respondSuccess(r bot.Responder, description string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: description,
					Color:       colorSuccess,
				},
			},
		},
	})
}

func trackLink(track domain.Track) string {
	if track.URI != "" {
		return fmt.Sprintf("[%s](%s)", track.Title, track.URI)
	}
	return fmt.Sprintf("**%s**", track.Title)
}

// writeTrackLine writes a single track line to the string builder.
// Escapes period to prevent Discord markdown list formatting.
func writeTrackLine(sb *strings.Builder, displayIndex int, track domain.Track) {
	if track.URI != "" {
		fmt.Fprintf(
			sb,
			"%d\\. [%s](%s) - %s\n",
			displayIndex,
			track.Title,
			track.URI,
			track.Author,
		)
	} else {
		fmt.Fprintf(sb, "%d\\. **%s** - %s\n", displayIndex, track.Title, track.Author)
	}
}
