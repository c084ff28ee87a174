package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/session"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

// NodeEventDispatcher routes node events to the session of their guild.
// Events for guilds without a live session are dropped.
type NodeEventDispatcher struct {
	sessions   *session.Registry
	subscriber ports.EventSubscriber
}

// NewNodeEventDispatcher creates a new NodeEventDispatcher.
func NewNodeEventDispatcher(
	sessions *session.Registry,
	subscriber ports.EventSubscriber,
) *NodeEventDispatcher {
	return &NodeEventDispatcher{
		sessions:   sessions,
		subscriber: subscriber,
	}
}

// Start registers the dispatcher with the subscriber.
func (d *NodeEventDispatcher) Start() {
	d.subscriber.OnNodeEvent(func(_ context.Context, event domain.NodeEvent) {
		d.Dispatch(event)
	})

	slog.Debug("node event dispatcher registered")
}

// Dispatch hands the event to its session inbox without waiting for it to be
// processed. It returns false if the event was dropped.
func (d *NodeEventDispatcher) Dispatch(event domain.NodeEvent) bool {
	s, ok := d.sessions.Get(event.SessionID())
	if !ok {
		slog.Debug("dropping node event for unknown session",
			"guild", event.SessionID(),
			"event", event,
		)
		return false
	}

	if !s.HandleNodeEvent(event) {
		slog.Debug("dropping node event for closed session",
			"guild", event.SessionID(),
			"event", event,
		)
		return false
	}
	return true
}

type nowPlayingMessage struct {
	channelID snowflake.ID
	messageID snowflake.ID
}

// NotificationEventHandler delivers session notifications to Discord.
// It keeps one "Now Playing" message per guild and deletes the previous one
// when a new track starts or the session goes idle.
type NotificationEventHandler struct {
	subscriber ports.EventSubscriber
	notifier   ports.NotificationSender
	requesters ports.RequesterProvider

	mu         sync.Mutex
	nowPlaying map[snowflake.ID]nowPlayingMessage
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
// requesters may be nil.
func NewNotificationEventHandler(
	subscriber ports.EventSubscriber,
	notifier ports.NotificationSender,
	requesters ports.RequesterProvider,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		subscriber: subscriber,
		notifier:   notifier,
		requesters: requesters,
		nowPlaying: make(map[snowflake.ID]nowPlayingMessage),
	}
}

// Start registers the handler with the subscriber.
func (h *NotificationEventHandler) Start() {
	h.subscriber.OnNotification(func(_ context.Context, n domain.Notification) {
		h.Handle(n)
	})

	slog.Debug("notification event handler registered")
}

// Handle delivers a single notification.
func (h *NotificationEventHandler) Handle(notification domain.Notification) {
	switch n := notification.(type) {
	case domain.NowPlayingNotification:
		h.handleNowPlaying(n)
	case domain.PlaybackFailedNotification:
		if n.ChannelID == 0 {
			return
		}
		if err := h.notifier.SendPlaybackFailed(n.ChannelID, n); err != nil {
			slog.Warn("failed to send playback failure", "guild", n.GuildID, "error", err)
		}
	case domain.PlaybackStuckNotification:
		if n.ChannelID == 0 {
			return
		}
		if err := h.notifier.SendPlaybackStuck(n.ChannelID, n); err != nil {
			slog.Warn("failed to send stuck notification", "guild", n.GuildID, "error", err)
		}
	case domain.IdleDisconnectNotification:
		h.deleteNowPlaying(n.GuildID)
		if n.ChannelID == 0 {
			return
		}
		if err := h.notifier.SendIdleDisconnect(n.ChannelID, n); err != nil {
			slog.Warn("failed to send idle disconnect", "guild", n.GuildID, "error", err)
		}
	default:
		slog.Warn("ignoring unknown notification", "notification", notification)
	}
}

// Forget deletes the tracked "Now Playing" message of the guild, if any.
func (h *NotificationEventHandler) Forget(guildID snowflake.ID) {
	h.deleteNowPlaying(guildID)
}

func (h *NotificationEventHandler) handleNowPlaying(n domain.NowPlayingNotification) {
	h.deleteNowPlaying(n.GuildID)

	if n.ChannelID == 0 {
		return
	}

	messageID, err := h.notifier.SendNowPlaying(n.ChannelID, n, h.requester(n.GuildID, n.Track.RequesterID))
	if err != nil {
		slog.Error("failed to send now playing notification", "guild", n.GuildID, "error", err)
		return
	}

	h.mu.Lock()
	h.nowPlaying[n.GuildID] = nowPlayingMessage{channelID: n.ChannelID, messageID: messageID}
	h.mu.Unlock()
}

func (h *NotificationEventHandler) deleteNowPlaying(guildID snowflake.ID) {
	h.mu.Lock()
	msg, ok := h.nowPlaying[guildID]
	delete(h.nowPlaying, guildID)
	h.mu.Unlock()

	if !ok {
		return
	}
	if err := h.notifier.DeleteMessage(msg.channelID, msg.messageID); err != nil {
		slog.Warn("failed to delete previous now playing message",
			"guild", guildID,
			"message", msg.messageID,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) requester(guildID, userID snowflake.ID) *ports.Requester {
	if h.requesters == nil || userID == 0 {
		return nil
	}

	r, err := h.requesters.GetRequester(guildID, userID)
	if err != nil {
		slog.Debug("failed to look up requester", "guild", guildID, "user", userID, "error", err)
		return nil
	}
	return &r
}
