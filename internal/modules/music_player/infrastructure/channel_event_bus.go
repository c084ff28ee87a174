package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sumire/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.NodeEventPublisher    = (*ChannelEventBus)(nil)
	_ ports.NotificationPublisher = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber       = (*ChannelEventBus)(nil)
)

// ChannelEventBus provides a channel-based event bus for async event handling.
// Node events and notifications travel on separate streams, each drained by a
// single dispatcher goroutine so handlers see events in publish order.
type ChannelEventBus struct {
	nodeEvents    chan domain.NodeEvent
	notifications chan domain.Notification

	nodeEventHandlers    []func(context.Context, domain.NodeEvent)
	notificationHandlers []func(context.Context, domain.Notification)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		nodeEvents:    make(chan domain.NodeEvent, bufferSize),
		notifications: make(chan domain.Notification, bufferSize),
		ctx:           ctx,
		cancel:        cancel,
	}

	bus.wg.Add(2)
	go dispatch(bus, bus.nodeEvents, func() []func(context.Context, domain.NodeEvent) {
		return bus.nodeEventHandlers
	})
	go dispatch(bus, bus.notifications, func() []func(context.Context, domain.Notification) {
		return bus.notificationHandlers
	})

	return bus
}

// dispatch delivers events from ch to the handlers returned by handlers until
// the bus is closed.
func dispatch[E any](b *ChannelEventBus, ch <-chan E, handlers func() []func(context.Context, E)) {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			b.mu.RLock()
			hs := handlers()
			b.mu.RUnlock()
			for _, handler := range hs {
				handler(b.ctx, event)
			}
		}
	}
}

// publish sends event on ch without blocking.
// If the channel buffer is full, the event is dropped with a warning.
func publish[E interface{ SessionID() snowflake.ID }](b *ChannelEventBus, ch chan<- E, kind string, event E) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", kind)
		return
	}

	select {
	case ch <- event:
		slog.Debug("published event", "type", kind, "guild", event.SessionID())
	default:
		slog.Warn("event buffer full, dropping event", "type", kind, "guild", event.SessionID())
	}
}

// PublishNodeEvent publishes an event reported by the audio node.
func (b *ChannelEventBus) PublishNodeEvent(event domain.NodeEvent) {
	publish(b, b.nodeEvents, "NodeEvent", event)
}

// PublishNotification publishes a session notification.
func (b *ChannelEventBus) PublishNotification(notification domain.Notification) {
	publish(b, b.notifications, "Notification", notification)
}

// OnNodeEvent registers a handler for node events.
func (b *ChannelEventBus) OnNodeEvent(handler func(context.Context, domain.NodeEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nodeEventHandlers = append(b.nodeEventHandlers, handler)
}

// OnNotification registers a handler for notifications.
func (b *ChannelEventBus) OnNotification(handler func(context.Context, domain.Notification)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notificationHandlers = append(b.notificationHandlers, handler)
}

// Close closes all event channels and stops dispatchers.
// After calling Close, publishing will no longer send events.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	// Cancel context to stop dispatchers
	b.cancel()

	close(b.nodeEvents)
	close(b.notifications)

	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
