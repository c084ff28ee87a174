package ports

import (
	"context"

	"github.com/sglre6355/sumire/internal/modules/music_player/domain"
)

// NodeEventPublisher publishes events reported by the audio node.
type NodeEventPublisher interface {
	PublishNodeEvent(event domain.NodeEvent)
}

// NotificationPublisher publishes notifications emitted by sessions.
type NotificationPublisher interface {
	PublishNotification(notification domain.Notification)
}

// EventSubscriber registers handlers for published events.
// Handlers for one stream are invoked sequentially in publish order.
type EventSubscriber interface {
	OnNodeEvent(handler func(context.Context, domain.NodeEvent))
	OnNotification(handler func(context.Context, domain.Notification))
}
