package providers

import (
	"context"

	"github.com/platefinder/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to pipeline events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.PipelineEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.PipelineEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// Event channel constants for different event scopes
const (
	// EventChannelJobPrefix is the prefix for job-specific channels
	EventChannelJobPrefix = "job:"

	// EventChannelSessionPrefix is the prefix for session-wide channels
	EventChannelSessionPrefix = "session:"
)

// GetJobChannel returns the channel name for a specific job
func GetJobChannel(jobID string) string {
	return EventChannelJobPrefix + jobID
}

// GetSessionChannel returns the channel name for a specific session
func GetSessionChannel(sessionID string) string {
	return EventChannelSessionPrefix + sessionID
}
