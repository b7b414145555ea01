package services

import (
	"context"
	"log/slog"

	"budget/internal/amqp"
)

// EventPublisher broadcasts record changes to other processes.
type EventPublisher interface {
	PublishChange(ctx context.Context, event *amqp.ChangeEvent) error
}

// changeNotifier invalidates derived data after a successful write.
// Both collaborators are optional.
type changeNotifier struct {
	summaries *SummaryCache
	events    EventPublisher
}

func (n changeNotifier) changed(ctx context.Context, entity, action string, id int64) {
	n.summaries.Invalidate()

	if n.events == nil {
		return
	}
	// Publishing is best effort: the write already succeeded locally.
	if err := n.events.PublishChange(ctx, amqp.NewChangeEvent(entity, action, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"entity", entity, "action", action, "id", id, "error", err)
	}
}

// RemoteChangeHandler purges summaries when another process reports a write.
// Events published by self were already applied locally and are ignored.
func RemoteChangeHandler(summaries *SummaryCache, self string) func(*amqp.ChangeEvent) error {
	return func(event *amqp.ChangeEvent) error {
		if event.Source != "" && event.Source == self {
			return nil
		}
		slog.Debug("Remote change received, purging summaries",
			"entity", event.Entity, "action", event.Action, "id", event.ID, "source", event.Source)
		summaries.Invalidate()
		return nil
	}
}
