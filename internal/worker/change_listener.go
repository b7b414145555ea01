package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"budget/internal/amqp"
)

// ChangeConsumer delivers change events until ctx ends or the subscription breaks.
// ConsumeChanges calls ready once the subscription is in place.
type ChangeConsumer interface {
	ConsumeChanges(ctx context.Context, ready func(), handler func(*amqp.ChangeEvent) error) error
	Reconnect() error
}

// ChangeListener keeps a change event subscription alive across broker restarts.
//
// OnGap runs whenever the subscription is lost, since events may be missed
// until it is back. OnReady runs each time a subscription is established.
type ChangeListener struct {
	consumer   ChangeConsumer
	handler    func(*amqp.ChangeEvent) error
	OnGap      func()
	OnReady    func()
	MinBackoff time.Duration
	MaxBackoff time.Duration
	logger     *slog.Logger
	sleep      func(context.Context, time.Duration) error
}

func NewChangeListener(consumer ChangeConsumer, handler func(*amqp.ChangeEvent) error, logger *slog.Logger) *ChangeListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeListener{
		consumer:   consumer,
		handler:    handler,
		MinBackoff: time.Second,
		MaxBackoff: time.Minute,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// Run blocks until ctx is cancelled. It returns nil on cancellation.
func (l *ChangeListener) Run(ctx context.Context) error {
	backoff := l.MinBackoff
	for {
		subscribed := false
		err := l.consumer.ConsumeChanges(ctx, func() {
			subscribed = true
			if l.OnReady != nil {
				l.OnReady()
			}
		}, l.handler)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("subscription ended")
		}
		if subscribed {
			backoff = l.MinBackoff
		}
		if l.OnGap != nil {
			l.OnGap()
		}

		// Redial until the broker answers; the old channel is unusable.
		for {
			l.logger.Warn("Change event subscription lost, retrying",
				"error", err, "backoff", backoff.String())
			if l.sleep(ctx, backoff) != nil {
				return nil
			}
			backoff = min(backoff*2, l.MaxBackoff)

			if err = l.consumer.Reconnect(); err == nil {
				break
			}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
