package events

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Arch0125/zulip-mobile/internal/api"
	"github.com/Arch0125/zulip-mobile/internal/logging"
	"github.com/Arch0125/zulip-mobile/internal/models"
)

// Consumer errors.
var (
	// ErrQueueInvalid is returned when the server no longer knows the
	// event queue. The session must re-register and rebuild state from
	// a fresh snapshot.
	ErrQueueInvalid = errors.New("event queue invalidated, re-registration required")
)

// EventSource is the transport the consumer pulls events from.
type EventSource interface {
	Events(ctx context.Context, queueID string, lastEventID int64) ([]models.Event, error)
}

// ConsumerConfig contains long-poll retry tuning.
type ConsumerConfig struct {
	// RetryBackoff is the initial wait after a transport failure.
	// Default: 1s.
	RetryBackoff time.Duration

	// MaxRetryBackoff caps the exponential backoff. Default: 30s.
	MaxRetryBackoff time.Duration
}

// DefaultConsumerConfig returns sensible defaults.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		RetryBackoff:    time.Second,
		MaxRetryBackoff: 30 * time.Second,
	}
}

// Consumer long-polls one server event queue and publishes every event,
// in arrival order, exactly once. It deduplicates redelivered events by
// queue sequence number at this boundary; downstream reducers see each
// event at most once and never out of order.
type Consumer struct {
	source      EventSource
	publisher   *Publisher
	queueID     string
	lastEventID int64
	config      ConsumerConfig
	logger      zerolog.Logger
}

// NewConsumer creates a consumer for an already-registered queue.
// lastEventID is the value returned at registration.
func NewConsumer(source EventSource, publisher *Publisher, queueID string, lastEventID int64, config ConsumerConfig) *Consumer {
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = DefaultConsumerConfig().RetryBackoff
	}
	if config.MaxRetryBackoff <= 0 {
		config.MaxRetryBackoff = DefaultConsumerConfig().MaxRetryBackoff
	}
	return &Consumer{
		source:      source,
		publisher:   publisher,
		queueID:     queueID,
		lastEventID: lastEventID,
		config:      config,
		logger:      logging.Component("events").With().Str("queue_id", queueID).Logger(),
	}
}

// LastEventID returns the sequence number of the last published event.
func (c *Consumer) LastEventID() int64 {
	return c.lastEventID
}

// Run polls until ctx is done or the queue is invalidated. Transport
// errors are retried with exponential backoff; ErrQueueInvalid is
// terminal and requires the caller to re-register.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := c.config.RetryBackoff

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		batch, err := c.source.Events(ctx, c.queueID, c.lastEventID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, api.ErrBadEventQueue) {
				c.logger.Warn().Err(err).Msg("event queue expired")
				return ErrQueueInvalid
			}

			c.logger.Warn().Err(err).Dur("backoff", backoff).Msg("event poll failed, retrying")
			if err := sleepWithContext(ctx, backoff); err != nil {
				return err
			}
			backoff *= 2
			if backoff > c.config.MaxRetryBackoff {
				backoff = c.config.MaxRetryBackoff
			}
			continue
		}
		backoff = c.config.RetryBackoff

		c.dispatch(batch)
	}
}

// dispatch publishes one polled batch in order, skipping events at or
// below the high-water mark (the server redelivers on overlapping polls).
func (c *Consumer) dispatch(batch []models.Event) {
	for i := range batch {
		event := &batch[i]
		if event.ID <= c.lastEventID {
			c.logger.Debug().Int64("event_id", event.ID).Msg("skipping redelivered event")
			continue
		}
		c.lastEventID = event.ID

		if event.Type == models.EventTypeHeartbeat {
			continue
		}
		c.publisher.Publish(event)
	}
}

func sleepWithContext(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
