// Package session ties the API client, the event stream, the unread
// aggregate and the local cache together into one account lifecycle.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Arch0125/zulip-mobile/internal/events"
	"github.com/Arch0125/zulip-mobile/internal/logging"
	"github.com/Arch0125/zulip-mobile/internal/models"
	"github.com/Arch0125/zulip-mobile/internal/store"
	"github.com/Arch0125/zulip-mobile/internal/unread"
)

// Subscription IDs on the session's publisher. The unread aggregate is
// always applied before the cache mirror.
const (
	subUnread = "session-unread"
	subCache  = "session-cache"
)

// Gateway is the server surface the session needs. *api.Client
// implements it.
type Gateway interface {
	Register(ctx context.Context) (*models.RegisterResponse, error)
	Events(ctx context.Context, queueID string, lastEventID int64) ([]models.Event, error)
	DeleteQueue(ctx context.Context, queueID string) error
}

// Session owns one registered event queue and the state derived from
// it. Snapshot is safe for concurrent readers while Run applies events.
type Session struct {
	gateway   Gateway
	publisher *events.Publisher
	messages  *store.MessageRepository
	snapshots *store.UnreadSnapshotRepository
	config    events.ConsumerConfig
	logger    zerolog.Logger

	mu          sync.RWMutex
	state       *unread.State
	queueID     string
	ownUserID   int64
	streamNames map[int64]string
	consumer    *events.Consumer
}

// New creates a session. st may be nil, in which case no local cache is
// maintained.
func New(gateway Gateway, st *store.Store, config events.ConsumerConfig) *Session {
	s := &Session{
		gateway:   gateway,
		publisher: events.NewPublisher(),
		config:    config,
		logger: logging.Component("session").With().
			Str("session_id", uuid.NewString()).Logger(),
		state: unread.NewState(),
	}
	if st != nil {
		s.messages = store.NewMessageRepository(st)
		s.snapshots = store.NewUnreadSnapshotRepository(st)
	}
	return s
}

// Publisher exposes the session's event fan-out so additional consumers
// (for example a UI) can subscribe.
func (s *Session) Publisher() *events.Publisher {
	return s.publisher
}

// Snapshot returns the current unread aggregate. The returned value is
// immutable; successive calls return the same pointer until an event
// changes the state.
func (s *Session) Snapshot() *unread.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// QueueID returns the active queue ID, or "" before registration.
func (s *Session) QueueID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queueID
}

// OwnUserID returns the authenticated user's ID, known after
// registration.
func (s *Session) OwnUserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownUserID
}

// StreamName resolves a stream ID to its subscribed name, or "" when
// the stream is unknown.
func (s *Session) StreamName(streamID int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streamNames[streamID]
}

// Run registers a queue, seeds state from the snapshot and consumes the
// event stream until ctx is done. When the server invalidates the queue
// the session transparently re-registers and rebuilds from a fresh
// snapshot.
func (s *Session) Run(ctx context.Context) error {
	if err := s.subscribe(); err != nil {
		return err
	}
	defer s.unsubscribe()

	for {
		if err := s.register(ctx); err != nil {
			return err
		}

		err := s.currentConsumer().Run(ctx)
		if errors.Is(err, events.ErrQueueInvalid) {
			s.logger.Info().Msg("rebuilding state after queue expiry")
			continue
		}

		s.persistSnapshot(context.WithoutCancel(ctx))
		return err
	}
}

// Close deletes the server-side queue and clears all derived state,
// used on logout or account switch.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	queueID := s.queueID
	s.queueID = ""
	s.state = unread.NewState()
	s.mu.Unlock()

	var errs []error
	if queueID != "" {
		if err := s.gateway.DeleteQueue(ctx, queueID); err != nil {
			errs = append(errs, err)
		}
	}
	if s.snapshots != nil {
		if err := s.snapshots.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.messages != nil {
		if err := s.messages.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// register obtains a fresh queue and replaces the aggregate with the
// server's snapshot wholesale.
func (s *Session) register(ctx context.Context) error {
	resp, err := s.gateway.Register(ctx)
	if err != nil {
		return err
	}

	state := unread.FromSnapshot(resp.UnreadMsgs)
	names := make(map[int64]string, len(resp.Subscriptions))
	for _, sub := range resp.Subscriptions {
		names[sub.StreamID] = sub.Name
	}

	s.mu.Lock()
	s.queueID = resp.QueueID
	s.ownUserID = resp.UserID
	s.streamNames = names
	s.state = state
	s.consumer = events.NewConsumer(s.gateway, s.publisher, resp.QueueID, resp.LastEventID, s.config)
	s.mu.Unlock()

	if s.snapshots != nil {
		if err := s.snapshots.Save(ctx, resp.QueueID, resp.LastEventID, resp.UnreadMsgs); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache unread snapshot")
		}
	}

	s.logger.Info().
		Str("queue_id", resp.QueueID).
		Int64("user_id", resp.UserID).
		Int("unread_total", state.Total()).
		Msg("session registered")
	return nil
}

func (s *Session) currentConsumer() *events.Consumer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.consumer
}

func (s *Session) subscribe() error {
	if err := s.publisher.Subscribe(subUnread, events.Filter{}, s.applyUnread); err != nil {
		return err
	}
	if s.messages != nil {
		if err := s.publisher.Subscribe(subCache, events.Filter{
			EventTypes: []models.EventType{
				models.EventTypeMessage,
				models.EventTypeUpdateMessage,
				models.EventTypeDeleteMessage,
				models.EventTypeUpdateMessageFlags,
			},
		}, s.mirrorToCache); err != nil {
			s.publisher.Unsubscribe(subUnread)
			return err
		}
	}
	return nil
}

func (s *Session) unsubscribe() {
	s.publisher.Unsubscribe(subUnread)
	if s.messages != nil {
		s.publisher.Unsubscribe(subCache)
	}
}

// applyUnread advances the aggregate. The state pointer only changes
// when the event had an effect, so readers can cheaply detect updates.
func (s *Session) applyUnread(event *models.Event) {
	s.mu.Lock()
	s.state = unread.Apply(s.state, event, s.ownUserID)
	s.mu.Unlock()
}

// mirrorToCache keeps the sqlite message cache in step with the stream.
// Cache failures are logged and skipped; the in-memory aggregate stays
// authoritative.
func (s *Session) mirrorToCache(event *models.Event) {
	ctx := context.Background()

	var err error
	switch event.Type {
	case models.EventTypeMessage:
		var payload models.MessageEvent
		if err = event.Decode(&payload); err == nil {
			err = s.messages.Upsert(ctx, &payload.Message, payload.Flags)
		}
	case models.EventTypeUpdateMessage:
		err = s.mirrorUpdate(ctx, event)
	case models.EventTypeDeleteMessage:
		var payload models.DeleteMessageEvent
		if err = event.Decode(&payload); err == nil {
			err = s.messages.Delete(ctx, payload.MessageIDs)
		}
	case models.EventTypeUpdateMessageFlags:
		err = s.mirrorFlags(ctx, event)
	}

	if err != nil {
		s.logger.Warn().
			Err(err).
			Int64("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("cache update failed")
	}
}

func (s *Session) mirrorUpdate(ctx context.Context, event *models.Event) error {
	var payload models.UpdateMessageEvent
	if err := event.Decode(&payload); err != nil {
		return err
	}
	if !payload.IsMove() {
		return nil
	}

	newStreamID := int64(0)
	if payload.StreamID != nil {
		newStreamID = *payload.StreamID
	}
	if payload.NewStreamID != nil {
		newStreamID = *payload.NewStreamID
	}
	newTopic := ""
	if payload.OrigSubject != nil {
		newTopic = *payload.OrigSubject
	}
	if payload.Subject != nil {
		newTopic = *payload.Subject
	}
	return s.messages.ApplyMove(ctx, payload.MessageIDs, newStreamID, newTopic)
}

func (s *Session) mirrorFlags(ctx context.Context, event *models.Event) error {
	var payload models.UpdateMessageFlagsEvent
	if err := event.Decode(&payload); err != nil {
		return err
	}

	switch payload.Op {
	case models.FlagOpAdd:
		return s.messages.AddFlag(ctx, payload.Flag, payload.All, payload.Messages)
	case models.FlagOpRemove:
		return s.messages.RemoveFlag(ctx, payload.Flag, payload.Messages)
	default:
		return nil
	}
}

// persistSnapshot writes the live aggregate back to the cache so the
// next offline read reflects everything applied this session.
func (s *Session) persistSnapshot(ctx context.Context) {
	if s.snapshots == nil {
		return
	}

	s.mu.RLock()
	queueID := s.queueID
	state := s.state
	consumer := s.consumer
	s.mu.RUnlock()
	if queueID == "" || consumer == nil {
		return
	}

	if err := s.snapshots.Save(ctx, queueID, consumer.LastEventID(), state.ToSnapshot()); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist unread snapshot")
	}
}
