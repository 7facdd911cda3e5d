package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Arch0125/zulip-mobile/internal/models"
)

// Event types requested at registration. The server only pushes events
// the queue was registered for.
var registeredEventTypes = []models.EventType{
	models.EventTypeMessage,
	models.EventTypeUpdateMessage,
	models.EventTypeDeleteMessage,
	models.EventTypeUpdateMessageFlags,
	models.EventTypeReaction,
	models.EventTypeSubmessage,
	models.EventTypeRealmUser,
	models.EventTypeSubscription,
	models.EventTypePresence,
}

// Register creates a server-side event queue and returns its ID together
// with the initial unread snapshot.
func (c *Client) Register(ctx context.Context) (*models.RegisterResponse, error) {
	types, err := json.Marshal(registeredEventTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event types: %w", err)
	}

	params := url.Values{}
	params.Set("event_types", string(types))
	params.Set("fetch_event_types", string(types))
	params.Set("apply_markdown", "false")
	params.Set("client_gravatar", "true")

	var resp models.RegisterResponse
	if err := c.post(ctx, "register", params, &resp); err != nil {
		return nil, fmt.Errorf("queue registration failed: %w", err)
	}
	if resp.QueueID == "" {
		return nil, fmt.Errorf("server returned no queue id")
	}

	c.logger.Info().
		Str("queue_id", resp.QueueID).
		Int64("last_event_id", resp.LastEventID).
		Msg("registered event queue")
	return &resp, nil
}

// eventsResponse is the envelope of GET /events.
type eventsResponse struct {
	Events []models.Event `json:"events"`
}

// Events long-polls the queue for events after lastEventID. The call
// blocks until the server has events, the long-poll times out (returning
// an empty or heartbeat-only batch), or ctx is done. Events are returned
// in server delivery order.
func (c *Client) Events(ctx context.Context, queueID string, lastEventID int64) ([]models.Event, error) {
	params := url.Values{}
	params.Set("queue_id", queueID)
	params.Set("last_event_id", strconv.FormatInt(lastEventID, 10))

	var resp eventsResponse
	if err := c.do(ctx, c.longPoll, "GET", "events", params, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// DeleteQueue removes the server-side event queue on logout.
func (c *Client) DeleteQueue(ctx context.Context, queueID string) error {
	params := url.Values{}
	params.Set("queue_id", queueID)

	if err := c.delete(ctx, "events", params, nil); err != nil {
		return fmt.Errorf("failed to delete event queue: %w", err)
	}
	return nil
}
