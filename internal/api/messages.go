package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Arch0125/zulip-mobile/internal/models"
)

// SendStreamMessage posts a message to a stream topic. Returns the new
// message ID.
func (c *Client) SendStreamMessage(ctx context.Context, stream, topic, content string) (int64, error) {
	params := url.Values{}
	params.Set("type", "stream")
	params.Set("to", stream)
	params.Set("subject", topic)
	params.Set("content", content)
	return c.sendMessage(ctx, params)
}

// SendPrivateMessage posts a direct message to the given recipients.
func (c *Client) SendPrivateMessage(ctx context.Context, recipients []string, content string) (int64, error) {
	to, err := json.Marshal(recipients)
	if err != nil {
		return 0, fmt.Errorf("failed to encode recipients: %w", err)
	}

	params := url.Values{}
	params.Set("type", "private")
	params.Set("to", string(to))
	params.Set("content", content)
	return c.sendMessage(ctx, params)
}

func (c *Client) sendMessage(ctx context.Context, params url.Values) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.post(ctx, "messages", params, &resp); err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return resp.ID, nil
}

// MarkRead flags the given messages as read. The server echoes the
// change back through the event queue; local state is updated from that
// event, not from this response.
func (c *Client) MarkRead(ctx context.Context, messageIDs []int64) error {
	ids, err := json.Marshal(messageIDs)
	if err != nil {
		return fmt.Errorf("failed to encode message ids: %w", err)
	}

	params := url.Values{}
	params.Set("messages", string(ids))
	params.Set("op", models.FlagOpAdd)
	params.Set("flag", models.FlagRead)

	if err := c.post(ctx, "messages/flags", params, nil); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

// MarkAllRead flags every message as read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.post(ctx, "mark_all_as_read", nil, nil); err != nil {
		return fmt.Errorf("failed to mark all read: %w", err)
	}
	return nil
}

// MarkStreamRead flags every message in one stream as read.
func (c *Client) MarkStreamRead(ctx context.Context, streamID int64) error {
	params := url.Values{}
	params.Set("stream_id", strconv.FormatInt(streamID, 10))

	if err := c.post(ctx, "mark_stream_as_read", params, nil); err != nil {
		return fmt.Errorf("failed to mark stream %d read: %w", streamID, err)
	}
	return nil
}
