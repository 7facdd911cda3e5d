package models

import (
	"errors"
	"fmt"
)

// Validation errors for inbound events.
var (
	ErrMissingMessageID = errors.New("message id is required")
	ErrMissingFlags     = errors.New("stream message event must carry flags")
	ErrUnknownFlagOp    = errors.New("unknown flag operation")
)

// Validate checks invariants the server is expected to uphold for
// message events. Violations are treated as fail-soft by callers: the
// event's effect is discarded but the session continues.
func (e *MessageEvent) Validate() error {
	if e.Message.ID == 0 {
		return ErrMissingMessageID
	}
	if e.Message.IsStream() && e.Flags == nil {
		return ErrMissingFlags
	}
	return nil
}

// Validate checks a flag-update event for structural sanity.
func (e *UpdateMessageFlagsEvent) Validate() error {
	switch e.Op {
	case FlagOpAdd, FlagOpRemove:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFlagOp, e.Op)
	}
	if !e.All && len(e.Messages) == 0 {
		return fmt.Errorf("flag %q %s event names no messages", e.Flag, e.Op)
	}
	return nil
}

// Validate checks a delete event for structural sanity.
func (e *DeleteMessageEvent) Validate() error {
	if len(e.MessageIDs) == 0 {
		return errors.New("delete event names no messages")
	}
	return nil
}
