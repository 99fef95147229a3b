// Package store provides persistence for the tool-call journal.
package store

import (
	"context"
	"time"
)

// Journal records executed tool calls. It is audit data only; nothing read
// from it is fed back into a conversation.
type Journal interface {
	RecordToolCall(ctx context.Context, call *ToolCall) error
	ListToolCalls(ctx context.Context, filter ToolCallFilter) ([]ToolCall, error)
	Close() error
}

// ToolCall is one journaled tool execution.
type ToolCall struct {
	ID        int64         `json:"id"`
	SessionID string        `json:"session_id"`
	Tool      string        `json:"tool"`
	Arguments string        `json:"arguments"`
	Result    string        `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Failed reports whether the call ended in an error.
func (c ToolCall) Failed() bool {
	return c.Error != ""
}

// ToolCallFilter represents filters for querying journaled calls.
type ToolCallFilter struct {
	SessionID string
	Tool      string
	Since     time.Time
	Limit     int
}
