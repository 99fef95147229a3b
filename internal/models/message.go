package models

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
)

// Message is one entry of a session's prompt context. Order is significant.
type Message struct {
	Role         Role            `json:"role"`
	Content      string          `json:"content"`
	FunctionName string          `json:"function_name,omitempty"`
	Call         *ToolInvocation `json:"tool_call,omitempty"`
	// CallID links a function result to the assistant tool call it answers.
	CallID    string    `json:"tool_call_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsToolCall reports whether the message is an assistant tool-call request.
func (m Message) IsToolCall() bool {
	return m.Role == RoleAssistant && m.Call != nil
}

// ToolInvocation is a tool call requested by the model.
type ToolInvocation struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Reply is the model's answer to one chat completion request:
// either free text or a single tool invocation.
type Reply struct {
	Content string
	Call    *ToolInvocation
}
