package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	apperrors "stock-assistant/internal/errors"
	"stock-assistant/internal/models"
	"stock-assistant/internal/tools"
)

// chatEndpoint is a chat-completions server that enforces the API's rule that
// every assistant tool call is answered by a tool message. It replies with the
// queued messages, then with plain text.
type chatEndpoint struct {
	mu       sync.Mutex
	replies  []openai.ChatCompletionMessage
	requests [][]openai.ChatCompletionMessage
}

func (e *chatEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, req.Messages)

	if err := checkToolPairing(req.Messages); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": err.Error(), "type": "invalid_request_error"},
		})
		return
	}

	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "plain answer"}
	if len(e.replies) > 0 {
		msg, e.replies = e.replies[0], e.replies[1:]
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:      "chatcmpl-test",
		Object:  "chat.completion",
		Model:   req.Model,
		Choices: []openai.ChatCompletionChoice{{Index: 0, Message: msg, FinishReason: openai.FinishReasonStop}},
	})
}

func checkToolPairing(msgs []openai.ChatCompletionMessage) error {
	for i, m := range msgs {
		for _, tc := range m.ToolCalls {
			if i+1 >= len(msgs) || msgs[i+1].Role != openai.ChatMessageRoleTool || msgs[i+1].ToolCallID != tc.ID {
				return fmt.Errorf("assistant message with 'tool_calls' must be followed by tool messages responding to %s", tc.ID)
			}
		}
	}
	return nil
}

func toolCallMessage(id, name, args string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleAssistant,
		ToolCalls: []openai.ToolCall{{
			ID:       id,
			Type:     openai.ToolTypeFunction,
			Function: openai.FunctionCall{Name: name, Arguments: args},
		}},
	}
}

func newOpenAIOrchestrator(t *testing.T, endpoint *chatEndpoint, source *countingSource) *Orchestrator {
	t.Helper()
	ts := httptest.NewServer(endpoint)
	t.Cleanup(ts.Close)

	reg, err := tools.NewDefaultRegistry(source, &countingRenderer{})
	if err != nil {
		t.Fatal(err)
	}
	client := NewOpenAIClient("sk-test", "gpt-test", ts.URL+"/v1", zerolog.Nop())
	return NewOrchestrator(client, reg, zerolog.Nop())
}

func TestOpenAIClient_SessionRecoversAfterFailedToolCall(t *testing.T) {
	tests := []struct {
		name   string
		call   openai.ChatCompletionMessage
		values []float64
		want   error
	}{
		{"argument error", toolCallMessage("call_a", "get_stock_price", `{}`), []float64{415.25}, apperrors.ErrArgumentParse},
		{"unknown tool", toolCallMessage("call_b", "get_weather", `{"city":"Paris"}`), []float64{415.25}, apperrors.ErrUnknownTool},
		{"data unavailable", toolCallMessage("call_c", "get_stock_price", `{"ticker":"ZZZZ"}`), nil, apperrors.ErrDataUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := &chatEndpoint{replies: []openai.ChatCompletionMessage{tt.call}}
			orch := newOpenAIOrchestrator(t, endpoint, &countingSource{values: tt.values})
			s := NewSession()
			ctx := context.Background()

			if _, err := orch.Turn(ctx, s, "What is the price?"); !errors.Is(err, tt.want) {
				t.Fatalf("first turn err = %v, want %v", err, tt.want)
			}
			assertRoles(t, s.Messages(), models.RoleUser, models.RoleAssistant)

			for i := 0; i < 2; i++ {
				result, err := orch.Turn(ctx, s, "Hello again")
				if err != nil {
					t.Fatalf("follow-up turn %d: %v", i+1, err)
				}
				if result.Text != "plain answer" {
					t.Errorf("follow-up answer = %q", result.Text)
				}
			}
		})
	}
}

func TestOpenAIClient_ToolRoundTrip(t *testing.T) {
	endpoint := &chatEndpoint{replies: []openai.ChatCompletionMessage{
		toolCallMessage("call_1", "get_stock_price", `{"ticker":"MSFT"}`),
		{Role: openai.ChatMessageRoleAssistant, Content: "MSFT closed at $415.25."},
	}}
	orch := newOpenAIOrchestrator(t, endpoint, &countingSource{values: []float64{410, 415.25}})

	result, err := orch.Turn(context.Background(), NewSession(), "price of MSFT?")
	if err != nil {
		t.Fatal(err)
	}
	if result.Text != "MSFT closed at $415.25." || result.ModelQueries != 2 {
		t.Errorf("result = %+v", result)
	}

	second := endpoint.requests[1]
	last := second[len(second)-1]
	if last.Role != openai.ChatMessageRoleTool || last.ToolCallID != "call_1" || last.Content != "415.25" {
		t.Errorf("tool result sent as %+v", last)
	}
}
