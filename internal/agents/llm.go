// Package agents runs the stock assistant's conversation turns against a chat model.
package agents

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"stock-assistant/internal/models"
	"stock-assistant/internal/tools"
)

// ChatModel sends the conversation to a chat-completion endpoint. With a
// non-empty tool list the reply may be a tool invocation; with none it is text.
type ChatModel interface {
	Complete(ctx context.Context, history []models.Message, available []*tools.Descriptor) (models.Reply, error)
	Model() string
}

// OpenAIClient implements ChatModel using the OpenAI API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewOpenAIClient creates a new OpenAI chat client. An empty baseURL keeps the default endpoint.
func NewOpenAIClient(apiKey, model, baseURL string, logger zerolog.Logger) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.With().Str("component", "openai").Logger(),
	}
}

// Model returns the model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Complete sends history (and tools, when given) and returns the first choice.
// Only the first tool call of a reply is kept.
func (c *OpenAIClient) Complete(ctx context.Context, history []models.Message, available []*tools.Descriptor) (models.Reply, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(history),
	}
	if len(available) > 0 {
		req.Tools = tools.OpenAITools(available)
		req.ToolChoice = "auto"
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return models.Reply{}, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Reply{}, fmt.Errorf("no response from openai")
	}

	msg := resp.Choices[0].Message
	reply := models.Reply{Content: msg.Content}
	if len(msg.ToolCalls) == 0 {
		return reply, nil
	}
	if len(msg.ToolCalls) > 1 {
		c.logger.Debug().Int("tool_calls", len(msg.ToolCalls)).Msg("ignoring all but the first tool call")
	}

	call := msg.ToolCalls[0]
	reply.Call = &models.ToolInvocation{
		ID:        call.ID,
		Name:      call.Function.Name,
		Arguments: []byte(call.Function.Arguments),
	}
	return reply, nil
}

// unansweredToolCall is sent in place of the result of a tool call whose turn
// ended in an error. The chat API rejects a tool call with no reply.
const unansweredToolCall = "error: the tool call failed and produced no result"

// toOpenAIMessages maps session history onto the chat API. Function results
// are sent as tool messages answering the preceding tool call.
func toOpenAIMessages(history []models.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(history))
	for i, m := range history {
		switch m.Role {
		case models.RoleUser:
			out = append(out, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: m.Content,
			})
		case models.RoleAssistant:
			msg := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: m.Content,
			}
			if m.Call == nil {
				out = append(out, msg)
				continue
			}
			msg.ToolCalls = []openai.ToolCall{{
				ID:   m.Call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      m.Call.Name,
					Arguments: string(m.Call.Arguments),
				},
			}}
			out = append(out, msg)
			if i+1 >= len(history) || history[i+1].Role != models.RoleFunction {
				out = append(out, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    unansweredToolCall,
					Name:       m.Call.Name,
					ToolCallID: m.Call.ID,
				})
			}
		case models.RoleFunction:
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    m.Content,
				Name:       m.FunctionName,
				ToolCallID: m.CallID,
			})
		}
	}
	return out
}
