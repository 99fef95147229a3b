package agents

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	apperrors "stock-assistant/internal/errors"
	"stock-assistant/internal/logging"
	"stock-assistant/internal/metrics"
	"stock-assistant/internal/models"
	"stock-assistant/internal/security"
	"stock-assistant/internal/store"
	"stock-assistant/internal/tools"
)

// OutcomeKind says how a successful turn should be displayed.
type OutcomeKind string

const (
	OutcomeText  OutcomeKind = "answer"
	OutcomeImage OutcomeKind = "image"
)

// TurnResult is what a turn produced for display.
type TurnResult struct {
	Kind      OutcomeKind
	Text      string
	ImagePath string
	// Tool is the invoked tool's name, empty for direct answers.
	Tool         string
	ModelQueries int
}

// ToolCallRecorder persists executed tool calls.
type ToolCallRecorder interface {
	RecordToolCall(ctx context.Context, call *store.ToolCall) error
}

// Orchestrator runs conversation turns: at most one tool call per turn, then
// either a second model query for a text answer or, for terminal tools, the
// tool's own output.
type Orchestrator struct {
	model    ChatModel
	registry *tools.Registry
	journal  ToolCallRecorder
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithJournal records every executed tool call.
func WithJournal(journal ToolCallRecorder) Option {
	return func(o *Orchestrator) {
		o.journal = journal
	}
}

// WithMetrics counts turns, model requests and tool calls.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// NewOrchestrator creates a new orchestrator.
func NewOrchestrator(model ChatModel, registry *tools.Registry, logger zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		model:    model,
		registry: registry,
		logger:   logger.With().Str("component", "orchestrator").Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Registry returns the tool registry.
func (o *Orchestrator) Registry() *tools.Registry {
	return o.registry
}

// Turn runs one user turn on s. Errors abort the turn and leave the history
// as far as it got; nothing is rolled back.
func (o *Orchestrator) Turn(ctx context.Context, s *Session, input string) (TurnResult, error) {
	if err := security.ValidateQuestion(input); err != nil {
		return TurnResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := logging.WithSession(o.logger, s.ID)
	start := time.Now()

	result, err := o.turn(ctx, s, security.SanitizeText(input), log)
	outcome := string(result.Kind)
	if err != nil {
		outcome = apperrors.Kind(err)
		log.Warn().Err(err).Str("outcome", outcome).Dur("duration", time.Since(start)).Msg("turn failed")
	} else {
		log.Info().
			Str("outcome", outcome).
			Str("tool", result.Tool).
			Int("model_queries", result.ModelQueries).
			Dur("duration", time.Since(start)).
			Msg("turn completed")
	}
	o.metrics.ObserveTurn(outcome)

	return result, err
}

func (o *Orchestrator) turn(ctx context.Context, s *Session, input string, log zerolog.Logger) (TurnResult, error) {
	var result TurnResult

	s.append(models.Message{Role: models.RoleUser, Content: input})

	reply, err := o.query(ctx, s, metrics.PhaseQuery1, o.registry.Descriptors(), log)
	result.ModelQueries++
	if err != nil {
		return result, err
	}

	if reply.Call == nil {
		s.append(models.Message{Role: models.RoleAssistant, Content: reply.Content})
		result.Kind = OutcomeText
		result.Text = reply.Content
		return result, nil
	}

	call := reply.Call
	result.Tool = call.Name
	s.append(models.Message{Role: models.RoleAssistant, Content: reply.Content, Call: call})

	d, err := o.registry.Lookup(call.Name)
	if err != nil {
		return result, err
	}
	args, err := d.ParseArguments(call.Arguments)
	if err != nil {
		return result, err
	}

	toolResult, err := o.execute(ctx, s.ID, d, args, string(call.Arguments), log)
	if err != nil {
		return result, err
	}

	s.append(models.Message{
		Role:         models.RoleFunction,
		FunctionName: d.Name(),
		Content:      toolResult.Content,
		CallID:       call.ID,
	})

	if d.Terminal {
		result.Kind = OutcomeImage
		result.ImagePath = toolResult.ImagePath
		result.Text = toolResult.Content
		return result, nil
	}

	final, err := o.query(ctx, s, metrics.PhaseQuery2, nil, log)
	result.ModelQueries++
	if err != nil {
		return result, err
	}
	if final.Call != nil {
		log.Debug().Str("tool", final.Call.Name).Msg("ignoring tool call in follow-up reply")
	}

	s.append(models.Message{Role: models.RoleAssistant, Content: final.Content})
	result.Kind = OutcomeText
	result.Text = final.Content
	return result, nil
}

// query sends the current history to the model. Any failure is a ModelError.
func (o *Orchestrator) query(ctx context.Context, s *Session, phase string, available []*tools.Descriptor, log zerolog.Logger) (models.Reply, error) {
	start := time.Now()
	reply, err := o.model.Complete(ctx, s.snapshot(), available)
	if err != nil {
		var modelErr *apperrors.ModelError
		if !errors.As(err, &modelErr) {
			err = apperrors.NewModelError(phase, err)
		}
	}

	logging.LogModelCall(log, phase, o.model.Model(), len(s.messages), time.Since(start), err)
	o.metrics.ObserveModelRequest(phase, err)
	return reply, err
}

// execute runs a tool handler and records the call.
func (o *Orchestrator) execute(ctx context.Context, sessionID string, d *tools.Descriptor, args tools.Arguments, rawArgs string, log zerolog.Logger) (tools.Result, error) {
	start := time.Now()
	res, err := d.Handler(ctx, args)
	duration := time.Since(start)

	logging.LogToolCall(logging.WithTicker(log, args.Ticker), d.Name(), rawArgs, duration, err)
	o.metrics.ObserveToolCall(d.Name(), duration, err)

	if o.journal != nil {
		entry := &store.ToolCall{
			SessionID: sessionID,
			Tool:      d.Name(),
			Arguments: logging.MaskSecrets(rawArgs),
			Result:    res.Content,
			Duration:  duration,
			CreatedAt: start,
		}
		if err != nil {
			entry.Error = err.Error()
		}
		if jerr := o.journal.RecordToolCall(ctx, entry); jerr != nil {
			toolLog := logging.WithTool(log, d.Name())
			toolLog.Warn().Err(jerr).Msg("failed to journal tool call")
		}
	}

	return res, err
}

// RunTool executes a tool directly, bypassing the model. Arguments go through
// the same validation as model-issued calls.
func (o *Orchestrator) RunTool(ctx context.Context, sessionID, name string, rawArgs []byte) (tools.Result, error) {
	log := logging.WithSession(o.logger, sessionID)

	d, err := o.registry.Lookup(name)
	if err != nil {
		return tools.Result{}, err
	}
	args, err := d.ParseArguments(rawArgs)
	if err != nil {
		return tools.Result{}, err
	}
	return o.execute(ctx, sessionID, d, args, string(rawArgs), log)
}
