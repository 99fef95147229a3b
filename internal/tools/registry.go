// Package tools provides the fixed set of callable market tools exposed to the model.
package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	apperrors "stock-assistant/internal/errors"
)

// ID identifies one tool in the closed set.
type ID int

const (
	StockPrice ID = iota
	SimpleMovingAverage
	ExponentialMovingAverage
	RelativeStrengthIndex
	MovingAverageConvergenceDivergence
	PlotStockPrice
	numTools
)

var names = [numTools]string{
	StockPrice:                         "get_stock_price",
	SimpleMovingAverage:                "calculate_SMA",
	ExponentialMovingAverage:           "calculate_EMA",
	RelativeStrengthIndex:              "calculate_RSI",
	MovingAverageConvergenceDivergence: "calculate_MACD",
	PlotStockPrice:                     "plot_stock_price",
}

// String returns the name the model calls the tool by.
func (id ID) String() string {
	if id < 0 || id >= numTools {
		return fmt.Sprintf("tool(%d)", int(id))
	}
	return names[id]
}

// IDs returns every tool identifier in declaration order.
func IDs() []ID {
	ids := make([]ID, numTools)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// Result is the output of one tool execution.
type Result struct {
	// Content is the stringified result recorded in the conversation.
	Content string
	// ImagePath is set by tools whose output is an image to display.
	ImagePath string
}

// Handler executes a tool with validated arguments.
type Handler func(ctx context.Context, args Arguments) (Result, error)

// Descriptor describes one registered tool.
type Descriptor struct {
	ID          ID
	Description string
	Parameters  jsonschema.Definition
	Handler     Handler
	// Terminal tools end the turn with their own output; the model is not asked
	// to summarize it.
	Terminal bool
}

// Name returns the tool's call name.
func (d *Descriptor) Name() string {
	return d.ID.String()
}

// Registry maps tool names to descriptors. It is immutable once built.
type Registry struct {
	byName  map[string]*Descriptor
	ordered []*Descriptor
}

// NewRegistry validates and indexes descriptors. Every ID must be registered
// exactly once with a well-formed schema and a handler.
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{
		byName:  make(map[string]*Descriptor, len(descriptors)),
		ordered: make([]*Descriptor, 0, len(descriptors)),
	}

	seen := make(map[ID]bool, numTools)
	for i := range descriptors {
		d := descriptors[i]
		if d.ID < 0 || d.ID >= numTools {
			return nil, fmt.Errorf("unknown tool id %d", int(d.ID))
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("tool %s registered twice", d.ID)
		}
		if d.Handler == nil {
			return nil, fmt.Errorf("tool %s has no handler", d.ID)
		}
		if err := validateSchema(d.Parameters); err != nil {
			return nil, fmt.Errorf("tool %s: %w", d.ID, err)
		}
		seen[d.ID] = true
		r.byName[d.Name()] = &d
		r.ordered = append(r.ordered, &d)
	}

	for _, id := range IDs() {
		if !seen[id] {
			return nil, fmt.Errorf("tool %s not registered", id)
		}
	}

	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i].ID < r.ordered[j].ID })
	return r, nil
}

// Lookup finds a tool by exact, case-sensitive name.
func (r *Registry) Lookup(name string) (*Descriptor, error) {
	d, ok := r.byName[name]
	if !ok {
		return nil, apperrors.NewToolError(name)
	}
	return d, nil
}

// Descriptors returns all tools in ID order.
func (r *Registry) Descriptors() []*Descriptor {
	out := make([]*Descriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// OpenAITools returns the function definitions sent with a model request.
func (r *Registry) OpenAITools() []openai.Tool {
	return OpenAITools(r.ordered)
}

// OpenAITools converts descriptors to chat API tool definitions.
func OpenAITools(descriptors []*Descriptor) []openai.Tool {
	out := make([]openai.Tool, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name(),
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return out
}
