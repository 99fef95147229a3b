package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/sashabaranov/go-openai/jsonschema"

	apperrors "stock-assistant/internal/errors"
	"stock-assistant/internal/security"
)

// Argument names shared by the tool schemas.
const (
	ArgTicker = "ticker"
	ArgWindow = "window"
)

// Arguments are the validated inputs of a tool call.
type Arguments struct {
	Ticker string `json:"ticker"`
	Window int    `json:"window,omitempty"`
}

func tickerProperty() jsonschema.Definition {
	return jsonschema.Definition{
		Type:        jsonschema.String,
		Description: "The stock ticker symbol for a company (e.g., AAPL for Apple).",
	}
}

func windowProperty(indicator string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:        jsonschema.Integer,
		Description: fmt.Sprintf("The number of trading days to consider when calculating the %s (at least 1).", indicator),
	}
}

// tickerSchema is the parameter schema for tools taking only a ticker.
func tickerSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			ArgTicker: tickerProperty(),
		},
		Required:             []string{ArgTicker},
		AdditionalProperties: false,
	}
}

// windowSchema is the parameter schema for windowed indicators.
func windowSchema(indicator string) jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			ArgTicker: tickerProperty(),
			ArgWindow: windowProperty(indicator),
		},
		Required:             []string{ArgTicker, ArgWindow},
		AdditionalProperties: false,
	}
}

// validateSchema checks a parameter schema at registration time: every
// declared property must be a field of Arguments with the same JSON type.
func validateSchema(schema jsonschema.Definition) error {
	if schema.Type != jsonschema.Object {
		return fmt.Errorf("parameters must be an object schema, got %q", schema.Type)
	}
	fields, err := jsonschema.GenerateSchemaForType(Arguments{})
	if err != nil {
		return fmt.Errorf("describing arguments: %w", err)
	}
	for name, prop := range schema.Properties {
		field, ok := fields.Properties[name]
		if !ok {
			return fmt.Errorf("unsupported property %q", name)
		}
		if prop.Type != field.Type {
			return fmt.Errorf("property %q must be %s", name, typeName(field.Type))
		}
	}
	for _, name := range schema.Required {
		if _, ok := schema.Properties[name]; !ok {
			return fmt.Errorf("required property %q is not declared", name)
		}
	}
	return nil
}

// ParseArguments validates a raw JSON argument object against the tool's schema.
// Missing required fields, unknown fields and wrong types are ArgumentErrors.
func (d *Descriptor) ParseArguments(raw json.RawMessage) (Arguments, error) {
	tool := d.Name()

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Arguments{}, apperrors.NewArgumentError(tool, "", "arguments are not a JSON object", err)
	}

	if d.Parameters.AdditionalProperties == false {
		if name := firstUnknown(d.Parameters, fields); name != "" {
			return Arguments{}, apperrors.NewArgumentError(tool, name, "unexpected argument", nil)
		}
	}
	for _, name := range d.Parameters.Required {
		if v, ok := fields[name]; !ok || v == nil {
			return Arguments{}, apperrors.NewArgumentError(tool, name, "missing required argument", nil)
		}
	}
	if !jsonschema.Validate(d.Parameters, fields) {
		return Arguments{}, d.typeError(fields)
	}

	var args Arguments
	if ticker, ok := fields[ArgTicker].(string); ok {
		ticker = security.NormalizeTicker(ticker)
		if err := security.ValidateTicker(ticker); err != nil {
			return Arguments{}, apperrors.NewArgumentError(tool, ArgTicker, "invalid ticker", err)
		}
		args.Ticker = ticker
	}
	if window, ok := fields[ArgWindow].(float64); ok {
		if window < 1 {
			return Arguments{}, apperrors.NewArgumentError(tool, ArgWindow, "must be at least 1", nil)
		}
		if window > math.MaxInt32 {
			return Arguments{}, apperrors.NewArgumentError(tool, ArgWindow, "is out of range", nil)
		}
		args.Window = int(window)
	}

	return args, nil
}

// typeError names the first property whose value does not match its schema.
func (d *Descriptor) typeError(fields map[string]interface{}) error {
	for _, name := range sortedKeys(d.Parameters.Properties) {
		prop := d.Parameters.Properties[name]
		if v, ok := fields[name]; ok && !jsonschema.Validate(prop, v) {
			return apperrors.NewArgumentError(d.Name(), name, "must be "+typeName(prop.Type), nil)
		}
	}
	return apperrors.NewArgumentError(d.Name(), "", "arguments do not match the schema", nil)
}

func firstUnknown(schema jsonschema.Definition, fields map[string]interface{}) string {
	for _, name := range sortedKeys(fields) {
		if _, ok := schema.Properties[name]; !ok {
			return name
		}
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func typeName(t jsonschema.DataType) string {
	switch t {
	case jsonschema.String:
		return "a string"
	case jsonschema.Integer:
		return "an integer"
	case jsonschema.Object, jsonschema.Array:
		return "an " + string(t)
	default:
		return "a " + string(t)
	}
}
