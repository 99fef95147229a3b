package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"stock-assistant/internal/agents"
	apperrors "stock-assistant/internal/errors"
)

const chatPrompt = "Your question:"

// turnOutput is the JSON form of a turn.
type turnOutput struct {
	SessionID    string `json:"session_id"`
	Kind         string `json:"kind,omitempty"`
	Text         string `json:"text,omitempty"`
	ImagePath    string `json:"image_path,omitempty"`
	Tool         string `json:"tool,omitempty"`
	ModelQueries int    `json:"model_queries"`
	Error        string `json:"error,omitempty"`
}

func newAskCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "ask <question>",
		Short:       "Ask one question in a fresh session",
		Example:     `  stockbot ask "What is the RSI of MSFT?"`,
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{annotationNeeds: needsModel},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			orch, err := app.Orchestrator()
			if err != nil {
				return err
			}

			session := agents.NewSession()
			result, err := orch.Turn(cmd.Context(), session, strings.Join(args, " "))
			if output.IsJSON() {
				out := turnJSON(session.ID, result)
				if err != nil {
					out.Error = err.Error()
				}
				if jerr := output.JSON(out); jerr != nil {
					return jerr
				}
				return err
			}
			if err != nil {
				return err
			}
			printTurn(output, result)
			return nil
		},
	}
}

func newChatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive session. The conversation is kept for the whole run.
Type /reset to clear it and /exit (or Ctrl+C) to quit.`,
		Annotations: map[string]string{annotationNeeds: needsModel},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			orch, err := app.Orchestrator()
			if err != nil {
				return err
			}

			session := agents.NewSession()
			output.Bold("Stock Analysis Chatbot Assistant")
			output.Dim("Session %s. /reset clears the conversation, /exit quits.", ShortID(session.ID))

			for {
				line, err := app.readLine(chatPrompt)
				if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}

				line = strings.TrimSpace(line)
				switch line {
				case "":
					continue
				case "/exit", "/quit":
					return nil
				case "/reset":
					session.Reset()
					output.Info("Conversation cleared.")
					continue
				}

				result, err := orch.Turn(cmd.Context(), session, line)
				if err != nil {
					reportTurnError(output, err)
					continue
				}
				printTurn(output, result)
			}
		},
	}
}

// reportTurnError shows a failed turn. Problems with the requested data or
// tool call are warnings; the user can rephrase and carry on.
func reportTurnError(output *Output, err error) {
	switch {
	case errors.Is(err, apperrors.ErrDataUnavailable),
		errors.Is(err, apperrors.ErrArgumentParse),
		errors.Is(err, apperrors.ErrUnknownTool),
		errors.Is(err, apperrors.ErrInputValidation):
		output.Warning("%v", err)
	default:
		output.Error("%v", err)
	}
}

func printTurn(output *Output, result agents.TurnResult) {
	if result.Kind == agents.OutcomeImage {
		output.Success("Chart saved to %s", result.ImagePath)
		return
	}
	output.Markdown(result.Text)
}

func turnJSON(sessionID string, result agents.TurnResult) turnOutput {
	return turnOutput{
		SessionID:    sessionID,
		Kind:         string(result.Kind),
		Text:         result.Text,
		ImagePath:    result.ImagePath,
		Tool:         result.Tool,
		ModelQueries: result.ModelQueries,
	}
}
