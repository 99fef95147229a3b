package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"stock-assistant/internal/store"
	"stock-assistant/internal/tools"
	"stock-assistant/pkg/utils"
)

func newToolsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools the model can call",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			orch, err := app.Orchestrator()
			if err != nil {
				return err
			}
			registry := orch.Registry()

			if output.IsJSON() {
				return output.JSON(registry.OpenAITools())
			}

			table := NewTable(output, "NAME", "PARAMETERS", "OUTPUT", "DESCRIPTION")
			for _, d := range registry.Descriptors() {
				kind := "text"
				if d.Terminal {
					kind = "image"
				}
				table.AddRow(output.Cyan(d.Name()), FormatParameters(d), kind, utils.Truncate(d.Description, 60))
			}
			table.Render()
			return nil
		},
	}
}

func newRunCmd(app *App) *cobra.Command {
	var (
		ticker  string
		window  int
		rawJSON string
	)

	cmd := &cobra.Command{
		Use:   "run <tool>",
		Short: "Run a tool directly, without the model",
		Long: `Run one tool with the same argument validation the model's calls go through.
Arguments come from --ticker/--window or, verbatim, from --args.`,
		Example: `  stockbot run get_stock_price --ticker AAPL
  stockbot run calculate_SMA --ticker MSFT --window 20
  stockbot run calculate_RSI --args '{"ticker":"TSLA"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			orch, err := app.Orchestrator()
			if err != nil {
				return err
			}

			raw := []byte(rawJSON)
			if rawJSON == "" {
				fields := map[string]interface{}{}
				if cmd.Flags().Changed("ticker") {
					fields[tools.ArgTicker] = ticker
				}
				if cmd.Flags().Changed("window") {
					fields[tools.ArgWindow] = window
				}
				if raw, err = json.Marshal(fields); err != nil {
					return err
				}
			}

			sessionID := "cli-" + uuid.NewString()
			result, err := orch.RunTool(cmd.Context(), sessionID, args[0], raw)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{
					"tool":       args[0],
					"result":     result.Content,
					"image_path": result.ImagePath,
				})
			}
			if result.ImagePath != "" {
				output.Success("Chart saved to %s", result.ImagePath)
				return nil
			}
			output.Println(result.Content)
			return nil
		},
	}

	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "stock ticker symbol")
	cmd.Flags().IntVarP(&window, "window", "w", 0, "window in trading days (SMA, EMA)")
	cmd.Flags().StringVar(&rawJSON, "args", "", "raw JSON arguments, overrides --ticker/--window")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	var (
		limit   int
		tool    string
		session string
		since   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent journaled tool calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			journal, err := app.Journal()
			if err != nil {
				return err
			}
			if journal == nil {
				return errJournalDisabled
			}

			filter := store.ToolCallFilter{
				SessionID: session,
				Tool:      tool,
				Limit:     limit,
			}
			if since > 0 {
				filter.Since = time.Now().Add(-since)
			}

			calls, err := journal.ListToolCalls(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("listing tool calls: %w", err)
			}

			if output.IsJSON() {
				return output.JSON(calls)
			}
			if len(calls) == 0 {
				output.Dim("No tool calls recorded.")
				return nil
			}

			table := NewTable(output, "TIME", "SESSION", "TOOL", "ARGUMENTS", "RESULT", "TOOK")
			for _, c := range calls {
				result := output.Green(utils.Truncate(c.Result, 40))
				if c.Failed() {
					result = output.Red(utils.Truncate(c.Error, 40))
				}
				table.AddRow(
					output.DimText(FormatDateTime(c.CreatedAt)),
					ShortID(c.SessionID),
					c.Tool,
					utils.Truncate(c.Arguments, 40),
					result,
					FormatDuration(c.Duration),
				)
			}
			table.Render()
			output.Dim("%d calls", len(calls))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of calls to show")
	cmd.Flags().StringVar(&tool, "tool", "", "only show calls of this tool")
	cmd.Flags().StringVar(&session, "session", "", "only show calls from this session id")
	cmd.Flags().DurationVar(&since, "since", 0, "only show calls newer than this (e.g. 24h)")
	return cmd
}
