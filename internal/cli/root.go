package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stock-assistant/internal/config"
	"stock-assistant/internal/logging"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-01"
)

// Command annotations controlling how much of the app a command needs.
const (
	annotationNeeds = "needs"
	needsNothing    = "nothing"
	needsModel      = "model"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCmd creates the root command for the CLI. Configuration is loaded
// once flags are parsed, so --config takes effect.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stockbot",
		Short: "Stock analysis chatbot assistant",
		Long: `stockbot answers questions about stocks with a chat model that can look up
the latest price, compute SMA, EMA, RSI and MACD, and plot a one-year price chart.

Use 'stockbot serve' for the web page, 'stockbot chat' for a terminal session,
or 'stockbot ask "<question>"' for a single answer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNeeds] == needsNothing {
				return nil
			}
			if err := app.load(cmd); err != nil {
				return err
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/stock-assistant)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newAskCmd(app))
	rootCmd.AddCommand(newChatCmd(app))
	rootCmd.AddCommand(newToolsCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{annotationNeeds: needsNothing},
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("stockbot v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate the application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.ConfigFile()})
			} else {
				output.Println(app.Config.ConfigFile())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and the model API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				return err
			}
			if _, err := config.LoadAPIKey(app.Config.Credentials.APIKeyFile); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Model")
	output.Printf("  Name:      %s\n", cfg.Model.Name)
	output.Printf("  Base URL:  %s\n", orDefault(cfg.Model.BaseURL, "(default)"))
	output.Printf("  Key file:  %s\n", cfg.Credentials.APIKeyFile)
	output.Println()

	output.Bold("Web")
	output.Printf("  Address:   %s\n", cfg.Server.Addr)
	output.Println()

	output.Bold("Chart")
	output.Printf("  Path:      %s\n", cfg.Chart.Path)
	output.Printf("  Size:      %dx%d\n", cfg.Chart.Width, cfg.Chart.Height)
	output.Println()

	output.Bold("Journal")
	output.Printf("  Enabled:   %v\n", cfg.Store.Enabled)
	output.Printf("  Path:      %s\n", cfg.Store.Path)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:     %s\n", cfg.Logging.Level)
	output.Printf("  File:      %s\n", orDefault(fileLog(cfg), "off"))
}

func fileLog(cfg *config.Config) string {
	if !cfg.Logging.File {
		return ""
	}
	return cfg.Logging.FilePath
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

