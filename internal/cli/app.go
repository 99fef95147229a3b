package cli

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stock-assistant/internal/agents"
	"stock-assistant/internal/chart"
	"stock-assistant/internal/config"
	"stock-assistant/internal/logging"
	"stock-assistant/internal/marketdata"
	"stock-assistant/internal/metrics"
	"stock-assistant/internal/store"
	"stock-assistant/internal/tools"
)

// App holds the application dependencies. Everything past Config and Logger
// is built on first use.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	model    agents.ChatModel
	provider marketdata.Provider
	journal  store.Journal
	metrics  *metrics.Metrics
	orch     *agents.Orchestrator

	// prompt reads one line of chat input.
	prompt func(message string) (string, error)
}

// load reads configuration and builds the logger. Commands annotated as
// needing the model also require the API key.
func (a *App) load(cmd *cobra.Command) error {
	if a.Config != nil {
		return nil
	}

	dir, _ := cmd.Flags().GetString("config")
	var (
		cfg *config.Config
		err error
	)
	if cmd.Annotations[annotationNeeds] == needsModel && a.model == nil {
		cfg, err = config.Load(dir)
	} else {
		cfg, err = config.LoadWithoutCredentials(dir)
	}
	if err != nil {
		return err
	}

	a.Config = cfg
	a.Logger = logging.NewLoggerWithConfig(cfg.LogConfig())
	a.Logger.Debug().
		Str("config_dir", cfg.Dir).
		Str("model", cfg.Model.Name).
		Str("api_key", logging.MaskKey(cfg.APIKey)).
		Msg("configuration loaded")
	return nil
}

// Orchestrator wires market data, tools, the chat model, metrics and the
// journal into a turn orchestrator.
func (a *App) Orchestrator() (*agents.Orchestrator, error) {
	if a.orch != nil {
		return a.orch, nil
	}
	cfg := a.Config

	provider := a.provider
	if provider == nil {
		provider = marketdata.NewYahooProvider()
	}
	accessor := marketdata.NewAccessor(provider, a.Logger)
	renderer := chart.NewRenderer(accessor, cfg.Chart.Path, cfg.Chart.Width, cfg.Chart.Height, a.Logger)

	registry, err := tools.NewDefaultRegistry(accessor, renderer)
	if err != nil {
		return nil, err
	}

	model := a.model
	if model == nil {
		model = agents.NewOpenAIClient(cfg.APIKey, cfg.Model.Name, cfg.Model.BaseURL, a.Logger)
	}

	opts := []agents.Option{agents.WithMetrics(a.Metrics())}
	journal, err := a.Journal()
	switch {
	case err != nil:
		a.Logger.Warn().Err(err).Msg("tool-call journal unavailable, continuing without it")
	case journal != nil:
		opts = append(opts, agents.WithJournal(journal))
	}

	a.orch = agents.NewOrchestrator(model, registry, a.Logger, opts...)
	return a.orch, nil
}

// Metrics returns the process metrics.
func (a *App) Metrics() *metrics.Metrics {
	if a.metrics == nil {
		a.metrics = metrics.NewMetrics()
	}
	return a.metrics
}

// errJournalDisabled is returned when a command needs the journal but
// [store].enabled is false.
var errJournalDisabled = errors.New("tool-call journal is disabled (set [store].enabled = true)")

// Journal opens the tool-call journal. It returns nil without error when
// the journal is disabled.
func (a *App) Journal() (store.Journal, error) {
	if a.journal != nil {
		return a.journal, nil
	}
	if !a.Config.Store.Enabled {
		return nil, nil
	}
	s, err := store.NewSQLiteStore(a.Config.Store.Path)
	if err != nil {
		return nil, err
	}
	a.journal = s
	a.Logger.Debug().Str("path", a.Config.Store.Path).Msg("SQLite journal initialized")
	return a.journal, nil
}

// Close releases the journal.
func (a *App) Close() error {
	if a.journal == nil {
		return nil
	}
	err := a.journal.Close()
	a.journal = nil
	return err
}

func (a *App) readLine(message string) (string, error) {
	if a.prompt != nil {
		return a.prompt(message)
	}
	var answer string
	err := survey.AskOne(&survey.Input{
		Message: message,
		Help:    "Ask about a stock ticker. /reset starts over, /exit quits.",
	}, &answer)
	return answer, err
}
