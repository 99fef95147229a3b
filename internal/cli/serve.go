package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stock-assistant/internal/web"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Serve the chat web page",
		Annotations: map[string]string{annotationNeeds: needsModel},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			orch, err := app.Orchestrator()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := web.NewServer(addr, orch, app.Metrics(), app.Config.Chart.Path, app.Logger,
				web.WithSessionLimits(app.Config.Server.SessionTTL, app.Config.Server.MaxSessions))
			output.Info("Serving on http://%s (Ctrl+C to stop)", addr)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from [server].addr)")
	return cmd
}
