package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/crm-migrate/internal/migrate"
	"github.com/sells-group/crm-migrate/internal/monitoring"
	"github.com/sells-group/crm-migrate/internal/progress"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the migration control server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		broadcaster := progress.NewBroadcaster(
			progress.WithPingInterval(time.Duration(cfg.Progress.PingSecs) * time.Second),
		)
		controller := migrate.NewController(st, broadcaster, migrate.Config{
			RowsPerSec: cfg.Migration.RowsPerSec,
		})
		collector := monitoring.NewCollector(st, controller.Registry())

		router := buildRouter(controller, collector, broadcaster, cfg.Migration.File)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
