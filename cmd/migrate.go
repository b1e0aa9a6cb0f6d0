package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/crm-migrate/internal/migrate"
	"github.com/sells-group/crm-migrate/internal/model"
	"github.com/sells-group/crm-migrate/internal/progress"
)

var migrateFile string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run a full workbook migration in the foreground",
	RunE: func(cmd *cobra.Command, _ []string) error {
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

		// Observe our own run and mirror events into the log.
		obs := broadcaster.Register()
		defer broadcaster.Deregister(obs.ID)

		run, err := controller.Start(ctx, migrateFile)
		if err != nil {
			return err
		}
		zap.L().Info("migration started", zap.String("run_id", run.ID))

		interrupt := ctx.Done()
		for {
			select {
			case <-interrupt:
				// Request abort once, then keep draining until the done event.
				interrupt = nil
				if _, err := controller.Abort(); err != nil {
					return nil
				}
			case event := <-obs.Events():
				logEvent(event)
				if event.Kind == model.EventDone {
					return nil
				}
			case <-obs.Done():
				return nil
			}
		}
	},
}

func logEvent(event model.ProgressEvent) {
	switch event.Kind {
	case model.EventConnected, model.EventPing:
		// Noise in foreground mode.
	case model.EventError:
		zap.L().Warn("migration event", zap.String("kind", string(event.Kind)), zap.Any("payload", event.Payload))
	default:
		zap.L().Info("migration event", zap.String("kind", string(event.Kind)), zap.Any("payload", event.Payload))
	}
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFile, "file", "", "path to XLSX workbook (required)")
	_ = migrateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(migrateCmd)
}
