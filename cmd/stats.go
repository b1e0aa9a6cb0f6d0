package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/crm-migrate/internal/migrate"
	"github.com/sells-group/crm-migrate/internal/monitoring"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate entity counts from the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		// A CLI invocation has no in-process run, so the registry is empty
		// and the active flag is always false here.
		collector := monitoring.NewCollector(st, migrate.NewRegistry())

		snap, err := collector.Collect(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(snap), "encode stats")
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
