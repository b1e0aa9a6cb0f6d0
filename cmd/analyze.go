package main

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/crm-migrate/internal/mapping"
	"github.com/sells-group/crm-migrate/internal/model"
	"github.com/sells-group/crm-migrate/internal/workbook"
)

var analyzeFile string

// sheetReport is the dry-run output for one sheet.
type sheetReport struct {
	Sheet       *model.Sheet              `json:"sheet"`
	Entity      model.EntityType          `json:"entity"`
	Suggestions []model.MappingSuggestion `json:"suggestions"`
	Skipped     bool                      `json:"skipped"`
	SkipReason  string                    `json:"skip_reason,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Profile a workbook and print mapping suggestions without writing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sheets, err := workbook.ReadWorkbook(analyzeFile)
		if err != nil {
			return err
		}

		analyzer := workbook.NewAnalyzer()
		advisor := mapping.NewAdvisor()

		reports := make([]sheetReport, len(sheets))
		var mu sync.Mutex

		// Dry-run analysis has no write-ordering constraints, so sheets
		// are profiled concurrently.
		g, _ := errgroup.WithContext(cmd.Context())
		for i, raw := range sheets {
			i, raw := i, raw
			g.Go(func() error {
				sheet, err := analyzer.Analyze(raw)
				if err != nil {
					mu.Lock()
					reports[i] = sheetReport{
						Sheet:      &model.Sheet{Name: raw.Name},
						Skipped:    true,
						SkipReason: err.Error(),
					}
					mu.Unlock()
					return nil
				}

				entity := mapping.ClassifySheet(sheet)
				fields, err := mapping.TargetsFor(entity)
				if err != nil {
					return err
				}

				mu.Lock()
				reports[i] = sheetReport{
					Sheet:       sheet,
					Entity:      entity,
					Suggestions: advisor.Suggest(sheet, fields),
				}
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "analyze workbook")
		}

		zap.L().Info("workbook analyzed",
			zap.String("file", analyzeFile),
			zap.Int("sheets", len(reports)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(reports), "encode report")
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "path to XLSX workbook (required)")
	_ = analyzeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(analyzeCmd)
}
