package migrate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/crm-migrate/internal/mapping"
	"github.com/sells-group/crm-migrate/internal/model"
	"github.com/sells-group/crm-migrate/internal/progress"
	"github.com/sells-group/crm-migrate/internal/resilience"
	"github.com/sells-group/crm-migrate/internal/store"
	"github.com/sells-group/crm-migrate/internal/workbook"
)

const (
	// progressEvery is the row cadence of progress events within a sheet.
	progressEvery = 25

	// maxRecordedErrors caps the error list carried in the run summary.
	maxRecordedErrors = 50
)

// Config tunes executor behavior.
type Config struct {
	// RowsPerSec throttles store writes; 0 disables the throttle.
	RowsPerSec float64
}

// Executor owns one migration run: its state machine, cancellation flag,
// and the sequential sheet/row processing loop. Rows are written one at a
// time so the abort flag is honored at row granularity and counters stay
// deterministic.
type Executor struct {
	store       store.Store
	broadcaster *progress.Broadcaster
	registry    *Registry
	analyzer    *workbook.Analyzer
	advisor     *mapping.Advisor
	retryCfg    resilience.RetryConfig
	limiter     *rate.Limiter

	// readWorkbook allows test injection of sheet fixtures.
	readWorkbook func(path string) ([]workbook.RawSheet, error)

	aborted atomic.Bool

	mu  sync.Mutex
	run model.MigrationRun
}

// NewExecutor builds an executor for one workbook file. The run starts
// in the idle state; Start claims the registry slot and begins processing.
func NewExecutor(st store.Store, b *progress.Broadcaster, reg *Registry, file string, cfg Config) *Executor {
	e := &Executor{
		store:       st,
		broadcaster: b,
		registry:    reg,
		analyzer:     workbook.NewAnalyzer(),
		advisor:      mapping.NewAdvisor(),
		retryCfg:     resilience.DefaultRetryConfig(),
		readWorkbook: workbook.ReadWorkbook,
		run: model.MigrationRun{
			ID:      uuid.New().String(),
			File:    file,
			Status:  model.RunStatusIdle,
			Summary: model.NewRunSummary(),
		},
	}
	e.retryCfg.OnRetry = resilience.RetryLogger("entity write")
	if cfg.RowsPerSec > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RowsPerSec), 1)
	}
	return e
}

// RunID returns the run's identifier.
func (e *Executor) RunID() string {
	return e.run.ID
}

// Status returns a snapshot of the run.
func (e *Executor) Status() model.MigrationRun {
	e.mu.Lock()
	defer e.mu.Unlock()
	snapshot := e.run
	return snapshot
}

// Start claims the single-flight slot and begins asynchronous processing.
// Returns ErrRunActive, with no side effects, if another run is active.
func (e *Executor) Start(ctx context.Context) error {
	if !e.registry.TryInsert(e) {
		return ErrRunActive
	}

	e.mu.Lock()
	e.run.Status = model.RunStatusRunning
	e.run.StartedAt = time.Now().UTC()
	e.mu.Unlock()

	zap.L().Info("migration run started",
		zap.String("run_id", e.run.ID),
		zap.String("file", e.run.File),
	)

	go e.process(ctx)
	return nil
}

// Abort sets the cancellation flag. The running loop observes it at row
// granularity: the in-flight write finishes, then the run stops.
func (e *Executor) Abort() {
	e.aborted.Store(true)
	zap.L().Info("migration run abort requested", zap.String("run_id", e.run.ID))
}

// process drives the whole run and always ends in a terminal state.
func (e *Executor) process(ctx context.Context) {
	defer e.finish()

	sheets, err := e.readWorkbook(e.run.File)
	if err != nil {
		e.fail(eris.Wrap(err, "read workbook"))
		return
	}

	if err := resilience.Do(ctx, e.retryCfg, e.store.Ping); err != nil {
		e.fail(eris.Wrap(err, "store unreachable"))
		return
	}

	for _, raw := range sheets {
		if e.aborted.Load() {
			e.setStatus(model.RunStatusAborted)
			return
		}

		if err := e.processSheet(ctx, raw); err != nil {
			return
		}
	}
}

// processSheet analyzes, maps, and loads one sheet. A non-nil return
// means the run has reached a terminal state and remaining sheets must
// not be attempted.
func (e *Executor) processSheet(ctx context.Context, raw workbook.RawSheet) error {
	sheet, err := e.analyzer.Analyze(raw)
	if err != nil {
		// Structural: this sheet is skipped, the run continues.
		e.recordError(eris.Wrapf(err, "sheet %q", raw.Name))
		e.broadcaster.Publish(model.EventError, map[string]any{
			"sheet":   raw.Name,
			"message": "sheet skipped: no readable content",
		})
		return nil
	}
	if len(sheet.ColumnProfiles) == 0 {
		e.recordError(eris.Errorf("sheet %q: no populated columns", raw.Name))
		e.broadcaster.Publish(model.EventError, map[string]any{
			"sheet":   raw.Name,
			"message": "sheet skipped: no populated columns",
		})
		return nil
	}

	entity := mapping.ClassifySheet(sheet)
	fields, err := mapping.TargetsFor(entity)
	if err != nil {
		e.fail(err)
		return err
	}
	suggestions := e.advisor.Suggest(sheet, fields)

	e.broadcaster.Publish(model.EventSheetStarted, map[string]any{
		"sheet":  sheet.Name,
		"entity": string(entity),
		"rows":   sheet.DataRowCount(),
	})

	counters := e.counters(entity)

	for row := sheet.DataStartRow; row < sheet.TotalRows; row++ {
		if e.aborted.Load() {
			e.setStatus(model.RunStatusAborted)
			return eris.New("aborted")
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				e.setStatus(model.RunStatusAborted)
				return eris.Wrap(err, "throttle wait")
			}
		}

		e.withCounters(func() { counters.Processed++ })

		record, err := buildRecord(entity, sheet, suggestions, row)
		if err != nil {
			// Validation: counted, run continues.
			e.withCounters(func() { counters.Errored++ })
			e.recordError(eris.Wrapf(err, "sheet %q row %d", sheet.Name, row))
			continue
		}

		created, err := resilience.DoVal(ctx, e.retryCfg, func(ctx context.Context) (bool, error) {
			return e.writeRecord(ctx, record)
		})
		if err != nil {
			if resilience.IsConnectivity(err) {
				e.fail(eris.Wrapf(err, "sheet %q row %d: store unreachable", sheet.Name, row))
				return err
			}
			e.withCounters(func() { counters.Errored++ })
			e.recordError(eris.Wrapf(err, "sheet %q row %d", sheet.Name, row))
			continue
		}

		if created {
			e.withCounters(func() { counters.Created++ })
		} else {
			e.withCounters(func() { counters.Skipped++ })
		}

		processed := row - sheet.DataStartRow + 1
		if processed%progressEvery == 0 {
			e.publishProgress(sheet.Name, entity, processed)
		}
	}

	e.broadcaster.Publish(model.EventSheetCompleted, map[string]any{
		"sheet":    sheet.Name,
		"entity":   string(entity),
		"counters": e.counterSnapshot(entity),
	})

	return nil
}

// writeRecord persists one transformed row.
func (e *Executor) writeRecord(ctx context.Context, record any) (bool, error) {
	switch v := record.(type) {
	case model.Organization:
		return e.store.CreateOrganization(ctx, v)
	case model.Contact:
		return e.store.CreateContact(ctx, v)
	case model.Opportunity:
		return e.store.CreateOpportunity(ctx, v)
	case model.Interaction:
		return e.store.CreateInteraction(ctx, v)
	default:
		return false, eris.Errorf("unsupported record type %T", record)
	}
}

// finish emits the final summary event and releases the registry slot.
// Runs exactly once per run, for every terminal path.
func (e *Executor) finish() {
	e.mu.Lock()
	if !e.run.Status.Terminal() {
		if e.aborted.Load() {
			e.run.Status = model.RunStatusAborted
		} else {
			e.run.Status = model.RunStatusCompleted
		}
	}
	now := time.Now().UTC()
	e.run.EndedAt = &now
	status := e.run.Status
	summary := *e.run.Summary
	e.mu.Unlock()

	e.broadcaster.Publish(model.EventDone, map[string]any{
		"run_id":   e.run.ID,
		"status":   string(status),
		"counters": summary.Counters,
		"errors":   summary.Errors,
	})

	e.registry.Remove(e.run.ID)

	totals := summary.Totals()
	zap.L().Info("migration run finished",
		zap.String("run_id", e.run.ID),
		zap.String("status", string(status)),
		zap.Int("processed", totals.Processed),
		zap.Int("created", totals.Created),
		zap.Int("skipped", totals.Skipped),
		zap.Int("errored", totals.Errored),
	)
}

func (e *Executor) fail(err error) {
	e.recordError(err)
	e.setStatus(model.RunStatusFailed)
	e.broadcaster.Publish(model.EventError, map[string]any{
		"run_id":  e.run.ID,
		"message": err.Error(),
		"fatal":   true,
	})
	zap.L().Error("migration run failed", zap.String("run_id", e.run.ID), zap.Error(err))
}

func (e *Executor) setStatus(status model.RunStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.run.Status.Terminal() {
		e.run.Status = status
	}
}

func (e *Executor) recordError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.run.Summary.Errors) < maxRecordedErrors {
		e.run.Summary.Errors = append(e.run.Summary.Errors, err.Error())
	}
}

func (e *Executor) counters(entity model.EntityType) *model.EntityCounters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run.Summary.Counters[entity]
}

func (e *Executor) withCounters(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

func (e *Executor) counterSnapshot(entity model.EntityType) model.EntityCounters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.run.Summary.Counters[entity]
}

func (e *Executor) publishProgress(sheetName string, entity model.EntityType, processed int) {
	e.broadcaster.Publish(model.EventProgress, map[string]any{
		"sheet":    sheetName,
		"entity":   string(entity),
		"row":      processed,
		"counters": e.counterSnapshot(entity),
	})
}
