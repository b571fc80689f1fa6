// Package ingest drives the load phase: it reads the five raw files in
// dependency order, feeds them through the record store, runs the integrity
// validator, and freezes the store for aggregation.
package ingest

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rpalomera/shopmetrics-backend/internal/dataset"
	"github.com/rpalomera/shopmetrics-backend/internal/integrity"
	"github.com/rpalomera/shopmetrics-backend/internal/store"
	pkgerrors "github.com/rpalomera/shopmetrics-backend/pkg/errors"
	"github.com/rpalomera/shopmetrics-backend/pkg/logger"
	"github.com/rpalomera/shopmetrics-backend/pkg/metrics"
)

// Summary reports what one pipeline run loaded.
type Summary struct {
	Accepted map[string]int           `json:"accepted"`
	Rejected map[string]int           `json:"rejected"`
	Report   *integrity.QualityReport `json:"quality_report"`
	Duration time.Duration            `json:"-"`
}

// Loader owns the ingestion sequence for one dataset directory.
type Loader struct {
	dir     string
	log     *logger.Logger
	metrics *metrics.PipelineMetrics
}

// NewLoader returns a loader for the dataset directory. metrics may be nil.
func NewLoader(dir string, log *logger.Logger, m *metrics.PipelineMetrics) *Loader {
	return &Loader{dir: dir, log: log, metrics: m}
}

// Run loads all five collections into a fresh store, validates it, and
// freezes it. The returned store is nil when a file cannot be read or the
// validator finds a fatal inconsistency.
func (l *Loader) Run(ctx context.Context) (*store.Store, *Summary, error) {
	s := store.New()
	summary := &Summary{
		Accepted: make(map[string]int),
		Rejected: make(map[string]int),
	}
	start := time.Now()

	steps := []struct {
		entity string
		file   string
		load   func([]dataset.Record) (int, []store.Rejection, error)
	}{
		{store.EntityProducts, dataset.ProductsFile, func(rows []dataset.Record) (int, []store.Rejection, error) {
			accepted, rejected, err := s.LoadProducts(rows)
			return len(accepted), rejected, err
		}},
		{store.EntityCustomers, dataset.CustomersFile, func(rows []dataset.Record) (int, []store.Rejection, error) {
			accepted, rejected, err := s.LoadCustomers(rows)
			return len(accepted), rejected, err
		}},
		{store.EntityOrders, dataset.OrdersFile, func(rows []dataset.Record) (int, []store.Rejection, error) {
			accepted, rejected, err := s.LoadOrders(rows)
			return len(accepted), rejected, err
		}},
		{store.EntityOrderItems, dataset.OrderItemsFile, func(rows []dataset.Record) (int, []store.Rejection, error) {
			accepted, rejected, err := s.LoadOrderItems(rows)
			return len(accepted), rejected, err
		}},
		{store.EntityReviews, dataset.ReviewsFile, func(rows []dataset.Record) (int, []store.Rejection, error) {
			accepted, rejected, err := s.LoadReviews(rows)
			return len(accepted), rejected, err
		}},
	}

	for _, step := range steps {
		stepCtx := l.log.WithEntity(ctx, step.entity)
		path := filepath.Join(l.dir, step.file)
		rows, err := dataset.ReadFile(path)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read "+step.file)
		}
		accepted, rejected, err := step.load(rows)
		if err != nil {
			return nil, nil, err
		}
		summary.Accepted[step.entity] = accepted
		summary.Rejected[step.entity] = len(rejected)
		l.metrics.AddRowsLoaded(step.entity, accepted)
		for _, rej := range rejected {
			l.metrics.IncRowRejected(step.entity, rej.Constraint)
			l.log.Warn(l.log.WithFields(stepCtx, map[string]any{
				"constraint": rej.Constraint,
				"field":      rej.Field,
				"value":      rej.Value,
			}), "row rejected")
		}
		l.log.Info(l.log.WithFields(stepCtx, map[string]any{
			"accepted": accepted,
			"rejected": len(rejected),
		}), "collection loaded")
	}
	l.metrics.ObserveStage("load", time.Since(start))

	validateStart := time.Now()
	report, err := integrity.Validate(s)
	if err != nil {
		l.log.Error(ctx, "integrity validation failed", err)
		return nil, nil, err
	}
	l.metrics.ObserveStage("validate", time.Since(validateStart))
	for _, a := range report.Anomalies {
		l.metrics.IncAnomaly(a.Rule)
	}
	if n := len(report.Anomalies); n > 0 {
		l.log.Warn(l.log.WithField(ctx, "anomalies", n), "business anomalies found")
	}

	s.Freeze()
	summary.Report = report
	summary.Duration = time.Since(start)
	return s, summary, nil
}
