// Package reports derives the analytical result sets from a frozen record
// store. The five queries are read-only and independent, so Run fans them out
// concurrently; each is also callable on its own.
package reports

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rpalomera/shopmetrics-backend/internal/store"
	pkgerrors "github.com/rpalomera/shopmetrics-backend/pkg/errors"
)

// Result set names, used as cache keys and insight section headings.
const (
	NameTopCustomers = "top_customers"
	NameCategories   = "category_performance"
	NameMonthlyTrend = "monthly_trend"
	NameCohorts      = "cohort_analysis"
	NameRatingImpact = "rating_impact"
)

// ResultSet bundles the five aggregation outputs of one run.
type ResultSet struct {
	TopCustomers []TopCustomerRow  `json:"top_customers"`
	Categories   []CategoryRow     `json:"category_performance"`
	MonthlyTrend []MonthlyTrendRow `json:"monthly_trend"`
	Cohorts      []CohortRow       `json:"cohort_analysis"`
	RatingImpact []RatingImpactRow `json:"rating_impact"`
}

// Service computes aggregates over a frozen store.
type Service struct {
	store *store.Store
	limit int
}

// NewService wires the aggregation engine to its store. limit caps the
// top-customer ranking; values below one fall back to 20.
func NewService(s *store.Store, limit int) *Service {
	if limit < 1 {
		limit = 20
	}
	return &Service{store: s, limit: limit}
}

func (s *Service) guard() error {
	if !s.store.Frozen() {
		return pkgerrors.New(pkgerrors.CodeConflict, "record store must be frozen before aggregation")
	}
	return nil
}

// Run computes all five result sets concurrently.
func (s *Service) Run(ctx context.Context) (*ResultSet, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var out ResultSet
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.TopCustomers = s.TopCustomers(s.limit)
		return nil
	})
	g.Go(func() error {
		out.Categories = s.CategoryPerformance()
		return nil
	})
	g.Go(func() error {
		out.MonthlyTrend = s.MonthlyTrend()
		return nil
	})
	g.Go(func() error {
		out.Cohorts = s.Cohorts()
		return nil
	})
	g.Go(func() error {
		out.RatingImpact = s.RatingImpact()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
