package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rpalomera/shopmetrics-backend/api/responses"
	"github.com/rpalomera/shopmetrics-backend/api/validators"
	"github.com/rpalomera/shopmetrics-backend/internal/reports"
	"github.com/rpalomera/shopmetrics-backend/pkg/logger"
	"github.com/rpalomera/shopmetrics-backend/pkg/redis"
)

const maxTopCustomers = 500

// ReportCache is the subset of the redis client the report handlers use.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Reports serves the aggregation outputs over HTTP. cache may be nil, in
// which case every request recomputes.
type Reports struct {
	svc      *reports.Service
	logg     *logger.Logger
	cache    ReportCache
	cacheTTL time.Duration
}

func NewReports(svc *reports.Service, logg *logger.Logger, cache ReportCache, ttl time.Duration) *Reports {
	return &Reports{svc: svc, logg: logg, cache: cache, cacheTTL: ttl}
}

// All returns the five result sets in one payload.
func (h *Reports) All() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if payload, ok := h.cached(ctx, "all"); ok {
			writeCached(w, payload)
			return
		}
		out, err := h.svc.Run(ctx)
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}
		h.respond(ctx, w, "all", out)
	}
}

func (h *Reports) TopCustomers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, maxTopCustomers)
		if err != nil {
			responses.WriteError(ctx, h.logg, w, err)
			return
		}
		responses.WriteSuccess(w, h.svc.TopCustomers(limit))
	}
}

func (h *Reports) Categories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if payload, ok := h.cached(ctx, reports.NameCategories); ok {
			writeCached(w, payload)
			return
		}
		h.respond(ctx, w, reports.NameCategories, h.svc.CategoryPerformance())
	}
}

func (h *Reports) MonthlyTrend() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if payload, ok := h.cached(ctx, reports.NameMonthlyTrend); ok {
			writeCached(w, payload)
			return
		}
		h.respond(ctx, w, reports.NameMonthlyTrend, h.svc.MonthlyTrend())
	}
}

func (h *Reports) Cohorts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if payload, ok := h.cached(ctx, reports.NameCohorts); ok {
			writeCached(w, payload)
			return
		}
		h.respond(ctx, w, reports.NameCohorts, h.svc.Cohorts())
	}
}

func (h *Reports) RatingImpact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if payload, ok := h.cached(ctx, reports.NameRatingImpact); ok {
			writeCached(w, payload)
			return
		}
		h.respond(ctx, w, reports.NameRatingImpact, h.svc.RatingImpact())
	}
}

func (h *Reports) cached(ctx context.Context, name string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	payload, err := h.cache.Get(ctx, redis.ReportKey(name))
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) && h.logg != nil {
			h.logg.Warn(h.logg.WithField(ctx, "report", name), "report cache read failed")
		}
		return nil, false
	}
	return payload, true
}

func (h *Reports) respond(ctx context.Context, w http.ResponseWriter, name string, data any) {
	if h.cache != nil {
		if payload, err := json.Marshal(data); err == nil {
			if err := h.cache.Set(ctx, redis.ReportKey(name), payload, h.cacheTTL); err != nil && h.logg != nil {
				h.logg.Warn(h.logg.WithField(ctx, "report", name), "report cache write failed")
			}
		}
	}
	responses.WriteSuccess(w, data)
}

func writeCached(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "hit")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"data":`))
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte(`}`))
}
