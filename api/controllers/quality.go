package controllers

import (
	"net/http"

	"github.com/rpalomera/shopmetrics-backend/api/responses"
	"github.com/rpalomera/shopmetrics-backend/internal/ingest"
)

// Quality serves the quality report and load summary from the last ingest.
type Quality struct {
	summary *ingest.Summary
}

func NewQuality(summary *ingest.Summary) *Quality {
	return &Quality{summary: summary}
}

func (h *Quality) Report() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, h.summary.Report)
	}
}

func (h *Quality) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, h.summary)
	}
}
