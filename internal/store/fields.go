package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/rpalomera/shopmetrics-backend/internal/dataset"
)

// rowReader pulls typed fields out of a raw record, remembering the first
// missing or unparseable field so the whole row can be rejected at once.
type rowReader struct {
	rec  dataset.Record
	bad  *Rejection
	kind string
}

func newRowReader(kind string, rec dataset.Record) *rowReader {
	return &rowReader{rec: rec, kind: kind}
}

func (r *rowReader) fail(constraint, field, value, detail string) {
	if r.bad != nil {
		return
	}
	r.bad = &Rejection{
		Entity:     r.kind,
		Row:        r.rec,
		Constraint: constraint,
		Field:      field,
		Value:      value,
		Detail:     detail,
	}
}

func (r *rowReader) raw(field string) (string, bool) {
	v, ok := r.rec[field]
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		r.fail(ConstraintRequiredField, field, "", "required field is missing or empty")
		return "", false
	}
	return v, true
}

func (r *rowReader) str(field string) string {
	v, _ := r.raw(field)
	return v
}

// optStr returns nil for an absent or blank optional field.
func (r *rowReader) optStr(field string) *string {
	v, ok := r.rec[field]
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return nil
	}
	return &v
}

func (r *rowReader) int64Field(field string) int64 {
	raw, ok := r.raw(field)
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.fail(ConstraintUnparseableField, field, raw, "expected an integer")
		return 0
	}
	return v
}

func (r *rowReader) intField(field string) int {
	return int(r.int64Field(field))
}

func (r *rowReader) floatField(field string) float64 {
	raw, ok := r.raw(field)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(ConstraintUnparseableField, field, raw, "expected a number")
		return 0
	}
	return v
}

func (r *rowReader) dateField(field string) time.Time {
	raw, ok := r.raw(field)
	if !ok {
		return time.Time{}
	}
	v, err := dataset.ParseDate(raw)
	if err != nil {
		r.fail(ConstraintUnparseableField, field, raw, "expected a YYYY-MM-DD date")
		return time.Time{}
	}
	return v
}

func (r *rowReader) rejection() *Rejection {
	return r.bad
}
