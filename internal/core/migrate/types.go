package migrate

import (
	"time"

	"djedi-migrate/internal/djedi"
)

// Category is the bucket a URI ends up in after processing.
type Category string

const (
	CategorySuccess Category = "success"
	CategorySame    Category = "same"
	CategoryImages  Category = "images"
	CategoryNull    Category = "null"
	CategoryFail    Category = "fail"
)

// Categories lists every category in report order.
var Categories = []Category{CategorySuccess, CategorySame, CategoryImages, CategoryNull, CategoryFail}

// Outcome is the result of processing one URI.
type Outcome struct {
	Index    int      `json:"index" yaml:"index"`
	URI      string   `json:"uri" yaml:"uri"`
	Category Category `json:"category" yaml:"category"`
	// Preview is the truncated, quoted source data (success only).
	Preview string `json:"preview,omitempty" yaml:"preview,omitempty"`
	// Error is the failure message (fail only).
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// DraftSaved is set on a fail outcome whose draft was stored but never
	// published.
	DraftSaved bool          `json:"draftSaved,omitempty" yaml:"draftSaved,omitempty"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// Counts holds the number of outcomes per category.
type Counts struct {
	Success int `json:"success" yaml:"success"`
	Same    int `json:"same" yaml:"same"`
	Images  int `json:"images" yaml:"images"`
	Null    int `json:"null" yaml:"null"`
	Fail    int `json:"fail" yaml:"fail"`
}

// Total returns the sum over all categories.
func (c Counts) Total() int { return c.Success + c.Same + c.Images + c.Null + c.Fail }

// Of returns the count for a single category.
func (c Counts) Of(cat Category) int {
	switch cat {
	case CategorySuccess:
		return c.Success
	case CategorySame:
		return c.Same
	case CategoryImages:
		return c.Images
	case CategoryNull:
		return c.Null
	case CategoryFail:
		return c.Fail
	}
	return 0
}

// Result collects the outcomes of a run grouped by category. Each group
// keeps processing order.
type Result struct {
	Language    string
	DryRun      bool
	StartedAt   time.Time
	FinishedAt  time.Time
	Interrupted bool
	// Metrics is filled in by the caller when the HTTP clients were metered.
	Metrics *djedi.MetricsSnapshot

	groups map[Category][]Outcome
}

func newResult(language string, dryRun bool) *Result {
	return &Result{
		Language: language,
		DryRun:   dryRun,
		groups:   make(map[Category][]Outcome, len(Categories)),
	}
}

// Add files o under its category.
func (r *Result) Add(o Outcome) {
	if r.groups == nil {
		r.groups = make(map[Category][]Outcome, len(Categories))
	}
	r.groups[o.Category] = append(r.groups[o.Category], o)
}

// Get returns the outcomes of one category in processing order.
func (r *Result) Get(c Category) []Outcome {
	return r.groups[c]
}

// Counts derives the per-category counts.
func (r *Result) Counts() Counts {
	return Counts{
		Success: len(r.groups[CategorySuccess]),
		Same:    len(r.groups[CategorySame]),
		Images:  len(r.groups[CategoryImages]),
		Null:    len(r.groups[CategoryNull]),
		Fail:    len(r.groups[CategoryFail]),
	}
}

// Total returns the number of processed URIs.
func (r *Result) Total() int { return r.Counts().Total() }

// Elapsed returns the wall time of the run.
func (r *Result) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
