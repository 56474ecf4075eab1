package fetch

import (
	"strings"

	"github.com/bookloader/bookloader/internal/models"
)

// Result holds every adapter outcome of one lookup in invocation order
type Result struct {
	ISBN     string
	Outcomes []Outcome
	fields   []models.Field
}

// Failures returns the adapters that contributed nothing
func (r *Result) Failures() []*AdapterError {
	var failures []*AdapterError
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failures = append(failures, o.Err)
		}
	}
	return failures
}

// Candidates builds the candidate set for field. Single-valued fields take
// one value per source; a source reporting several is marked malformed.
func (r *Result) Candidates(field models.Field) models.FieldCandidateSet {
	set := models.FieldCandidateSet{Field: field}
	for _, o := range r.Outcomes {
		if o.Err != nil {
			continue
		}
		values := nonBlank(o.Partial[field])
		if len(values) == 0 {
			continue
		}
		if len(values) > 1 && !field.MultiValued() && field != models.FieldCategories {
			set.Malformed = append(set.Malformed, o.Source)
			continue
		}
		for _, v := range values {
			set.Candidates = append(set.Candidates, models.Candidate{Source: o.Source, Value: v})
		}
	}
	return set
}

// RawCategories returns every category string from every source, in order
// and without deduplication
func (r *Result) RawCategories() []string {
	var raw []string
	for _, o := range r.Outcomes {
		if o.Err != nil {
			continue
		}
		raw = append(raw, nonBlank(o.Partial[models.FieldCategories])...)
	}
	return raw
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
