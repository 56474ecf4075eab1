package reconcile

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bookloader/bookloader/internal/models"
)

// markup matches tag-like substrings and named or numeric character entities
var markup = regexp.MustCompile(`<.*?>|&([a-z0-9]+|#[0-9]{1,6}|#x[0-9a-f]{1,6});`)

// Reasons recorded on a Resolution
const (
	ReasonNoCandidates   = "no candidates"
	ReasonSingle         = "single candidate"
	ReasonAgreePriority  = "values agree; priority source"
	ReasonAgreeFirst     = "values agree; first candidate"
	ReasonMarkupOnly     = "html markup; only marked-up candidate"
	ReasonMarkupMost     = "html markup; most words"
	ReasonPriority       = "values disagree; priority source"
	ReasonFirst          = "values disagree; first candidate"
	ReasonMalformedInput = "malformed candidates"
)

// FieldError is a reconciliation failure for one field
type FieldError struct {
	Field  models.Field
	Reason string
}

// Error implements the error interface
func (e *FieldError) Error() string {
	return fmt.Sprintf("reconcile %s: %s", e.Field, e.Reason)
}

// Resolution is the outcome of reconciling one field. Value is nil when no
// candidate survived or the field failed to reconcile.
type Resolution struct {
	Field  models.Field
	Value  *string
	Source models.SourceID
	Reason string
	Err    error
}

// Reconciler picks one winning value per field
type Reconciler struct {
	discard  map[string]struct{}
	priority models.SourceID
}

// New returns a Reconciler that never selects a discard value and prefers
// the priority source when candidates agree or nothing better applies
func New(discard []string, priority models.SourceID) *Reconciler {
	r := &Reconciler{
		discard:  make(map[string]struct{}, len(discard)),
		priority: priority,
	}
	for _, d := range discard {
		r.discard[d] = struct{}{}
	}
	return r
}

// Resolve reduces set to a single value
func (r *Reconciler) Resolve(set models.FieldCandidateSet) (res Resolution) {
	res.Field = set.Field

	defer func() {
		if p := recover(); p != nil {
			res = r.fail(set.Field, fmt.Sprintf("panic: %v", p))
		}
	}()

	if reason := malformed(set); reason != "" {
		return r.fail(set.Field, reason)
	}

	remaining := r.survivors(set.Candidates)

	switch len(remaining) {
	case 0:
		res.Reason = ReasonNoCandidates
		return res
	case 1:
		return resolved(set.Field, remaining[0], ReasonSingle)
	}

	if agree(remaining) {
		if c, ok := r.fromPriority(remaining); ok {
			return resolved(set.Field, c, ReasonAgreePriority)
		}
		return resolved(set.Field, remaining[0], ReasonAgreeFirst)
	}

	var marked []models.Candidate
	for _, c := range remaining {
		if markup.MatchString(c.Value) {
			marked = append(marked, c)
		}
	}

	switch {
	case len(marked) == 1:
		return resolved(set.Field, marked[0], ReasonMarkupOnly)
	case len(marked) > 1:
		return resolved(set.Field, mostWords(marked), ReasonMarkupMost)
	}

	if c, ok := r.fromPriority(remaining); ok {
		return resolved(set.Field, c, ReasonPriority)
	}
	return resolved(set.Field, remaining[0], ReasonFirst)
}

// PassThrough returns every surviving value of set in order, for fields
// whose final choice is left to the caller
func (r *Reconciler) PassThrough(set models.FieldCandidateSet) []string {
	values := []string{}
	for _, c := range r.survivors(set.Candidates) {
		if !utf8.ValidString(c.Value) {
			slog.Warn("Dropping candidate with invalid text",
				"failure", "reconciliation",
				"field", set.Field,
				"source", c.Source)
			continue
		}
		values = append(values, c.Value)
	}
	return values
}

// Best picks the longest value; ties keep the earlier one
func Best(values []string) string {
	best := ""
	for _, v := range values {
		if utf8.RuneCountInString(v) > utf8.RuneCountInString(best) {
			best = v
		}
	}
	return best
}

func (r *Reconciler) survivors(candidates []models.Candidate) []models.Candidate {
	remaining := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := r.discard[c.Value]; ok {
			continue
		}
		remaining = append(remaining, c)
	}
	return remaining
}

func (r *Reconciler) fromPriority(candidates []models.Candidate) (models.Candidate, bool) {
	for _, c := range candidates {
		if c.Source == r.priority {
			return c, true
		}
	}
	return models.Candidate{}, false
}

func (r *Reconciler) fail(field models.Field, reason string) Resolution {
	err := &FieldError{Field: field, Reason: reason}
	slog.Warn("Field resolved to null",
		"failure", "reconciliation",
		"field", field,
		"error", err)
	return Resolution{Field: field, Reason: ReasonMalformedInput, Err: err}
}

func malformed(set models.FieldCandidateSet) string {
	if len(set.Malformed) > 0 {
		sources := make([]string, len(set.Malformed))
		for i, s := range set.Malformed {
			sources[i] = string(s)
		}
		return "unexpected value shape from " + strings.Join(sources, ", ")
	}
	for _, c := range set.Candidates {
		if !utf8.ValidString(c.Value) {
			return "invalid text from " + string(c.Source)
		}
	}
	return ""
}

func agree(candidates []models.Candidate) bool {
	for _, c := range candidates[1:] {
		if c.Value != candidates[0].Value {
			return false
		}
	}
	return true
}

// mostWords returns the candidate with strictly the most words, first seen on ties
func mostWords(candidates []models.Candidate) models.Candidate {
	best, most := candidates[0], len(strings.Fields(candidates[0].Value))
	for _, c := range candidates[1:] {
		if n := len(strings.Fields(c.Value)); n > most {
			best, most = c, n
		}
	}
	return best
}

func resolved(field models.Field, c models.Candidate, reason string) Resolution {
	value := c.Value
	return Resolution{
		Field:  field,
		Value:  &value,
		Source: c.Source,
		Reason: reason,
	}
}
