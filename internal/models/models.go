package models

import (
	"fmt"
	"strings"
)

// Field names a logical book attribute gathered from sources
type Field string

const (
	FieldTitle       Field = "title"
	FieldAuthors     Field = "authors"
	FieldPublisher   Field = "publisher"
	FieldBinding     Field = "binding"
	FieldPublishDate Field = "publish_date"
	FieldDescription Field = "description"
	FieldImage       Field = "image"
	FieldCategories  Field = "categories"
)

// Fields lists every supported field in output order
var Fields = []Field{
	FieldTitle,
	FieldAuthors,
	FieldPublisher,
	FieldBinding,
	FieldPublishDate,
	FieldDescription,
	FieldImage,
	FieldCategories,
}

// ParseField returns the Field for name or an error for unknown names
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field: %s", name)
}

// MultiValued reports whether a field keeps every candidate rather than one winner
func (f Field) MultiValued() bool {
	return f == FieldImage || f == FieldDescription
}

// SourceID identifies the adapter that produced a candidate
type SourceID string

const (
	SourceAmazon    SourceID = "amazon"
	SourceGoodreads SourceID = "goodreads"
	SourceISBNdb    SourceID = "isbndb"
	SourceGoogle    SourceID = "google"
)

// Sources lists every source in invocation order
var Sources = []SourceID{
	SourceAmazon,
	SourceGoodreads,
	SourceISBNdb,
	SourceGoogle,
}

// ParseSource returns the SourceID for name or an error for unknown names
func ParseSource(name string) (SourceID, error) {
	for _, s := range Sources {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown source: %s", name)
}

// Candidate is one field value as reported by one source
type Candidate struct {
	Source SourceID `json:"source"`
	Value  string   `json:"value"`
}

// FieldCandidateSet holds every candidate for one field in adapter invocation order
type FieldCandidateSet struct {
	Field      Field       `json:"field"`
	Candidates []Candidate `json:"candidates"`

	// Malformed lists sources whose payload for this field had an unexpected shape
	Malformed []SourceID `json:"malformed,omitempty"`
}

// Values returns the candidate values in order
func (s FieldCandidateSet) Values() []string {
	values := make([]string, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		values = append(values, c.Value)
	}
	return values
}

// Partial is the best-effort field set returned by a single source.
// Single-valued fields carry one element; image and categories may carry several.
type Partial map[Field][]string

// Set stores a single value, ignoring blanks
func (p Partial) Set(field Field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	p[field] = []string{value}
}

// Add appends values, ignoring blanks
func (p Partial) Add(field Field, values ...string) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		p[field] = append(p[field], v)
	}
}

// Record is the reconciled output for one identifier
type Record struct {
	ISBN string `json:"isbn"`

	// Values holds single-winner fields; a nil entry means the field
	// was requested but resolved to no value
	Values map[Field]*string `json:"values"`

	// Lists holds pass-through fields (image, description)
	Lists map[Field][]string `json:"lists"`

	// Categories is nil when the categories field was not requested
	Categories []string `json:"categories"`

	// Sources maps each single-winner field to the source that won it
	Sources map[Field]SourceID `json:"sources,omitempty"`
}

// NewRecord returns an empty record for isbn
func NewRecord(isbn string) *Record {
	return &Record{
		ISBN:    isbn,
		Values:  make(map[Field]*string),
		Lists:   make(map[Field][]string),
		Sources: make(map[Field]SourceID),
	}
}

// Value returns the resolved text for field, or "" when absent or null
func (r *Record) Value(field Field) string {
	if v := r.Values[field]; v != nil {
		return *v
	}
	return ""
}

// Has reports whether field is present in the record (resolved or null)
func (r *Record) Has(field Field) bool {
	if field == FieldCategories {
		return r.Categories != nil
	}
	if _, ok := r.Values[field]; ok {
		return true
	}
	_, ok := r.Lists[field]
	return ok
}

// Map flattens the record into the field name to value mapping consumed by
// presentation layers. Unrequested fields are absent; null fields map to nil.
func (r *Record) Map() map[string]any {
	out := map[string]any{"isbn": r.ISBN}
	for field, v := range r.Values {
		if v == nil {
			out[string(field)] = nil
			continue
		}
		out[string(field)] = *v
	}
	for field, list := range r.Lists {
		out[string(field)] = list
	}
	if r.Categories != nil {
		out[string(FieldCategories)] = r.Categories
	}
	return out
}

// ShortTitle cuts title at the first occurrence of sep, trimming the result.
// The title is returned unchanged when sep does not occur.
func ShortTitle(title, sep string) string {
	if sep == "" {
		return title
	}
	if idx := strings.Index(title, sep); idx > 0 {
		return strings.TrimSpace(title[:idx])
	}
	return title
}
