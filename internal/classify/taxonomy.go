package classify

import (
	"fmt"
	"log/slog"
	"strings"
)

// AliasLookup returns the configured aliases for a category. A nil slice
// with a nil error means the category has no synonyms configured.
type AliasLookup func(category string) ([]string, error)

// AliasError records a category whose alias configuration could not be used
type AliasError struct {
	Category string
	Err      error
}

// Error implements the error interface
func (e *AliasError) Error() string {
	return fmt.Sprintf("aliases for category %q: %v", e.Category, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *AliasError) Unwrap() error {
	return e.Err
}

// Taxonomy maps each canonical category to its lowercase aliases.
// It is immutable once built.
type Taxonomy struct {
	names   []string
	aliases map[string][]string
}

// NewTaxonomy builds the taxonomy for categories. Every category gets its
// own lowercased name as an alias. A category whose lookup fails keeps only
// that alias; the failures are logged and returned.
func NewTaxonomy(categories []string, lookup AliasLookup) (*Taxonomy, []*AliasError) {
	t := &Taxonomy{
		aliases: make(map[string][]string, len(categories)),
	}
	var failures []*AliasError

	for _, category := range categories {
		if _, dup := t.aliases[category]; dup {
			continue
		}
		t.names = append(t.names, category)

		var configured []string
		if lookup != nil {
			values, err := lookup(category)
			if err != nil {
				aerr := &AliasError{Category: category, Err: err}
				failures = append(failures, aerr)
				slog.Warn("Falling back to category name as only alias",
					"failure", "classification",
					"category", category,
					"error", err)
			} else {
				configured = values
			}
		}

		t.aliases[category] = buildAliases(category, configured)
	}

	return t, failures
}

func buildAliases(category string, configured []string) []string {
	seen := make(map[string]struct{}, len(configured)+1)
	aliases := make([]string, 0, len(configured)+1)
	candidates := append(append([]string(nil), configured...), category)
	for _, a := range candidates {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		aliases = append(aliases, a)
	}
	return aliases
}

// Categories returns the canonical category names in configuration order
func (t *Taxonomy) Categories() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Aliases returns the aliases of category
func (t *Taxonomy) Aliases(category string) []string {
	aliases := t.aliases[category]
	out := make([]string, len(aliases))
	copy(out, aliases)
	return out
}
