package classify

import (
	"log/slog"
	"sort"
	"strings"
)

// Pairing selects how two-word combinations are synthesized from split words
type Pairing int

const (
	// PairingCrossProduct pairs every word with every word, itself included
	PairingCrossProduct Pairing = iota
	// PairingAdjacent pairs each word only with the word that follows it
	PairingAdjacent
)

// subjectDelimiter separates breadcrumb levels in source subject strings
const subjectDelimiter = "--"

// Option configures a Classifier
type Option func(*Classifier)

// WithPairing overrides the default cross-product pairing
func WithPairing(p Pairing) Option {
	return func(c *Classifier) {
		c.pairing = p
	}
}

// Classifier maps raw subject strings onto a fixed taxonomy
type Classifier struct {
	taxonomy  *Taxonomy
	discard   map[string]struct{}
	threshold int
	pairing   Pairing
}

// New returns a Classifier. A score must strictly exceed threshold to match.
func New(taxonomy *Taxonomy, discard []string, threshold int, opts ...Option) *Classifier {
	if taxonomy == nil {
		taxonomy, _ = NewTaxonomy(nil, nil)
	}
	c := &Classifier{
		taxonomy:  taxonomy,
		discard:   make(map[string]struct{}, len(discard)),
		threshold: threshold,
	}
	for _, d := range discard {
		c.discard[d] = struct{}{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Match explains why a category was assigned
type Match struct {
	Category string `json:"category" yaml:"category"`
	Alias    string `json:"alias" yaml:"alias"`
	Matched  string `json:"matched" yaml:"matched"`
	Score    int    `json:"score" yaml:"score"`
}

// Classify returns the sorted canonical categories that raw refers to
func (c *Classifier) Classify(raw []string) []string {
	matches := c.Explain(raw)
	categories := make([]string, 0, len(matches))
	for _, m := range matches {
		categories = append(categories, m.Category)
	}
	return categories
}

// Explain returns the best scoring alias and corpus string for every
// matched category, sorted by category name
func (c *Classifier) Explain(raw []string) []Match {
	corpus := c.Corpus(raw)
	if len(corpus) == 0 {
		return []Match{}
	}

	matches := []Match{}
	for _, category := range c.taxonomy.names {
		best := Match{Score: -1}
		for _, alias := range c.taxonomy.aliases[category] {
			for _, s := range corpus {
				score := Ratio(alias, s)
				if score > c.threshold && score > best.Score {
					best = Match{Category: category, Alias: alias, Matched: s, Score: score}
				}
			}
		}
		if best.Score >= 0 {
			matches = append(matches, best)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Category < matches[j].Category
	})

	slog.Debug("Classified categories",
		"raw", len(raw),
		"corpus", len(corpus),
		"matched", len(matches))

	return matches
}

// Corpus builds the comparison strings for raw: the original inputs, the
// split single words and the synthesized two-word combinations. Duplicates
// are removed since they cannot change the outcome.
func (c *Classifier) Corpus(raw []string) []string {
	seen := make(map[string]struct{})
	var corpus []string
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		corpus = append(corpus, s)
	}

	words := c.words(raw)

	// A raw string that is itself a sentinel has nothing to say
	for _, s := range raw {
		if c.discarded(s) || c.discarded(strings.ToLower(strings.TrimSpace(s))) {
			continue
		}
		add(s)
	}
	for _, w := range words {
		add(w)
	}
	for _, pair := range c.pairs(words) {
		add(pair[0] + " " + pair[1])
		add(pair[0] + " & " + pair[1])
	}

	return corpus
}

func (c *Classifier) words(raw []string) []string {
	var words []string
	for _, s := range raw {
		for _, token := range strings.Split(s, subjectDelimiter) {
			token = strings.ReplaceAll(strings.ToLower(token), ",", "")
			for _, w := range strings.Fields(token) {
				if c.discarded(w) {
					continue
				}
				words = append(words, w)
			}
		}
	}
	return words
}

func (c *Classifier) pairs(words []string) [][2]string {
	var pairs [][2]string
	switch c.pairing {
	case PairingAdjacent:
		for i := 0; i+1 < len(words); i++ {
			pairs = append(pairs, [2]string{words[i], words[i+1]})
		}
	default:
		pairs = make([][2]string, 0, len(words)*len(words))
		for _, w1 := range words {
			for _, w2 := range words {
				pairs = append(pairs, [2]string{w1, w2})
			}
		}
	}
	return pairs
}

func (c *Classifier) discarded(s string) bool {
	_, ok := c.discard[s]
	return ok
}
