package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/bookloader/bookloader/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given and the file exists
const DefaultPath = "bookloader.yaml"

// Config is built once at start-up and passed to every component.
// Nothing reads it through globals and nothing mutates it after Load.
type Config struct {
	Sources   map[models.SourceID]bool `yaml:"sources"`
	Fields    map[models.Field]bool    `yaml:"fields"`
	Discard   []string                 `yaml:"discard"`
	Priority  models.SourceID          `yaml:"priority"`
	Threshold int                      `yaml:"threshold"`

	Categories []string             `yaml:"categories"`
	Aliases    map[string]AliasList `yaml:"aliases"`

	// SourceTimeout bounds each adapter call; zero waits for the slowest adapter
	SourceTimeout time.Duration `yaml:"source_timeout"`

	Endpoints Endpoints `yaml:"endpoints"`
	ImageDir  string    `yaml:"image_dir"`

	// ClassifyWordLimit caps the words an API classify request may carry;
	// zero disables the check
	ClassifyWordLimit int `yaml:"classify_word_limit"`

	GoogleAPIKey string `yaml:"-"`
	ISBNdbAPIKey string `yaml:"-"`
}

// Endpoints holds the base URL of each source
type Endpoints struct {
	Amazon    string `yaml:"amazon"`
	Goodreads string `yaml:"goodreads"`
	ISBNdb    string `yaml:"isbndb"`
	// Google overrides the Books API endpoint; empty uses the library default
	Google string `yaml:"google"`
}

// AliasList is a category's synonym list as written in the config file.
// A value that is not a list of strings is kept with Err set so the
// classifier can fall back to the category name instead of failing load.
type AliasList struct {
	Values []string
	Err    error
}

// UnmarshalYAML implements yaml.Unmarshaler
func (a *AliasList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		a.Err = fmt.Errorf("aliases must be a list, got %s at line %d", kindName(node.Kind), node.Line)
		return nil
	}
	var values []string
	if err := node.Decode(&values); err != nil {
		a.Err = fmt.Errorf("aliases must be a list of strings at line %d: %w", node.Line, err)
		return nil
	}
	a.Values = values
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (a AliasList) MarshalYAML() (interface{}, error) {
	return a.Values, nil
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "unknown"
	}
}

// Default returns the compiled defaults
func Default() *Config {
	cfg := &Config{
		Sources:   make(map[models.SourceID]bool, len(models.Sources)),
		Fields:    make(map[models.Field]bool, len(models.Fields)),
		Discard:   []string{"", "None", "none", "null", "N/A", "n/a", "-", "&", "and", "the", "of", "books", "general"},
		Priority:  models.SourceAmazon,
		Threshold: 85,
		Categories: []string{
			"Art & Photography",
			"Biography",
			"Business & Economics",
			"Children's Books",
			"Comics & Graphic Novels",
			"Crime & Thriller",
			"Fantasy",
			"Food & Drink",
			"Health & Wellbeing",
			"History",
			"Humour",
			"Music",
			"Poetry",
			"Politics",
			"Religion",
			"Romance",
			"Science",
			"Science Fiction",
			"Sport",
			"Technology",
			"Travel",
		},
		Aliases: map[string]AliasList{
			"Food & Drink":       {Values: []string{"cooking", "cookery", "recipes", "baking", "wine"}},
			"Crime & Thriller":   {Values: []string{"crime", "thriller", "mystery", "detective"}},
			"Health & Wellbeing": {Values: []string{"health", "fitness", "wellness"}},
			"Biography":          {Values: []string{"memoir", "autobiography", "biographies"}},
			"Travel":             {Values: []string{"travel writing", "guidebooks"}},
			"Science Fiction":    {Values: []string{"sci-fi", "science-fiction"}},
			"Children's Books":   {Values: []string{"juvenile fiction", "juvenile nonfiction", "children"}},
		},
		SourceTimeout: 30 * time.Second,
		Endpoints: Endpoints{
			Amazon:    "https://www.amazon.com",
			Goodreads: "https://www.goodreads.com",
			ISBNdb:    "https://api2.isbndb.com",
		},
		ImageDir:          "images",
		ClassifyWordLimit: 100,
	}
	for _, s := range models.Sources {
		cfg.Sources[s] = true
	}
	for _, f := range models.Fields {
		cfg.Fields[f] = true
	}
	return cfg
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		slog.Debug("Loaded config file", "path", path)
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.GoogleAPIKey = os.Getenv("GOOGLE_BOOKS_API_KEY")
	c.ISBNdbAPIKey = os.Getenv("ISBNDB_API_KEY")

	if v := os.Getenv("ISBNDB_URL"); v != "" {
		c.Endpoints.ISBNdb = v
	}
	if v := os.Getenv("BOOKLOADER_PRIORITY"); v != "" {
		c.Priority = models.SourceID(v)
	}
	if v := os.Getenv("BOOKLOADER_IMAGE_DIR"); v != "" {
		c.ImageDir = v
	}
	if v := os.Getenv("BOOKLOADER_THRESHOLD"); v != "" {
		threshold, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse BOOKLOADER_THRESHOLD: %w", err)
		}
		c.Threshold = threshold
	}
	return nil
}

// Validate rejects values the core cannot work with
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("threshold must be between 0 and 100, got %d", c.Threshold)
	}
	if c.ClassifyWordLimit < 0 {
		return fmt.Errorf("classify_word_limit must not be negative, got %d", c.ClassifyWordLimit)
	}
	if _, err := models.ParseSource(string(c.Priority)); err != nil {
		return fmt.Errorf("invalid priority: %w", err)
	}
	for s := range c.Sources {
		if _, err := models.ParseSource(string(s)); err != nil {
			return fmt.Errorf("invalid sources entry: %w", err)
		}
	}
	for f := range c.Fields {
		if _, err := models.ParseField(string(f)); err != nil {
			return fmt.Errorf("invalid fields entry: %w", err)
		}
	}
	return nil
}

// SourceEnabled reports whether the source toggle is on
func (c *Config) SourceEnabled(id models.SourceID) bool {
	return c.Sources[id]
}

// FieldRequested reports whether the field toggle is on
func (c *Config) FieldRequested(f models.Field) bool {
	return c.Fields[f]
}

// RequestedFields returns the requested fields in output order
func (c *Config) RequestedFields() []models.Field {
	var fields []models.Field
	for _, f := range models.Fields {
		if c.Fields[f] {
			fields = append(fields, f)
		}
	}
	return fields
}

// AliasesFor returns the configured aliases of category, nil when there is
// no entry, and the parse error when the entry was not a list.
func (c *Config) AliasesFor(category string) ([]string, error) {
	list, ok := c.Aliases[category]
	if !ok {
		return nil, nil
	}
	if list.Err != nil {
		return nil, list.Err
	}
	return list.Values, nil
}
