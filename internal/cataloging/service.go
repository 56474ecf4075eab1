package cataloging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bookloader/bookloader/internal/classify"
	"github.com/bookloader/bookloader/internal/config"
	"github.com/bookloader/bookloader/internal/fetch"
	"github.com/bookloader/bookloader/internal/isbn"
	"github.com/bookloader/bookloader/internal/models"
	"github.com/bookloader/bookloader/internal/reconcile"
	"github.com/bookloader/bookloader/internal/sources"
)

// resolverFunc fills one field of rec from the collected candidates
type resolverFunc func(s *Service, result *fetch.Result, field models.Field, rec *models.Record)

// resolvers is the fixed field to resolver table. Categories are handled
// by the classifier.
var resolvers = map[models.Field]resolverFunc{
	models.FieldTitle:       resolveSingle,
	models.FieldAuthors:     resolveSingle,
	models.FieldPublisher:   resolveSingle,
	models.FieldBinding:     resolveSingle,
	models.FieldPublishDate: resolveSingle,
	models.FieldDescription: resolveList,
	models.FieldImage:       resolveList,
}

// Service assembles reconciled records for identifiers
type Service struct {
	fields       []models.Field
	categories   bool
	orchestrator *fetch.Orchestrator
	reconciler   *reconcile.Reconciler
	classifier   *classify.Classifier
	aliasErrors  []*classify.AliasError
	wordLimit    int
}

// NewService wires the orchestrator, reconciler and classifier from cfg
func NewService(cfg *config.Config, adapters []sources.Adapter) *Service {
	fields := cfg.RequestedFields()
	taxonomy, aliasErrors := classify.NewTaxonomy(cfg.Categories, cfg.AliasesFor)

	return &Service{
		fields:       fields,
		categories:   cfg.FieldRequested(models.FieldCategories),
		orchestrator: fetch.New(adapters, fields, cfg.SourceTimeout),
		reconciler:   reconcile.New(cfg.Discard, cfg.Priority),
		classifier:   classify.New(taxonomy, cfg.Discard, cfg.Threshold),
		aliasErrors:  aliasErrors,
		wordLimit:    cfg.ClassifyWordLimit,
	}
}

// Classifier returns the category classifier built from the configuration
func (s *Service) Classifier() *classify.Classifier {
	return s.classifier
}

// ClassifyWordLimit returns the most words a classify request may carry, zero
// for no limit
func (s *Service) ClassifyWordLimit() int {
	return s.wordLimit
}

// AliasErrors returns the categories whose aliases could not be loaded
func (s *Service) AliasErrors() []*classify.AliasError {
	return s.aliasErrors
}

// Lookup fetches, reconciles and classifies the book identified by id.
// The only error returned wraps isbn.ErrInvalid; every source or field
// failure is absorbed into a sparser record.
func (s *Service) Lookup(ctx context.Context, id string) (*models.Record, error) {
	clean := isbn.Clean(id)
	if err := isbn.Validate(clean); err != nil {
		return nil, fmt.Errorf("failed to look up %q: %w", id, err)
	}

	slog.Info("Looking up book", "isbn", clean)

	result := s.orchestrator.Collect(ctx, clean)
	rec := s.Assemble(result)

	slog.Info("Assembled record",
		"isbn", clean,
		"title", rec.Value(models.FieldTitle),
		"categories", len(rec.Categories),
		"failed_sources", len(result.Failures()))

	return rec, nil
}

// Assemble merges reconciled fields and classified categories for result.
// Reconciliation and classification run concurrently on disjoint parts of
// the record.
func (s *Service) Assemble(result *fetch.Result) *models.Record {
	rec := models.NewRecord(result.ISBN)

	var wg sync.WaitGroup
	if s.categories {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Categories = s.classifier.Classify(result.RawCategories())
		}()
	}

	for _, field := range s.fields {
		if resolve, ok := resolvers[field]; ok {
			resolve(s, result, field, rec)
		}
	}

	wg.Wait()
	return rec
}

func resolveSingle(s *Service, result *fetch.Result, field models.Field, rec *models.Record) {
	res := s.reconciler.Resolve(result.Candidates(field))
	rec.Values[field] = res.Value
	if res.Value != nil {
		rec.Sources[field] = res.Source
	}
	slog.Debug("Resolved field",
		"isbn", rec.ISBN,
		"field", field,
		"source", res.Source,
		"reason", res.Reason)
}

func resolveList(s *Service, result *fetch.Result, field models.Field, rec *models.Record) {
	rec.Lists[field] = s.reconciler.PassThrough(result.Candidates(field))
}
