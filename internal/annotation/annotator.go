package annotation

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
)

// Options tunes a single annotate call.  The zero value means: no domain
// restriction, no preferred ontologies, no fallback, accept every confidence.
// Request-level defaulting (UseFallback=true, MinConfidence=0.7) is the
// application layer's job.
type Options struct {
	// Domain narrows the ontology set via the resolver.  Empty means none.
	Domain Domain

	// PreferredOntologies overrides any domain-derived ontology list.
	PreferredOntologies []string

	// UseFallback enables stage 4 when a fallback provider is wired.
	UseFallback bool

	// MinConfidence drops matches scoring below it.  Must be in [0, 1].
	MinConfidence float64
}

// ExtractOptions tunes AnnotateText.
type ExtractOptions struct {
	// Domains restricts which entity kinds the extractor looks for.
	// Empty means all valid domains.
	Domains []Domain

	// PerDomainOntologies overrides the ontology list per entity domain.
	PerDomainOntologies map[Domain][]string

	UseFallback   bool
	MinConfidence float64
}

// Config holds the annotator's construction-time tunables.
type Config struct {
	// BatchConcurrency bounds the number of terms annotated in parallel by
	// AnnotateBatch and AnnotateText.  Values below 1 are raised to 1.
	BatchConcurrency int
}

// Annotator runs the four-stage matching cascade and fuses the results.
//
// Stage order: exact label (primary), synonym (primary, when the provider
// has the capability), fuzzy (primary), fallback exact-then-fuzzy.  A stage
// runs only when every earlier stage produced zero matches.
type Annotator struct {
	primary          TermProvider
	fallback         TermProvider
	extractor        Extractor
	resolver         *OntologyResolver
	logger           logging.Logger
	batchConcurrency int
}

// NewAnnotator wires the pipeline.  fallback and extractor may be nil; the
// corresponding stages and operations are then structurally absent.
func NewAnnotator(cfg Config, primary TermProvider, fallback TermProvider, extractor Extractor, resolver *OntologyResolver, logger logging.Logger) (*Annotator, error) {
	if primary == nil {
		return nil, errors.New(errors.ErrCodeAnnotationNoProviders, "primary term provider is required")
	}
	if resolver == nil {
		resolver = NewOntologyResolver(nil)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	concurrency := cfg.BatchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Annotator{
		primary:          primary,
		fallback:         fallback,
		extractor:        extractor,
		resolver:         resolver,
		logger:           logger.Named("annotator"),
		batchConcurrency: concurrency,
	}, nil
}

// HasFallback reports whether a fallback provider is wired.
func (a *Annotator) HasFallback() bool { return a.fallback != nil }

// HasExtractor reports whether an extraction service is wired.
func (a *Annotator) HasExtractor() bool { return a.extractor != nil }

// Resolver exposes the resolver for the domains listing surface.
func (a *Annotator) Resolver() *OntologyResolver { return a.resolver }

// Annotate runs a single term through the cascade and returns its fused
// match list.  Provider failures degrade to empty stage results and never
// abort the request; only input validation produces an error.
func (a *Annotator) Annotate(ctx context.Context, text string, opts Options) (*Result, error) {
	query := NormalizeQuery(text)
	if query == "" {
		return nil, errors.New(errors.ErrCodeAnnotationEmptyTerm, "term must not be empty")
	}
	if opts.Domain != "" && !opts.Domain.IsValid() {
		return nil, errors.UnknownDomain(string(opts.Domain))
	}
	if opts.MinConfidence < 0 || opts.MinConfidence > 1 {
		return nil, errors.New(errors.ErrCodeAnnotationInvalidThreshold, "min_confidence must be in [0, 1]")
	}

	ontologies := a.resolver.Resolve(opts.Domain, opts.PreferredOntologies)

	var matches []Match

	// Stage 1: exact label.
	for _, c := range a.search(ctx, a.primary, "exact_label", query, ontologies, a.primary.FindExact) {
		matches = append(matches, NewMatch(c, MatchExactLabel))
	}

	// Stage 2: synonym, only when the provider has the capability.
	if len(matches) == 0 {
		if ss, ok := a.primary.(SynonymSearcher); ok {
			for _, c := range a.search(ctx, a.primary, "synonym", query, ontologies, ss.FindBySynonym) {
				matches = append(matches, NewMatch(c, MatchSynonym))
			}
		}
	}

	// Stage 3: primary fuzzy search.
	if len(matches) == 0 {
		for _, c := range a.search(ctx, a.primary, "fuzzy", query, ontologies, a.primary.FuzzySearch) {
			matches = append(matches, NewMatch(c, MatchFuzzy))
		}
	}

	// Stage 4: fallback registry, exact then fuzzy, one shared confidence.
	if len(matches) == 0 && opts.UseFallback && a.fallback != nil {
		cands := a.search(ctx, a.fallback, "fallback_exact", query, ontologies, a.fallback.FindExact)
		if len(cands) == 0 {
			cands = a.search(ctx, a.fallback, "fallback_fuzzy", query, ontologies, a.fallback.FuzzySearch)
		}
		for _, c := range cands {
			matches = append(matches, NewMatch(c, MatchFallback))
		}
	}

	matches = fuse(matches, opts.MinConfidence)

	return &Result{InputText: text, Matches: matches}, nil
}

type searchFunc func(ctx context.Context, query string, ontologies []string) ([]Candidate, error)

// search runs one provider query and degrades every failure to an empty
// candidate list with a warn log.
func (a *Annotator) search(ctx context.Context, p TermProvider, stage, query string, ontologies []string, fn searchFunc) []Candidate {
	cands, err := fn(ctx, query, ontologies)
	if err != nil {
		a.logger.Warn("provider search failed, degrading to empty result",
			logging.String("provider", p.Name()),
			logging.String("stage", stage),
			logging.String("query", query),
			logging.Err(err),
		)
		return nil
	}
	return cands
}

// fuse deduplicates, filters, and orders a stage's raw matches.
// Dedup key: "ontology:term_id", falling back to "ontology:label" when the
// term_id is empty; the first occurrence wins.  The label fallback can
// conflate distinct identically-labeled terms; kept for compatibility with
// the upstream registries' behavior.
func fuse(matches []Match, minConfidence float64) []Match {
	seen := make(map[string]bool, len(matches))
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		key := m.Ontology + ":" + m.TermID
		if m.TermID == "" {
			key = m.Ontology + ":" + m.Label
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		if m.Confidence < minConfidence {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// AnnotateBatch runs each text through the single-term pipeline concurrently,
// bounded by the configured concurrency.  Results correspond positionally to
// the inputs, including duplicate inputs.  The whole batch is validated
// before any provider call.
func (a *Annotator) AnnotateBatch(ctx context.Context, texts []string, opts Options) ([]*Result, error) {
	if len(texts) == 0 {
		return nil, errors.New(errors.ErrCodeAnnotationEmptyTerm, "batch must contain at least one term")
	}
	if opts.Domain != "" && !opts.Domain.IsValid() {
		return nil, errors.UnknownDomain(string(opts.Domain))
	}
	if opts.MinConfidence < 0 || opts.MinConfidence > 1 {
		return nil, errors.New(errors.ErrCodeAnnotationInvalidThreshold, "min_confidence must be in [0, 1]")
	}
	for i, t := range texts {
		if NormalizeQuery(t) == "" {
			return nil, errors.New(errors.ErrCodeAnnotationEmptyTerm, "batch terms must not be empty").
				WithDetail("index=" + strconv.Itoa(i))
		}
	}

	results := make([]*Result, len(texts))
	sem := make(chan struct{}, a.batchConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := a.Annotate(ctx, text, opts)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			results[i] = res
		}(i, text)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// AnnotateText extracts entities from free text, repairs their offsets
// against the original text, and annotates each surviving entity through the
// single-term pipeline concurrently.  Per-domain ontology overrides apply to
// the entity's own domain.
func (a *Annotator) AnnotateText(ctx context.Context, text string, opts ExtractOptions) ([]AnnotatedEntity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.ErrCodeExtractionInvalidInput, "text must not be empty")
	}
	if a.extractor == nil {
		return nil, errors.New(errors.ErrCodeExtractionMissingKey, "extraction service is not configured")
	}
	for _, d := range opts.Domains {
		if !d.IsValid() {
			return nil, errors.UnknownDomain(string(d))
		}
	}

	entities, err := a.extractor.Extract(ctx, text, opts.Domains)
	if err != nil {
		return nil, err
	}
	entities = RepairOffsets(text, entities)

	annotated := make([]AnnotatedEntity, len(entities))
	sem := make(chan struct{}, a.batchConcurrency)
	var wg sync.WaitGroup

	for i, ent := range entities {
		wg.Add(1)
		go func(i int, ent Entity) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, aerr := a.Annotate(ctx, ent.Text, Options{
				Domain:              ent.Domain,
				PreferredOntologies: opts.PerDomainOntologies[ent.Domain],
				UseFallback:         opts.UseFallback,
				MinConfidence:       opts.MinConfidence,
			})
			annotated[i] = AnnotatedEntity{Entity: ent}
			if aerr != nil {
				a.logger.Warn("entity annotation failed, returning entity without matches",
					logging.String("entity", ent.Text),
					logging.String("domain", string(ent.Domain)),
					logging.Err(aerr),
				)
				return
			}
			annotated[i].Matches = res.Matches
		}(i, ent)
	}
	wg.Wait()

	return annotated, nil
}
