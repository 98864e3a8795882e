package annotation

import "context"

// TermProvider is the capability contract every term registry client must
// satisfy.  The pipeline queries providers only through this interface; the
// provider owns normalization, retries, and degradation to empty results.
type TermProvider interface {
	// Name identifies the provider in logs and metrics (e.g. "ols").
	Name() string

	// FindExact returns candidates whose preferred label equals query.
	// ontologies restricts the search when non-nil; nil means unrestricted.
	FindExact(ctx context.Context, query string, ontologies []string) ([]Candidate, error)

	// FuzzySearch returns relevance-ranked candidates for query.
	FuzzySearch(ctx context.Context, query string, ontologies []string) ([]Candidate, error)
}

// SynonymSearcher is the optional synonym-query capability.  The pipeline
// detects it with a type assertion; a provider that lacks it (the fallback
// registry) simply never participates in the synonym stage.
type SynonymSearcher interface {
	// FindBySynonym returns candidates that list query among their synonyms
	// while their preferred label differs from it.
	FindBySynonym(ctx context.Context, query string, ontologies []string) ([]Candidate, error)
}

// Extractor turns free text into entity spans tagged with a domain.
// Implementations parse and pre-filter the extraction service's response;
// offset verification and repair against the original text happen in this
// package (RepairOffsets).
type Extractor interface {
	Extract(ctx context.Context, text string, domains []Domain) ([]Entity, error)
}
