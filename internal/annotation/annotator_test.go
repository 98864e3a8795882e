package annotation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioTerm-Annotator/internal/testutil"
	apperrors "github.com/turtacn/BioTerm-Annotator/pkg/errors"
)

// fakeProvider is a scripted TermProvider with synonym capability.  It counts
// calls per stage so tests can assert the cascade short-circuits.
type fakeProvider struct {
	mu sync.Mutex

	name    string
	exact   []Candidate
	synonym []Candidate
	fuzzy   []Candidate

	exactErr   error
	synonymErr error
	fuzzyErr   error

	exactCalls   int
	synonymCalls int
	fuzzyCalls   int

	lastQuery      string
	lastOntologies []string
}

func (f *fakeProvider) Name() string {
	if f.name != "" {
		return f.name
	}
	return "fake"
}

func (f *fakeProvider) FindExact(_ context.Context, query string, ontologies []string) ([]Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exactCalls++
	f.lastQuery = query
	f.lastOntologies = ontologies
	return f.exact, f.exactErr
}

func (f *fakeProvider) FindBySynonym(_ context.Context, query string, ontologies []string) ([]Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synonymCalls++
	f.lastQuery = query
	f.lastOntologies = ontologies
	return f.synonym, f.synonymErr
}

func (f *fakeProvider) FuzzySearch(_ context.Context, query string, ontologies []string) ([]Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fuzzyCalls++
	f.lastQuery = query
	f.lastOntologies = ontologies
	return f.fuzzy, f.fuzzyErr
}

func (f *fakeProvider) calls() (exact, synonym, fuzzy int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exactCalls, f.synonymCalls, f.fuzzyCalls
}

// fakeFallback deliberately lacks FindBySynonym.
type fakeFallback struct {
	mu sync.Mutex

	exact []Candidate
	fuzzy []Candidate

	exactCalls int
	fuzzyCalls int
}

func (f *fakeFallback) Name() string { return "fallback" }

func (f *fakeFallback) FindExact(_ context.Context, _ string, _ []string) ([]Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exactCalls++
	return f.exact, nil
}

func (f *fakeFallback) FuzzySearch(_ context.Context, _ string, _ []string) ([]Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fuzzyCalls++
	return f.fuzzy, nil
}

// fakeExtractor scripts the extraction service.
type fakeExtractor struct {
	entities []Entity
	err      error

	lastText    string
	lastDomains []Domain
}

func (f *fakeExtractor) Extract(_ context.Context, text string, domains []Domain) ([]Entity, error) {
	f.lastText = text
	f.lastDomains = domains
	return f.entities, f.err
}

func candidate(termID, label, ontology string) Candidate {
	return Candidate{TermID: termID, Label: label, Ontology: ontology}
}

func newTestAnnotator(t *testing.T, primary TermProvider, fallback TermProvider, extractor Extractor) (*Annotator, *testutil.MockLogger) {
	t.Helper()
	logger := testutil.NewMockLogger()
	resolver := NewOntologyResolver(map[string][]string{
		"disease":  {"mondo", "doid", "hp"},
		"chemical": {"chebi", "drugbank"},
	})
	a, err := NewAnnotator(Config{BatchConcurrency: 4}, primary, fallback, extractor, resolver, logger)
	require.NoError(t, err)
	return a, logger
}

// ─────────────────────────────────────────────
// Construction
// ─────────────────────────────────────────────

func TestNewAnnotator_RequiresPrimary(t *testing.T) {
	t.Parallel()

	_, err := NewAnnotator(Config{}, nil, nil, nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAnnotationNoProviders, apperrors.GetCode(err))
}

func TestNewAnnotator_NilCollaboratorsTolerated(t *testing.T) {
	t.Parallel()

	a, err := NewAnnotator(Config{BatchConcurrency: -3}, &fakeProvider{}, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, a.HasFallback())
	assert.False(t, a.HasExtractor())
	assert.Equal(t, 1, a.batchConcurrency)
}

// ─────────────────────────────────────────────
// Cascade
// ─────────────────────────────────────────────

func TestAnnotate_ExactHitShortCircuits(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{
		exact:   []Candidate{candidate("MONDO:0005015", "diabetes mellitus", "mondo")},
		synonym: []Candidate{candidate("DOID:9351", "diabetes mellitus", "doid")},
		fuzzy:   []Candidate{candidate("HP:0000819", "Diabetes mellitus", "hp")},
	}
	fallback := &fakeFallback{exact: []Candidate{candidate("X:1", "diabetes mellitus", "x")}}
	a, _ := newTestAnnotator(t, primary, fallback, nil)

	res, err := a.Annotate(context.Background(), "diabetes mellitus", Options{Domain: DomainDisease, UseFallback: true})
	require.NoError(t, err)

	require.Len(t, res.Matches, 1)
	assert.Equal(t, "MONDO:0005015", res.Matches[0].TermID)
	assert.Equal(t, MatchExactLabel, res.Matches[0].MatchType)
	assert.Equal(t, 0.98, res.Matches[0].Confidence)

	exact, synonym, fuzzy := primary.calls()
	assert.Equal(t, 1, exact)
	assert.Zero(t, synonym, "synonym stage must not run after an exact hit")
	assert.Zero(t, fuzzy, "fuzzy stage must not run after an exact hit")
	assert.Zero(t, fallback.exactCalls, "fallback must not run after an exact hit")
}

func TestAnnotate_SynonymStage(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{
		synonym: []Candidate{candidate("CHEBI:15365", "acetylsalicylic acid", "chebi")},
		fuzzy:   []Candidate{candidate("CHEBI:999", "other", "chebi")},
	}
	a, _ := newTestAnnotator(t, primary, nil, nil)

	res, err := a.Annotate(context.Background(), "aspirin", Options{Domain: DomainChemical})
	require.NoError(t, err)

	require.Len(t, res.Matches, 1)
	assert.Equal(t, MatchSynonym, res.Matches[0].MatchType)
	assert.Equal(t, 0.85, res.Matches[0].Confidence)

	exact, synonym, fuzzy := primary.calls()
	assert.Equal(t, 1, exact)
	assert.Equal(t, 1, synonym)
	assert.Zero(t, fuzzy)
}

func TestAnnotate_FuzzyStage(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{
		fuzzy: []Candidate{candidate("MONDO:0004980", "atopic eczema", "mondo")},
	}
	a, _ := newTestAnnotator(t, primary, nil, nil)

	res, err := a.Annotate(context.Background(), "atopic exzema", Options{Domain: DomainDisease})
	require.NoError(t, err)

	require.Len(t, res.Matches, 1)
	assert.Equal(t, MatchFuzzy, res.Matches[0].MatchType)
	assert.Equal(t, 0.75, res.Matches[0].Confidence)
}

func TestAnnotate_FallbackExactThenFuzzy(t *testing.T) {
	t.Parallel()

	t.Run("fallback exact hit", func(t *testing.T) {
		t.Parallel()

		fallback := &fakeFallback{exact: []Candidate{candidate("NCIT:C2985", "Diabetes Mellitus", "ncit")}}
		a, _ := newTestAnnotator(t, &fakeProvider{}, fallback, nil)

		res, err := a.Annotate(context.Background(), "diabetes", Options{UseFallback: true})
		require.NoError(t, err)
		require.Len(t, res.Matches, 1)
		assert.Equal(t, MatchFallback, res.Matches[0].MatchType)
		assert.Equal(t, 0.70, res.Matches[0].Confidence)
		assert.Zero(t, fallback.fuzzyCalls, "fallback fuzzy must not run after a fallback exact hit")
	})

	t.Run("fallback fuzzy after empty fallback exact", func(t *testing.T) {
		t.Parallel()

		fallback := &fakeFallback{fuzzy: []Candidate{candidate("NCIT:C2985", "Diabetes Mellitus", "ncit")}}
		a, _ := newTestAnnotator(t, &fakeProvider{}, fallback, nil)

		res, err := a.Annotate(context.Background(), "diabetes", Options{UseFallback: true})
		require.NoError(t, err)
		require.Len(t, res.Matches, 1)
		assert.Equal(t, MatchFallback, res.Matches[0].MatchType)
		assert.Equal(t, 1, fallback.exactCalls)
		assert.Equal(t, 1, fallback.fuzzyCalls)
	})

	t.Run("fallback disabled by option", func(t *testing.T) {
		t.Parallel()

		fallback := &fakeFallback{exact: []Candidate{candidate("NCIT:C2985", "Diabetes Mellitus", "ncit")}}
		a, _ := newTestAnnotator(t, &fakeProvider{}, fallback, nil)

		res, err := a.Annotate(context.Background(), "diabetes", Options{UseFallback: false})
		require.NoError(t, err)
		assert.Empty(t, res.Matches)
		assert.Zero(t, fallback.exactCalls)
	})
}

func TestAnnotate_SynonymStageSkippedWithoutCapability(t *testing.T) {
	t.Parallel()

	// A primary without FindBySynonym goes straight from exact to fuzzy.
	primary := &fakeFallback{fuzzy: []Candidate{candidate("X:1", "thing", "x")}}
	a, _ := newTestAnnotator(t, primary, nil, nil)

	res, err := a.Annotate(context.Background(), "thing", Options{})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, MatchFuzzy, res.Matches[0].MatchType)
}

func TestAnnotate_NoMatchesAnywhere(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(t, &fakeProvider{}, &fakeFallback{}, nil)

	res, err := a.Annotate(context.Background(), "zzzz unknown term", Options{UseFallback: true})
	require.NoError(t, err, "an unmatched term is a valid empty result, not an error")
	assert.Empty(t, res.Matches)
	assert.Equal(t, "zzzz unknown term", res.InputText)
}

// ─────────────────────────────────────────────
// Degradation
// ─────────────────────────────────────────────

func TestAnnotate_ProviderErrorDegradesToNextStage(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{
		exactErr: apperrors.New(apperrors.ErrCodeLookupTimeout, "registry timed out"),
		synonym:  []Candidate{candidate("MONDO:1", "x", "mondo")},
	}
	a, logger := newTestAnnotator(t, primary, nil, nil)

	res, err := a.Annotate(context.Background(), "x", Options{})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, MatchSynonym, res.Matches[0].MatchType)
	assert.True(t, logger.HasMessageContaining("warn", "provider search failed"))
}

func TestAnnotate_AllStagesFailingYieldsEmptyResult(t *testing.T) {
	t.Parallel()

	boom := apperrors.New(apperrors.ErrCodeLookupUnavailable, "registry down")
	primary := &fakeProvider{exactErr: boom, synonymErr: boom, fuzzyErr: boom}
	a, logger := newTestAnnotator(t, primary, nil, nil)

	res, err := a.Annotate(context.Background(), "anything", Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.Len(t, logger.GetMessages(), 3)
}

// ─────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────

func TestAnnotate_Validation(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(t, &fakeProvider{}, nil, nil)

	tests := []struct {
		name string
		text string
		opts Options
		code apperrors.ErrorCode
	}{
		{"empty term", "", Options{}, apperrors.ErrCodeAnnotationEmptyTerm},
		{"whitespace only term", " \t\n ", Options{}, apperrors.ErrCodeAnnotationEmptyTerm},
		{"unknown domain", "aspirin", Options{Domain: "mineral"}, apperrors.ErrCodeAnnotationUnknownDomain},
		{"threshold below zero", "aspirin", Options{MinConfidence: -0.1}, apperrors.ErrCodeAnnotationInvalidThreshold},
		{"threshold above one", "aspirin", Options{MinConfidence: 1.5}, apperrors.ErrCodeAnnotationInvalidThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Annotate(context.Background(), tt.text, tt.opts)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.GetCode(err))
		})
	}
}

// ─────────────────────────────────────────────
// Normalization and ontology restriction plumbing
// ─────────────────────────────────────────────

func TestAnnotate_QueryNormalizedButInputPreserved(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{}
	a, _ := newTestAnnotator(t, primary, nil, nil)

	res, err := a.Annotate(context.Background(), "  diabetes \t mellitus ", Options{})
	require.NoError(t, err)

	assert.Equal(t, "diabetes mellitus", primary.lastQuery)
	assert.Equal(t, "  diabetes \t mellitus ", res.InputText)
}

func TestAnnotate_OntologyRestriction(t *testing.T) {
	t.Parallel()

	t.Run("domain default", func(t *testing.T) {
		t.Parallel()

		primary := &fakeProvider{}
		a, _ := newTestAnnotator(t, primary, nil, nil)

		_, err := a.Annotate(context.Background(), "diabetes", Options{Domain: DomainDisease})
		require.NoError(t, err)
		assert.Equal(t, []string{"mondo", "doid", "hp"}, primary.lastOntologies)
	})

	t.Run("preferred overrides domain", func(t *testing.T) {
		t.Parallel()

		primary := &fakeProvider{}
		a, _ := newTestAnnotator(t, primary, nil, nil)

		_, err := a.Annotate(context.Background(), "diabetes", Options{
			Domain:              DomainDisease,
			PreferredOntologies: []string{"EFO"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"efo"}, primary.lastOntologies)
	})

	t.Run("no restriction without domain", func(t *testing.T) {
		t.Parallel()

		primary := &fakeProvider{}
		a, _ := newTestAnnotator(t, primary, nil, nil)

		_, err := a.Annotate(context.Background(), "diabetes", Options{})
		require.NoError(t, err)
		assert.Nil(t, primary.lastOntologies)
	})
}

// ─────────────────────────────────────────────
// Fusion
// ─────────────────────────────────────────────

func TestFuse_DedupFirstWins(t *testing.T) {
	t.Parallel()

	first := NewMatch(Candidate{TermID: "MONDO:1", Label: "first", Ontology: "mondo"}, MatchExactLabel)
	dup := NewMatch(Candidate{TermID: "MONDO:1", Label: "duplicate", Ontology: "mondo"}, MatchExactLabel)
	other := NewMatch(Candidate{TermID: "DOID:1", Label: "first", Ontology: "doid"}, MatchExactLabel)

	out := fuse([]Match{first, dup, other}, 0)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Label, "first occurrence wins")
	assert.Equal(t, "DOID:1", out[1].TermID, "same term id in another ontology is distinct")
}

func TestFuse_EmptyTermIDFallsBackToLabelKey(t *testing.T) {
	t.Parallel()

	a := NewMatch(Candidate{Label: "thing", Ontology: "x"}, MatchFuzzy)
	b := NewMatch(Candidate{Label: "thing", Ontology: "x"}, MatchFuzzy)
	c := NewMatch(Candidate{Label: "other", Ontology: "x"}, MatchFuzzy)

	out := fuse([]Match{a, b, c}, 0)
	assert.Len(t, out, 2)
}

func TestFuse_MinConfidenceFilter(t *testing.T) {
	t.Parallel()

	high := NewMatch(Candidate{TermID: "A:1", Ontology: "a"}, MatchExactLabel)
	low := NewMatch(Candidate{TermID: "B:1", Ontology: "b"}, MatchFallback)

	out := fuse([]Match{high, low}, 0.8)
	require.Len(t, out, 1)
	assert.Equal(t, "A:1", out[0].TermID)

	out = fuse([]Match{low}, 0.70)
	assert.Len(t, out, 1, "threshold is inclusive")
}

func TestFuse_StableDescendingOrder(t *testing.T) {
	t.Parallel()

	m1 := NewMatch(Candidate{TermID: "A:1", Ontology: "a"}, MatchFuzzy)
	m2 := NewMatch(Candidate{TermID: "B:1", Ontology: "b"}, MatchExactLabel)
	m3 := NewMatch(Candidate{TermID: "C:1", Ontology: "c"}, MatchFuzzy)

	out := fuse([]Match{m1, m2, m3}, 0)
	require.Len(t, out, 3)
	assert.Equal(t, "B:1", out[0].TermID)
	assert.Equal(t, "A:1", out[1].TermID, "equal-confidence matches keep their relative order")
	assert.Equal(t, "C:1", out[2].TermID)
}

// ─────────────────────────────────────────────
// Batch
// ─────────────────────────────────────────────

func TestAnnotateBatch_ResultsMatchInputOrder(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{exact: []Candidate{candidate("MONDO:1", "hit", "mondo")}}
	a, _ := newTestAnnotator(t, primary, nil, nil)

	texts := []string{"alpha", "beta", "alpha", "gamma"}
	results, err := a.AnnotateBatch(context.Background(), texts, Options{})
	require.NoError(t, err)
	require.Len(t, results, len(texts))

	for i, r := range results {
		require.NotNil(t, r, "result %d", i)
		assert.Equal(t, texts[i], r.InputText, "duplicate inputs each get their own result")
		assert.Len(t, r.Matches, 1)
	}
}

func TestAnnotateBatch_Validation(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(t, &fakeProvider{}, nil, nil)

	_, err := a.AnnotateBatch(context.Background(), nil, Options{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAnnotationEmptyTerm, apperrors.GetCode(err))

	_, err = a.AnnotateBatch(context.Background(), []string{"ok", "  "}, Options{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAnnotationEmptyTerm, apperrors.GetCode(err))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Detail, "index=1")
}

func TestAnnotateBatch_ValidatesBeforeAnyProviderCall(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{}
	a, _ := newTestAnnotator(t, primary, nil, nil)

	_, err := a.AnnotateBatch(context.Background(), []string{"good", ""}, Options{})
	require.Error(t, err)

	exact, _, _ := primary.calls()
	assert.Zero(t, exact)
}

// ─────────────────────────────────────────────
// Free-text annotation
// ─────────────────────────────────────────────

func TestAnnotateText_ExtractRepairAnnotate(t *testing.T) {
	t.Parallel()

	text := "Patient has diabetes and was given aspirin"
	extractor := &fakeExtractor{entities: []Entity{
		// Wrong offsets, repairable.
		{Text: "diabetes", StartPos: 99, EndPos: 107, Domain: DomainDisease, ExtractionConfidence: 0.95},
		// Not present in the text at all, must be discarded.
		{Text: "hypertension", StartPos: 0, EndPos: 12, Domain: DomainDisease, ExtractionConfidence: 0.9},
		// Correct offsets.
		{Text: "aspirin", StartPos: 35, EndPos: 42, Domain: DomainChemical, ExtractionConfidence: 0.97},
	}}
	primary := &fakeProvider{exact: []Candidate{candidate("X:1", "hit", "x")}}
	a, _ := newTestAnnotator(t, primary, nil, extractor)

	out, err := a.AnnotateText(context.Background(), text, ExtractOptions{})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "diabetes", out[0].Text)
	assert.Equal(t, 12, out[0].StartPos)
	assert.Equal(t, 20, out[0].EndPos)
	assert.Len(t, out[0].Matches, 1)

	assert.Equal(t, "aspirin", out[1].Text)
	assert.Equal(t, 35, out[1].StartPos)
	assert.Len(t, out[1].Matches, 1)
}

func TestAnnotateText_PerDomainOntologyOverride(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{entities: []Entity{
		{Text: "aspirin", StartPos: 0, EndPos: 7, Domain: DomainChemical, ExtractionConfidence: 0.9},
	}}
	primary := &fakeProvider{}
	a, _ := newTestAnnotator(t, primary, nil, extractor)

	_, err := a.AnnotateText(context.Background(), "aspirin therapy", ExtractOptions{
		PerDomainOntologies: map[Domain][]string{DomainChemical: {"drugbank"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"drugbank"}, primary.lastOntologies)
}

func TestAnnotateText_DomainsForwardedToExtractor(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{}
	a, _ := newTestAnnotator(t, &fakeProvider{}, nil, extractor)

	out, err := a.AnnotateText(context.Background(), "some clinical note", ExtractOptions{
		Domains: []Domain{DomainDisease, DomainChemical},
	})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, []Domain{DomainDisease, DomainChemical}, extractor.lastDomains)
}

func TestAnnotateText_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()

		a, _ := newTestAnnotator(t, &fakeProvider{}, nil, &fakeExtractor{})
		_, err := a.AnnotateText(context.Background(), "  ", ExtractOptions{})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeExtractionInvalidInput, apperrors.GetCode(err))
	})

	t.Run("extractor not configured", func(t *testing.T) {
		t.Parallel()

		a, _ := newTestAnnotator(t, &fakeProvider{}, nil, nil)
		_, err := a.AnnotateText(context.Background(), "text", ExtractOptions{})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeExtractionMissingKey, apperrors.GetCode(err))
	})

	t.Run("invalid requested domain", func(t *testing.T) {
		t.Parallel()

		extractor := &fakeExtractor{}
		a, _ := newTestAnnotator(t, &fakeProvider{}, nil, extractor)
		_, err := a.AnnotateText(context.Background(), "text", ExtractOptions{Domains: []Domain{"mineral"}})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeAnnotationUnknownDomain, apperrors.GetCode(err))
		assert.Empty(t, extractor.lastText, "extractor must not be called with an invalid domain")
	})

	t.Run("extractor failure propagates", func(t *testing.T) {
		t.Parallel()

		boom := apperrors.New(apperrors.ErrCodeExtractionFailed, "model call failed")
		a, _ := newTestAnnotator(t, &fakeProvider{}, nil, &fakeExtractor{err: boom})
		_, err := a.AnnotateText(context.Background(), "text", ExtractOptions{})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeExtractionFailed, apperrors.GetCode(err))
	})
}

// ─────────────────────────────────────────────
// End to end over fakes
// ─────────────────────────────────────────────

func TestAnnotate_DiabetesMellitusScenario(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{exact: []Candidate{{
		TermID:   "MONDO:0005015",
		Label:    "diabetes mellitus",
		Ontology: "mondo",
		IRI:      "http://purl.obolibrary.org/obo/MONDO_0005015",
		Synonyms: []string{"DM"},
	}}}
	a, _ := newTestAnnotator(t, primary, &fakeFallback{}, nil)

	res, err := a.Annotate(context.Background(), "diabetes mellitus", Options{
		Domain:        DomainDisease,
		UseFallback:   true,
		MinConfidence: 0.7,
	})
	require.NoError(t, err)

	require.Len(t, res.Matches, 1)
	m := res.Matches[0]
	assert.Equal(t, "MONDO:0005015", m.TermID)
	assert.Equal(t, MatchExactLabel, m.MatchType)
	assert.Equal(t, 0.98, m.Confidence)
	assert.Equal(t, []string{"mondo", "doid", "hp"}, primary.lastOntologies)
}
