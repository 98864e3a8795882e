// Package annotation implements the multi-stage biomedical term matching
// pipeline: domain-to-ontology resolution, the short-circuiting match cascade
// across term providers, result fusion, extraction offset repair, and bounded
// batch orchestration.
package annotation

import "sort"

// MatchType identifies the cascade stage that produced a match.  Each stage
// carries a fixed confidence score; the literal values live only here so the
// monotonicity of the cascade stays structurally obvious.
type MatchType string

const (
	// MatchExactLabel is stage 1: the candidate's preferred label equals the
	// query (case-insensitive).
	MatchExactLabel MatchType = "exact_label"

	// MatchSynonym is stage 2: one of the candidate's synonyms equals the
	// query while its label does not.
	MatchSynonym MatchType = "synonym"

	// MatchFuzzy is stage 3: the primary registry's relevance search.
	MatchFuzzy MatchType = "fuzzy"

	// MatchFallback is stage 4: any hit from the fallback registry,
	// exact or fuzzy.  The two branches share one confidence by design of
	// the original pipeline; the distinction is intentionally not carried.
	MatchFallback MatchType = "fallback"
)

// Confidence returns the fixed score assigned to matches of this type.
// Unknown types score zero so they never survive a confidence floor.
func (t MatchType) Confidence() float64 {
	switch t {
	case MatchExactLabel:
		return 0.98
	case MatchSynonym:
		return 0.85
	case MatchFuzzy:
		return 0.75
	case MatchFallback:
		return 0.70
	default:
		return 0
	}
}

// Candidate is a provider-normalized term record.  Candidates are produced
// fresh per provider call, are request-scoped, and carry no cross-call
// identity.
type Candidate struct {
	// TermID is the ontology-qualified identifier (e.g. "MONDO:0005015").
	// May be empty when the registry record carries no stable identifier.
	TermID string `json:"term_id"`

	// Label is the preferred display string.
	Label string `json:"label"`

	// Ontology is the short ontology code, lowercase (e.g. "mondo").
	Ontology string `json:"ontology"`

	// IRI is the full term IRI when the registry provides one.
	IRI string `json:"iri,omitempty"`

	// Definition is optional descriptive text.
	Definition string `json:"definition,omitempty"`

	// Synonyms is the ordered synonym list.  nil means the registry returned
	// no synonym information, which is never treated as a wildcard match.
	Synonyms []string `json:"synonyms,omitempty"`

	// CrossReferences maps an external database name (lowercase) to a
	// qualified identifier in that database.
	CrossReferences map[string]string `json:"cross_references,omitempty"`
}

// Match is a Candidate that survived a cascade stage, tagged with the stage
// and its fixed confidence.
type Match struct {
	Candidate
	MatchType  MatchType `json:"match_type"`
	Confidence float64   `json:"confidence"`
}

// NewMatch tags a candidate with the given stage and its fixed confidence.
func NewMatch(c Candidate, t MatchType) Match {
	return Match{Candidate: c, MatchType: t, Confidence: t.Confidence()}
}

// Result pairs a query term with its fused match list, ordered by descending
// confidence with no duplicate dedup keys.
type Result struct {
	InputText string  `json:"input_text"`
	Matches   []Match `json:"matches"`
}

// Entity is a span extracted from free text by the extraction service.
// Offsets are byte positions into the original UTF-8 text, end exclusive.
// Invariant for accepted entities: originalText[StartPos:EndPos] == Text.
type Entity struct {
	Text                 string  `json:"text"`
	StartPos             int     `json:"start_pos"`
	EndPos               int     `json:"end_pos"`
	Domain               Domain  `json:"domain"`
	ExtractionConfidence float64 `json:"extraction_confidence"`
}

// AnnotatedEntity is an extracted entity together with the matches produced
// by running its text through the single-term pipeline.
type AnnotatedEntity struct {
	Entity
	Matches []Match `json:"matches"`
}

// Domain is a coarse biomedical category used to narrow which ontologies are
// searched.  The set is closed.
type Domain string

const (
	DomainDisease   Domain = "disease"
	DomainChemical  Domain = "chemical"
	DomainGene      Domain = "gene"
	DomainPhenotype Domain = "phenotype"
	DomainAnatomy   Domain = "anatomy"
	DomainOrganism  Domain = "organism"
)

var validDomains = map[Domain]bool{
	DomainDisease:   true,
	DomainChemical:  true,
	DomainGene:      true,
	DomainPhenotype: true,
	DomainAnatomy:   true,
	DomainOrganism:  true,
}

// IsValid reports whether d belongs to the closed domain set.
func (d Domain) IsValid() bool { return validDomains[d] }

func (d Domain) String() string { return string(d) }

// ParseDomain validates a caller-supplied domain label at the boundary.
// The empty string is not a domain; callers express "no domain" by omission.
func ParseDomain(s string) (Domain, bool) {
	d := Domain(s)
	if validDomains[d] {
		return d, true
	}
	return "", false
}

// ValidDomains returns the closed domain set in stable sorted order.
func ValidDomains() []Domain {
	out := make([]Domain, 0, len(validDomains))
	for d := range validDomains {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
