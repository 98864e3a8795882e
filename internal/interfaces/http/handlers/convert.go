package handlers

import (
	"github.com/turtacn/BioTerm-Annotator/internal/annotation"
	"github.com/turtacn/BioTerm-Annotator/pkg/types"
)

func toAPIMatch(m annotation.Match) types.Match {
	return types.Match{
		TermID:          m.TermID,
		Label:           m.Label,
		Ontology:        m.Ontology,
		IRI:             m.IRI,
		Definition:      m.Definition,
		Synonyms:        m.Synonyms,
		CrossReferences: m.CrossReferences,
		MatchType:       string(m.MatchType),
		Confidence:      m.Confidence,
	}
}

func toAPIMatches(matches []annotation.Match) []types.Match {
	out := make([]types.Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, toAPIMatch(m))
	}
	return out
}

func toAPIResult(r *annotation.Result) types.AnnotationResult {
	return types.AnnotationResult{
		InputText: r.InputText,
		Matches:   toAPIMatches(r.Matches),
	}
}

func toAPIResults(results []*annotation.Result) []types.AnnotationResult {
	out := make([]types.AnnotationResult, 0, len(results))
	for _, r := range results {
		out = append(out, toAPIResult(r))
	}
	return out
}

func toAPIEntities(entities []annotation.AnnotatedEntity) []types.AnnotatedEntity {
	out := make([]types.AnnotatedEntity, 0, len(entities))
	for _, e := range entities {
		out = append(out, types.AnnotatedEntity{
			Text:                 e.Text,
			StartPos:             e.StartPos,
			EndPos:               e.EndPos,
			Domain:               string(e.Domain),
			ExtractionConfidence: e.ExtractionConfidence,
			Matches:              toAPIMatches(e.Matches),
		})
	}
	return out
}
