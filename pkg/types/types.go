// Package types defines the public wire DTOs shared by the HTTP handlers,
// the Go SDK, and the CLI output layer.  Field shapes mirror the annotation
// pipeline's types but carry no behavior; this package must stay importable
// by external consumers without dragging in internal packages.
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// TextList accepts either a single JSON string or an array of strings, the
// way the original annotate surface does.  It always marshals as an array.
type TextList []string

func (t *TextList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = TextList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*t = TextList(many)
		return nil
	}
	return fmt.Errorf("texts must be a string or an array of strings")
}

// AnnotateRequest is the POST /api/v1/annotate body.  UseFallback and
// MinConfidence are pointers so the server can distinguish "absent" from the
// zero value and apply its configured defaults.
type AnnotateRequest struct {
	Texts         TextList `json:"texts"`
	Domain        string   `json:"domain,omitempty"`
	Ontologies    []string `json:"ontologies,omitempty"`
	UseFallback   *bool    `json:"use_fallback,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
}

// Match is one ontology term matched to an input.
type Match struct {
	TermID          string            `json:"term_id"`
	Label           string            `json:"label"`
	Ontology        string            `json:"ontology"`
	IRI             string            `json:"iri,omitempty"`
	Definition      string            `json:"definition,omitempty"`
	Synonyms        []string          `json:"synonyms,omitempty"`
	CrossReferences map[string]string `json:"cross_references,omitempty"`
	MatchType       string            `json:"match_type"`
	Confidence      float64           `json:"confidence"`
}

// AnnotationResult pairs one input term with its matches, ordered by
// descending confidence.
type AnnotationResult struct {
	InputText string  `json:"input_text"`
	Matches   []Match `json:"matches"`
}

// ExtractRequest is the POST /api/v1/extract body.
type ExtractRequest struct {
	Text          string   `json:"text"`
	Domains       []string `json:"domains,omitempty"`
	UseFallback   *bool    `json:"use_fallback,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
}

// AnnotatedEntity is an extracted text span with its annotation matches.
// Offsets are byte positions into the request's original text, end exclusive.
type AnnotatedEntity struct {
	Text                 string  `json:"text"`
	StartPos             int     `json:"start_pos"`
	EndPos               int     `json:"end_pos"`
	Domain               string  `json:"domain"`
	ExtractionConfidence float64 `json:"extraction_confidence"`
	Matches              []Match `json:"matches"`
}

// ExtractResult carries the extraction response.
type ExtractResult struct {
	Text     string            `json:"text"`
	Entities []AnnotatedEntity `json:"entities"`
}

// DomainInfo pairs a domain label with its default ontology list.
type DomainInfo struct {
	Domain     string   `json:"domain"`
	Ontologies []string `json:"ontologies,omitempty"`
}

// ErrorDetail provides structured error information for API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the envelope wrapping every API response body.
type APIResponse[T any] struct {
	Success   bool         `json:"success"`
	Data      T            `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id"`
	Timestamp time.Time    `json:"timestamp"`
}

// HealthStatus reports per-component readiness.
type HealthStatus struct {
	Status     string          `json:"status"` // "up" | "degraded"
	Components map[string]bool `json:"components,omitempty"`
}
