package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
	"github.com/turtacn/BioTerm-Annotator/pkg/types"
)

// AnnotateOptions tunes a single- or multi-term annotation request.
// Nil pointer fields defer to the server's configured defaults.
type AnnotateOptions struct {
	Domain        string
	Ontologies    []string
	UseFallback   *bool
	MinConfidence *float64
}

// ExtractOptions tunes an extract-and-annotate request.
type ExtractOptions struct {
	Domains       []string
	UseFallback   *bool
	MinConfidence *float64
}

// Annotate runs one term through the matching cascade.
func (c *Client) Annotate(ctx context.Context, text string, opts *AnnotateOptions) (*types.AnnotationResult, error) {
	if text == "" {
		return nil, errors.New(errors.ErrCodeAnnotationEmptyTerm, "text is required")
	}
	results, err := c.AnnotateBatch(ctx, []string{text}, opts)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("server returned no result for the term")
	}
	return &results[0], nil
}

// AnnotateBatch annotates several terms under one option set.  Results are
// positional: results[i] corresponds to texts[i].
func (c *Client) AnnotateBatch(ctx context.Context, texts []string, opts *AnnotateOptions) ([]types.AnnotationResult, error) {
	if len(texts) == 0 {
		return nil, errors.New(errors.ErrCodeAnnotationEmptyTerm, "texts must contain at least one term")
	}
	req := types.AnnotateRequest{Texts: types.TextList(texts)}
	if opts != nil {
		req.Domain = opts.Domain
		req.Ontologies = opts.Ontologies
		req.UseFallback = opts.UseFallback
		req.MinConfidence = opts.MinConfidence
	}

	var results []types.AnnotationResult
	if err := c.post(ctx, "/api/v1/annotate", req, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ExtractAnnotate extracts biomedical entities from free text and annotates
// each extracted span.
func (c *Client) ExtractAnnotate(ctx context.Context, text string, opts *ExtractOptions) (*types.ExtractResult, error) {
	if text == "" {
		return nil, errors.New(errors.ErrCodeExtractionInvalidInput, "text is required")
	}
	req := types.ExtractRequest{Text: text}
	if opts != nil {
		req.Domains = opts.Domains
		req.UseFallback = opts.UseFallback
		req.MinConfidence = opts.MinConfidence
	}

	var result types.ExtractResult
	if err := c.post(ctx, "/api/v1/extract", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Domains lists the supported domains and their default ontologies.
func (c *Client) Domains(ctx context.Context) ([]types.DomainInfo, error) {
	var domains []types.DomainInfo
	if err := c.get(ctx, "/api/v1/domains", &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// Health probes the server's readiness endpoint.  A degraded server is data,
// not an error: the returned status carries the per-component breakdown for
// both 200 and 503 responses.
func (c *Client) Health(ctx context.Context) (*types.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/readyz", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, decodeAPIError(resp.StatusCode, body, "")
	}

	var envelope types.APIResponse[types.HealthStatus]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	return &envelope.Data, nil
}
