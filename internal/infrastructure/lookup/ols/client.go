// Package ols implements the primary term provider against the EBI Ontology
// Lookup Service (OLS4) search API.
package ols

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/BioTerm-Annotator/internal/annotation"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/lookup"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
)

// fieldList must be sent on every search: OLS4 omits synonym and description
// data unless the fields are requested explicitly.
const fieldList = "id,iri,label,ontology_name,description,synonym,obo_xref,short_form,obo_id"

// Config holds the OLS client tunables.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxResults int
	Retry      lookup.RetryPolicy
}

// Client talks to the OLS4 search endpoint.  It satisfies both the primary
// provider contract and the synonym capability.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxResults int
	retry      lookup.RetryPolicy
	logger     logging.Logger
}

var _ annotation.TermProvider = (*Client)(nil)
var _ annotation.SynonymSearcher = (*Client)(nil)

// NewClient builds an OLS client.
func NewClient(cfg Config, logger logging.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "ols base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = lookup.DefaultRetryPolicy()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		maxResults: cfg.MaxResults,
		retry:      cfg.Retry,
		logger:     logger.Named("ols"),
	}, nil
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string { return "ols" }

// searchResponse mirrors the Solr-style OLS payload.
type searchResponse struct {
	Response struct {
		NumFound int   `json:"numFound"`
		Docs     []doc `json:"docs"`
	} `json:"response"`
}

type doc struct {
	ID          string              `json:"id"`
	IRI         string              `json:"iri"`
	Label       string              `json:"label"`
	Ontology    string              `json:"ontology_name"`
	Description lookup.StringOrList `json:"description"`
	Synonym     lookup.StringOrList `json:"synonym"`
	OboXref     []oboXref           `json:"obo_xref"`
	ShortForm   string              `json:"short_form"`
	OboID       string              `json:"obo_id"`
}

type oboXref struct {
	Database string `json:"database"`
	ID       string `json:"id"`
}

func (c *Client) search(ctx context.Context, query string, ontologies []string, exact bool) ([]doc, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("rows", strconv.Itoa(c.maxResults))
	params.Set("fieldList", fieldList)
	if len(ontologies) > 0 {
		params.Set("ontology", strings.Join(ontologies, ","))
	}
	if exact {
		params.Set("exact", "true")
	}

	var out searchResponse
	err := lookup.GetJSON(ctx, c.httpClient, "OLS", c.baseURL+"/search?"+params.Encode(), nil, &out, c.retry)
	if err != nil {
		return nil, lookup.AsAppError("OLS", err)
	}
	return out.Response.Docs, nil
}

// toCandidate normalizes a raw OLS doc.
func toCandidate(d doc) annotation.Candidate {
	termID := d.OboID
	if termID == "" {
		termID = d.ShortForm
	}

	var definition string
	if len(d.Description) > 0 {
		definition = d.Description[0]
	}

	var xrefs map[string]string
	for _, x := range d.OboXref {
		db := strings.ToLower(x.Database)
		if db == "" || x.ID == "" {
			continue
		}
		if xrefs == nil {
			xrefs = make(map[string]string)
		}
		xrefs[db] = strings.ToUpper(db) + ":" + x.ID
	}

	return annotation.Candidate{
		TermID:          termID,
		Label:           d.Label,
		Ontology:        d.Ontology,
		IRI:             d.IRI,
		Definition:      definition,
		Synonyms:        []string(d.Synonym),
		CrossReferences: xrefs,
	}
}

// FindExact returns candidates whose preferred label equals the query,
// case-insensitively.  OLS's exact flag matches across several fields, so
// the label is re-checked locally.
func (c *Client) FindExact(ctx context.Context, query string, ontologies []string) ([]annotation.Candidate, error) {
	docs, err := c.search(ctx, query, ontologies, true)
	if err != nil {
		return nil, err
	}
	var out []annotation.Candidate
	for _, d := range docs {
		if strings.EqualFold(d.Label, query) {
			out = append(out, toCandidate(d))
		}
	}
	return out, nil
}

// FindBySynonym returns candidates with a synonym equal to the query whose
// label differs from it; label hits belong to the exact stage.
func (c *Client) FindBySynonym(ctx context.Context, query string, ontologies []string) ([]annotation.Candidate, error) {
	docs, err := c.search(ctx, query, ontologies, false)
	if err != nil {
		return nil, err
	}
	var out []annotation.Candidate
	for _, d := range docs {
		if strings.EqualFold(d.Label, query) {
			continue
		}
		for _, s := range d.Synonym {
			if strings.EqualFold(s, query) {
				out = append(out, toCandidate(d))
				break
			}
		}
	}
	return out, nil
}

// FuzzySearch returns OLS's relevance-ranked results unfiltered.
func (c *Client) FuzzySearch(ctx context.Context, query string, ontologies []string) ([]annotation.Candidate, error) {
	docs, err := c.search(ctx, query, ontologies, false)
	if err != nil {
		return nil, err
	}
	out := make([]annotation.Candidate, 0, len(docs))
	for _, d := range docs {
		out = append(out, toCandidate(d))
	}
	return out, nil
}
