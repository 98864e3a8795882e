// Package bioportal implements the fallback term provider against the NCBO
// BioPortal search API.  It deliberately does not implement the synonym
// capability: BioPortal search has no synonym-only query mode, so the synonym
// stage never consults it.
package bioportal

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

// acronymMap translates the lowercase ontology codes used everywhere else
// into BioPortal's uppercase acronyms.  Unmapped codes are uppercased as-is.
var acronymMap = map[string]string{
	"mondo":     "MONDO",
	"doid":      "DOID",
	"hp":        "HP",
	"chebi":     "CHEBI",
	"drugbank":  "DRUGBANK",
	"hgnc":      "HGNC",
	"ncbigene":  "NCBIGENE",
	"mp":        "MP",
	"uberon":    "UBERON",
	"fma":       "FMA",
	"ncbitaxon": "NCBITAXON",
}

// Config holds the BioPortal client tunables.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxResults int
	Retry      lookup.RetryPolicy
}

// Client talks to the BioPortal search endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxResults int
	retry      lookup.RetryPolicy
	logger     logging.Logger
}

var _ annotation.TermProvider = (*Client)(nil)

// NewClient builds a BioPortal client.  The API key is mandatory: a fallback
// configured without credentials is a deployment mistake, not a soft-degrade
// situation.
func NewClient(cfg Config, logger logging.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New(errors.ErrCodeLookupMissingAPIKey, "bioportal api key is required").
			WithDetail("set BIOTERM_BIOPORTAL_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "bioportal base url is required")
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
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
		retry:      cfg.Retry,
		logger:     logger.Named("bioportal"),
	}, nil
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string { return "bioportal" }

type searchResponse struct {
	Collection []item `json:"collection"`
}

type item struct {
	AtID       string              `json:"@id"`
	PrefLabel  string              `json:"prefLabel"`
	Synonym    lookup.StringOrList `json:"synonym"`
	Definition lookup.StringOrList `json:"definition"`
	Links      struct {
		Ontology string `json:"ontology"`
	} `json:"links"`
}

func acronyms(ontologies []string) []string {
	out := make([]string, 0, len(ontologies))
	for _, o := range ontologies {
		if a, ok := acronymMap[strings.ToLower(o)]; ok {
			out = append(out, a)
		} else {
			out = append(out, strings.ToUpper(o))
		}
	}
	return out
}

func (c *Client) search(ctx context.Context, query string, ontologies []string, exact bool) ([]item, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("pagesize", strconv.Itoa(c.maxResults))
	params.Set("display_links", "false")
	params.Set("display_context", "false")
	if len(ontologies) > 0 {
		params.Set("ontologies", strings.Join(acronyms(ontologies), ","))
	}
	if exact {
		params.Set("require_exact_match", "true")
	}

	header := http.Header{}
	header.Set("Authorization", "apikey token="+c.apiKey)

	var out searchResponse
	err := lookup.GetJSON(ctx, c.httpClient, "BioPortal", c.baseURL+"/search?"+params.Encode(), header, &out, c.retry)
	if err != nil {
		return nil, lookup.AsAppError("BioPortal", err)
	}
	return out.Collection, nil
}

// toCandidate normalizes a BioPortal record.  BioPortal identifies terms by
// full IRI; the CURIE is reconstructed from the IRI's last path or fragment
// segment.
func toCandidate(it item) annotation.Candidate {
	termID := it.AtID
	for _, sep := range []string{"/", "#"} {
		if i := strings.LastIndex(it.AtID, sep); i >= 0 && i+1 < len(it.AtID) {
			termID = strings.ReplaceAll(it.AtID[i+1:], "_", ":")
		}
	}

	ontology := ""
	if link := strings.TrimRight(it.Links.Ontology, "/"); link != "" {
		ontology = strings.ToLower(link[strings.LastIndex(link, "/")+1:])
	}

	var definition string
	if len(it.Definition) > 0 {
		definition = it.Definition[0]
	}

	return annotation.Candidate{
		TermID:     termID,
		Label:      it.PrefLabel,
		Ontology:   ontology,
		IRI:        it.AtID,
		Definition: definition,
		Synonyms:   []string(it.Synonym),
	}
}

// FindExact returns candidates whose preferred label equals the query,
// case-insensitively, re-checked locally on top of require_exact_match.
func (c *Client) FindExact(ctx context.Context, query string, ontologies []string) ([]annotation.Candidate, error) {
	items, err := c.search(ctx, query, ontologies, true)
	if err != nil {
		return nil, err
	}
	var out []annotation.Candidate
	for _, it := range items {
		if strings.EqualFold(it.PrefLabel, query) {
			out = append(out, toCandidate(it))
		}
	}
	return out, nil
}

// FuzzySearch returns BioPortal's relevance-ranked results unfiltered.
func (c *Client) FuzzySearch(ctx context.Context, query string, ontologies []string) ([]annotation.Candidate, error) {
	items, err := c.search(ctx, query, ontologies, false)
	if err != nil {
		return nil, err
	}
	out := make([]annotation.Candidate, 0, len(items))
	for _, it := range items {
		out = append(out, toCandidate(it))
	}
	return out, nil
}
