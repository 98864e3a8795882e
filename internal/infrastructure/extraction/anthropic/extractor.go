// Package anthropic implements biomedical entity extraction over the
// Anthropic Messages API.  The model proposes entity spans; everything it
// returns is re-validated here before it reaches the pipeline.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/turtacn/BioTerm-Annotator/internal/annotation"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/lookup"
	"github.com/turtacn/BioTerm-Annotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
)

const (
	apiVersion   = "2023-06-01"
	messagesPath = "/v1/messages"
)

const extractionPrompt = `Extract biomedical entities from the following text.

Text: %s

Extract entities of these types: %s

Return a JSON array of entities with:
- text: the extracted phrase exactly as it appears in the input
- start_pos: character start position in the original text (0-indexed)
- end_pos: character end position in the original text (exclusive)
- domain: one of disease, chemical, gene, phenotype, anatomy, or organism
- confidence: 0.0 to 1.0

Only return the JSON array, no other text.`

// Config holds the extractor tunables.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Retry     lookup.RetryPolicy
}

// Extractor calls the Messages API and parses its entity proposals.
type Extractor struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	retry      lookup.RetryPolicy
	logger     logging.Logger
}

var _ annotation.Extractor = (*Extractor)(nil)

// NewExtractor builds the extractor.  A missing API key is a construction
// error; the service decides at wiring time whether extraction exists at all.
func NewExtractor(cfg Config, logger logging.Logger) (*Extractor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New(errors.ErrCodeExtractionMissingKey, "anthropic api key is required").
			WithDetail("set BIOTERM_ANTHROPIC_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-haiku-4-5-20251001"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = lookup.DefaultRetryPolicy()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Extractor{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		retry:      cfg.Retry.Normalized(),
		logger:     logger.Named("anthropic"),
	}, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Extract asks the model for entity spans in text.  An empty domains slice
// means all valid domains.  A response the model garbles yields an empty
// entity list, not an error; only transport and API failures are errors.
func (e *Extractor) Extract(ctx context.Context, text string, domains []annotation.Domain) ([]annotation.Entity, error) {
	effective := domains
	if len(effective) == 0 {
		effective = annotation.ValidDomains()
	}
	names := make([]string, 0, len(effective))
	for _, d := range effective {
		if !d.IsValid() {
			return nil, errors.UnknownDomain(string(d))
		}
		names = append(names, string(d))
	}

	prompt := fmt.Sprintf(extractionPrompt, text, strings.Join(names, ", "))
	content, err := e.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return e.parseResponse(content, text), nil
}

// complete posts the prompt to the Messages API.  Transport failures retry
// with the same bounded backoff the registry clients use; HTTP status errors
// and malformed payloads are terminal.
func (e *Extractor) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(messagesRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExtractionFailed, "request encoding failed")
	}

	backoff := e.retry.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= e.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			e.logger.Warn("anthropic api transport failure, retrying",
				logging.Int("attempt", attempt),
				logging.Err(lastErr),
			)
			select {
			case <-ctx.Done():
				return "", errors.Wrap(ctx.Err(), errors.ErrCodeExtractionFailed, "anthropic request canceled")
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * e.retry.Multiplier)
			if backoff > e.retry.MaxBackoff {
				backoff = e.retry.MaxBackoff
			}
		}

		content, retryable, err := e.completeOnce(ctx, payload)
		if err == nil {
			return content, nil
		}
		if !retryable {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func (e *Extractor) completeOnce(ctx context.Context, payload []byte) (content string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+messagesPath, bytes.NewReader(payload))
	if err != nil {
		return "", false, errors.Wrap(err, errors.ErrCodeExtractionFailed, "request build failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", true, errors.Wrap(err, errors.ErrCodeExtractionFailed, "anthropic api is unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", false, errors.New(errors.ErrCodeExtractionRateLimited, "anthropic rate limit exceeded")
		}
		return "", false, errors.New(errors.ErrCodeExtractionFailed, fmt.Sprintf("anthropic api returned HTTP %d", resp.StatusCode))
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, errors.Wrap(err, errors.ErrCodeExtractionParseError, "anthropic api returned a malformed response")
	}
	if len(out.Content) == 0 {
		return "", false, nil
	}
	return out.Content[0].Text, false, nil
}

// rawEntity tolerates the model's loose typing: positions may be missing or
// fractional, confidence may be absent.
type rawEntity struct {
	Text       string   `json:"text"`
	StartPos   *float64 `json:"start_pos"`
	EndPos     *float64 `json:"end_pos"`
	Domain     string   `json:"domain"`
	Confidence float64  `json:"confidence"`
}

// parseResponse turns the model's reply into validated entities.  Offsets
// the model got wrong are repaired against the original text; entities whose
// text does not occur in it are dropped.
func (e *Extractor) parseResponse(content, originalText string) []annotation.Entity {
	content = stripFences(content)

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(content), &elements); err != nil {
		e.logger.Warn("failed to parse entity extraction response",
			logging.Err(err),
		)
		return nil
	}

	entities := make([]annotation.Entity, 0, len(elements))
	for _, el := range elements {
		var raw rawEntity
		if err := json.Unmarshal(el, &raw); err != nil {
			continue
		}
		domain, ok := annotation.ParseDomain(raw.Domain)
		if raw.Text == "" || !ok {
			continue
		}

		start, end := -1, -1
		if raw.StartPos != nil && raw.EndPos != nil {
			start = int(*raw.StartPos)
			end = int(*raw.EndPos)
		}

		entities = append(entities, annotation.Entity{
			Text:                 raw.Text,
			StartPos:             start,
			EndPos:               end,
			Domain:               domain,
			ExtractionConfidence: math.Round(raw.Confidence*10000) / 10000,
		})
	}

	return annotation.RepairOffsets(originalText, entities)
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}
