package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
	"github.com/turtacn/BioTerm-Annotator/pkg/types"
)

// envelope writes a success envelope around data.
func envelope(t *testing.T, w http.ResponseWriter, status int, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.APIResponse[json.RawMessage]{
		Success:   status < 400,
		Data:      raw,
		RequestID: "srv-req-1",
		Timestamp: time.Now().UTC(),
	})
}

func errorEnvelope(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.APIResponse[json.RawMessage]{
		Success:   false,
		Error:     &types.ErrorDetail{Code: code, Message: message},
		RequestID: "srv-req-err",
		Timestamp: time.Now().UTC(),
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

// ─── Construction ────────────────────────────────────────────────────────────

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewClient("")
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))

	_, err = NewClient("ftp://example.com")
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))

	c, err := NewClient("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
}

// ─── Request plumbing ────────────────────────────────────────────────────────

func TestDo_SetsStandardHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotRequestID, gotContentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")
		envelope(t, w, http.StatusOK, []types.DomainInfo{})
	})

	_, err := c.Domains(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bioterm-go-sdk/"+Version, gotUA)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotContentType)
}

func TestDo_DecodesEnvelopeData(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, http.StatusOK, []types.DomainInfo{
			{Domain: "disease", Ontologies: []string{"mondo", "doid"}},
		})
	})

	domains, err := c.Domains(context.Background())
	require.NoError(t, err)
	require.Len(t, domains, 1)
	assert.Equal(t, "disease", domains[0].Domain)
	assert.Equal(t, []string{"mondo", "doid"}, domains[0].Ontologies)
}

func TestDo_ClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		errorEnvelope(w, http.StatusBadRequest, "ANNOT_002", "unknown annotation domain")
	})

	_, err := c.AnnotateBatch(context.Background(), []string{"x"}, &AnnotateOptions{Domain: "protein"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "ANNOT_002", apiErr.Code)
	assert.Equal(t, "unknown annotation domain", apiErr.Message)
	assert.Equal(t, "srv-req-err", apiErr.RequestID)
	assert.True(t, apiErr.IsBadRequest())
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_ServerErrorRetriedThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			errorEnvelope(w, http.StatusInternalServerError, "COMMON_001", "internal server error")
			return
		}
		envelope(t, w, http.StatusOK, []types.AnnotationResult{{InputText: "diabetes"}})
	}, WithRetryWait(time.Millisecond, 5*time.Millisecond))

	results, err := c.AnnotateBatch(context.Background(), []string{"diabetes"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_RetriesExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		errorEnvelope(w, http.StatusBadGateway, "LOOKUP_001", "term lookup service unavailable")
	}, WithRetryMax(2), WithRetryWait(time.Millisecond, 2*time.Millisecond))

	_, err := c.Domains(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestDo_RateLimitHonorsRetryAfter(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			errorEnvelope(w, http.StatusTooManyRequests, "COMMON_007", "too many requests")
			return
		}
		envelope(t, w, http.StatusOK, []types.DomainInfo{})
	})

	start := time.Now()
	_, err := c.Domains(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestDo_ContextCancellationStopsRetries(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		errorEnvelope(w, http.StatusInternalServerError, "COMMON_001", "internal server error")
	}, WithRetryWait(time.Hour, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Domains(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// ─── API methods ─────────────────────────────────────────────────────────────

func TestAnnotate_SingleTerm(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/annotate", r.URL.Path)

		var req types.AnnotateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, types.TextList{"diabetes"}, req.Texts)
		assert.Equal(t, "disease", req.Domain)

		envelope(t, w, http.StatusOK, []types.AnnotationResult{{
			InputText: "diabetes",
			Matches: []types.Match{{
				TermID:     "MONDO:0005015",
				Label:      "diabetes mellitus",
				Ontology:   "mondo",
				MatchType:  "exact_label",
				Confidence: 0.98,
			}},
		}})
	})

	res, err := c.Annotate(context.Background(), "diabetes", &AnnotateOptions{Domain: "disease"})
	require.NoError(t, err)
	assert.Equal(t, "diabetes", res.InputText)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "MONDO:0005015", res.Matches[0].TermID)
}

func TestAnnotate_EmptyTermRejectedLocally(t *testing.T) {
	t.Parallel()

	c, err := NewClient("http://localhost:1")
	require.NoError(t, err)

	_, err = c.Annotate(context.Background(), "", nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAnnotationEmptyTerm))

	_, err = c.AnnotateBatch(context.Background(), nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAnnotationEmptyTerm))
}

func TestExtractAnnotate(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/extract", r.URL.Path)

		var req types.ExtractRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"disease"}, req.Domains)

		envelope(t, w, http.StatusOK, types.ExtractResult{
			Text: req.Text,
			Entities: []types.AnnotatedEntity{{
				Text:     "diabetes",
				StartPos: 22,
				EndPos:   30,
				Domain:   "disease",
			}},
		})
	})

	res, err := c.ExtractAnnotate(context.Background(), "patient presents with diabetes", &ExtractOptions{Domains: []string{"disease"}})
	require.NoError(t, err)
	require.Len(t, res.Entities, 1)
	assert.Equal(t, "diabetes", res.Entities[0].Text)
}

func TestHealth_Up(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/readyz", r.URL.Path)
		envelope(t, w, http.StatusOK, types.HealthStatus{
			Status:     "up",
			Components: map[string]bool{"annotator": true, "cache": true},
		})
	})

	status, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "up", status.Status)
	assert.True(t, status.Components["cache"])
}

func TestHealth_DegradedIsDataNotError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, http.StatusServiceUnavailable, types.HealthStatus{
			Status:     "degraded",
			Components: map[string]bool{"annotator": true, "cache": false},
		})
	})

	status, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "degraded", status.Status)
	assert.False(t, status.Components["cache"])
}

func TestAPIError_Format(t *testing.T) {
	t.Parallel()

	err := &APIError{StatusCode: 429, Code: "COMMON_007", Message: "too many requests", RequestID: "abc"}
	assert.Contains(t, err.Error(), "COMMON_007")
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "request_id=abc")
	assert.True(t, err.IsRateLimited())
	assert.False(t, err.IsServerError())
}
