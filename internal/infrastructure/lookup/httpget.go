// Package lookup holds the HTTP plumbing shared by the term registry
// clients: retrying JSON GETs and the status-to-error mapping.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
)

// RetryPolicy controls the retry loop for registry calls.  Only transport
// failures (timeouts, connection errors) are retried; HTTP status errors and
// malformed payloads fail immediately.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultRetryPolicy mirrors the registries' published rate guidance:
// three attempts, exponential backoff from one to ten seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
	}
}

// Normalized returns the policy with out-of-range fields raised to usable
// values, so a partially filled policy never busy-loops.
func (p RetryPolicy) Normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = time.Second
	}
	if p.MaxBackoff < p.InitialBackoff {
		p.MaxBackoff = p.InitialBackoff
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2.0
	}
	return p
}

// GetJSON performs a GET against url with the given headers, decodes the JSON
// body into out, and retries transport failures per the policy.
func GetJSON(ctx context.Context, client *http.Client, registry, url string, header http.Header, out any, policy RetryPolicy) error {
	policy = policy.Normalized()
	backoff := policy.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), errors.ErrCodeLookupTimeout, registry+" request canceled")
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * policy.Multiplier)
			if backoff > policy.MaxBackoff {
				backoff = policy.MaxBackoff
			}
		}

		err := getJSONOnce(ctx, client, registry, url, header, out)
		if err == nil {
			return nil
		}
		if !isTransportError(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func getJSONOnce(ctx context.Context, client *http.Client, registry, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeLookupBadQuery, registry+" request build failed")
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &transportError{registry: registry, err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return statusError(registry, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, errors.ErrCodeLookupParseError, registry+" returned a malformed response")
	}
	return nil
}

// transportError wraps a network-level failure so the retry loop can tell it
// apart from terminal failures.
type transportError struct {
	registry string
	err      error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.registry, e.err)
}

func (e *transportError) Unwrap() error { return e.err }

func isTransportError(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}

// AsAppError converts any remaining transport error into an AppError for the
// caller; other errors pass through unchanged.
func AsAppError(registry string, err error) error {
	if err == nil {
		return nil
	}
	var te *transportError
	if errors.As(err, &te) {
		code := errors.ErrCodeLookupUnavailable
		var ne net.Error
		if errors.As(te.err, &ne) && ne.Timeout() {
			code = errors.ErrCodeLookupTimeout
		}
		return errors.Wrap(te.err, code, registry+" is unreachable")
	}
	return err
}

func statusError(registry string, status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return errors.New(errors.ErrCodeLookupRateLimited, registry+" rate limit exceeded")
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.New(errors.ErrCodeLookupAuthFailed, registry+" rejected the credentials")
	case status == http.StatusGatewayTimeout:
		return errors.New(errors.ErrCodeLookupTimeout, registry+" timed out upstream")
	default:
		return errors.New(errors.ErrCodeLookupUnavailable, fmt.Sprintf("%s returned HTTP %d", registry, status))
	}
}

// StringOrList decodes a JSON field that registries emit as either a single
// string or an array of strings.
type StringOrList []string

func (s *StringOrList) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*s = nil
		return nil
	}
	if data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*s = StringOrList{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = StringOrList(list)
	return nil
}
