package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "COMMON_001", ErrCodeInternal.String())
}

func TestHTTPStatusForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInternal, 500},
		{ErrCodeBadRequest, 400},
		{ErrCodeNotFound, 404},
		{ErrCodeTooManyRequests, 429},
		{ErrCodeValidation, 422},
		{ErrCodeLookupUnavailable, 502},
		{ErrCodeLookupRateLimited, 429},
		{ErrCodeLookupMissingAPIKey, 500},
		{ErrCodeExtractionInvalidInput, 400},
		{ErrCodeAnnotationEmptyTerm, 400},
		{ErrCodeAnnotationUnknownDomain, 400},
		{ErrCodeAnnotationNoProviders, 503},
		{ErrorCode("UNKNOWN"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, HTTPStatusForCode(tt.code))
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "internal server error", DefaultMessageForCode(ErrCodeInternal))
	assert.Equal(t, "unknown annotation domain", DefaultMessageForCode(ErrCodeAnnotationUnknownDomain))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("UNKNOWN")))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeBadRequest))
	assert.True(t, IsClientError(ErrCodeAnnotationEmptyTerm))
	assert.False(t, IsClientError(ErrCodeInternal))
	assert.False(t, IsClientError(ErrCodeLookupUnavailable))
}

func TestIsServerError(t *testing.T) {
	assert.True(t, IsServerError(ErrCodeInternal))
	assert.True(t, IsServerError(ErrCodeLookupParseError))
	assert.False(t, IsServerError(ErrCodeBadRequest))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
	assert.Equal(t, "CONFIG", ModuleForCode(ErrCodeConfigMissingSecret))
	assert.Equal(t, "LOOKUP", ModuleForCode(ErrCodeLookupUnavailable))
	assert.Equal(t, "EXTRACT", ModuleForCode(ErrCodeExtractionFailed))
	assert.Equal(t, "ANNOT", ModuleForCode(ErrCodeAnnotationEmptyTerm))
	assert.Equal(t, "UNKNOWN", ModuleForCode(ErrorCode("")))
}

func TestErrorCodeFormat_Convention(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for code := range ErrorCodeHTTPStatus {
		assert.Regexp(t, re, string(code), "code %q violates MODULE_NNN", code)
	}
}

func TestErrorCodeMappings_Completeness(t *testing.T) {
	for code := range ErrorCodeHTTPStatus {
		_, hasMessage := ErrorCodeMessage[code]
		assert.True(t, hasMessage, "missing message for %s", code)
	}
	for code := range ErrorCodeMessage {
		_, hasStatus := ErrorCodeHTTPStatus[code]
		assert.True(t, hasStatus, "missing status for %s", code)
	}
}
