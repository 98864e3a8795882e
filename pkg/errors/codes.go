package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_012"
	ErrCodeExternalService    ErrorCode = "COMMON_013"
	ErrCodeNotImplemented     ErrorCode = "COMMON_014"
)

// Short aliases for the codes used most often at call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeUnauthorized = ErrCodeUnauthorized
	CodeForbidden    = ErrCodeForbidden
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeCacheError   = ErrCodeCacheError
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// Configuration Error Codes
const (
	ErrCodeConfigInvalid        ErrorCode = "CONFIG_001"
	ErrCodeConfigFileNotFound   ErrorCode = "CONFIG_002"
	ErrCodeConfigMissingSecret  ErrorCode = "CONFIG_003"
	ErrCodeConfigUnknownDomain  ErrorCode = "CONFIG_004"
	ErrCodeConfigParseFailed    ErrorCode = "CONFIG_005"
)

// Term Lookup Error Codes
const (
	ErrCodeLookupUnavailable    ErrorCode = "LOOKUP_001"
	ErrCodeLookupRateLimited    ErrorCode = "LOOKUP_002"
	ErrCodeLookupAuthFailed     ErrorCode = "LOOKUP_003"
	ErrCodeLookupParseError     ErrorCode = "LOOKUP_004"
	ErrCodeLookupTimeout        ErrorCode = "LOOKUP_005"
	ErrCodeLookupMissingAPIKey  ErrorCode = "LOOKUP_006"
	ErrCodeLookupBadQuery       ErrorCode = "LOOKUP_007"
)

// Entity Extraction Error Codes
const (
	ErrCodeExtractionFailed       ErrorCode = "EXTRACT_001"
	ErrCodeExtractionMissingKey   ErrorCode = "EXTRACT_002"
	ErrCodeExtractionInvalidInput ErrorCode = "EXTRACT_003"
	ErrCodeExtractionParseError   ErrorCode = "EXTRACT_004"
	ErrCodeExtractionRateLimited  ErrorCode = "EXTRACT_005"
)

// Annotation Error Codes
const (
	ErrCodeAnnotationEmptyTerm        ErrorCode = "ANNOT_001"
	ErrCodeAnnotationUnknownDomain    ErrorCode = "ANNOT_002"
	ErrCodeAnnotationInvalidThreshold ErrorCode = "ANNOT_003"
	ErrCodeAnnotationBatchTooLarge    ErrorCode = "ANNOT_004"
	ErrCodeAnnotationNoProviders      ErrorCode = "ANNOT_005"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeConfigInvalid:       http.StatusInternalServerError,
	ErrCodeConfigFileNotFound:  http.StatusInternalServerError,
	ErrCodeConfigMissingSecret: http.StatusInternalServerError,
	ErrCodeConfigUnknownDomain: http.StatusInternalServerError,
	ErrCodeConfigParseFailed:   http.StatusInternalServerError,

	ErrCodeLookupUnavailable:   http.StatusBadGateway,
	ErrCodeLookupRateLimited:   http.StatusTooManyRequests,
	ErrCodeLookupAuthFailed:    http.StatusBadGateway,
	ErrCodeLookupParseError:    http.StatusBadGateway,
	ErrCodeLookupTimeout:       http.StatusGatewayTimeout,
	ErrCodeLookupMissingAPIKey: http.StatusInternalServerError,
	ErrCodeLookupBadQuery:      http.StatusBadRequest,

	ErrCodeExtractionFailed:       http.StatusBadGateway,
	ErrCodeExtractionMissingKey:   http.StatusInternalServerError,
	ErrCodeExtractionInvalidInput: http.StatusBadRequest,
	ErrCodeExtractionParseError:   http.StatusBadGateway,
	ErrCodeExtractionRateLimited:  http.StatusTooManyRequests,

	ErrCodeAnnotationEmptyTerm:        http.StatusBadRequest,
	ErrCodeAnnotationUnknownDomain:    http.StatusBadRequest,
	ErrCodeAnnotationInvalidThreshold: http.StatusBadRequest,
	ErrCodeAnnotationBatchTooLarge:    http.StatusBadRequest,
	ErrCodeAnnotationNoProviders:      http.StatusServiceUnavailable,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeConfigInvalid:       "invalid configuration",
	ErrCodeConfigFileNotFound:  "configuration file not found",
	ErrCodeConfigMissingSecret: "required credential not configured",
	ErrCodeConfigUnknownDomain: "unknown domain in ontology mapping",
	ErrCodeConfigParseFailed:   "failed to parse configuration",

	ErrCodeLookupUnavailable:   "term lookup service unavailable",
	ErrCodeLookupRateLimited:   "term lookup service rate limited",
	ErrCodeLookupAuthFailed:    "term lookup authentication failed",
	ErrCodeLookupParseError:    "failed to parse term lookup response",
	ErrCodeLookupTimeout:       "term lookup timed out",
	ErrCodeLookupMissingAPIKey: "term lookup API key not configured",
	ErrCodeLookupBadQuery:      "invalid term lookup query",

	ErrCodeExtractionFailed:       "entity extraction failed",
	ErrCodeExtractionMissingKey:   "extraction API key not configured",
	ErrCodeExtractionInvalidInput: "invalid input for entity extraction",
	ErrCodeExtractionParseError:   "failed to parse extraction response",
	ErrCodeExtractionRateLimited:  "extraction service rate limited",

	ErrCodeAnnotationEmptyTerm:        "term must not be empty",
	ErrCodeAnnotationUnknownDomain:    "unknown annotation domain",
	ErrCodeAnnotationInvalidThreshold: "invalid confidence threshold",
	ErrCodeAnnotationBatchTooLarge:    "annotation batch exceeds limit",
	ErrCodeAnnotationNoProviders:      "no term providers configured",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
