package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"
	ErrCodeInvalidOption  = "invalid_option"

	// Resource errors
	ErrCodeNotFound         = "not_found"
	ErrCodeQuestionNotFound = "question_not_found"

	// Throttling
	ErrCodeRateLimited = "rate_limited"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
	ErrCodeStatsFetchFailed   = "stats_fetch_failed"
)
