package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeInvalidToken = "invalid_token"

	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"

	// Resource errors
	ErrCodeNotFound = "not_found"
	ErrCodeConflict = "conflict"

	// Match errors
	ErrCodeInvalidMatchID = "invalid_match_id"
	ErrCodeUnknownMatch   = "unknown_match"

	// Puzzle session errors
	ErrCodeSessionBusy      = "session_busy"
	ErrCodeResetNotAllowed  = "reset_not_allowed"
	ErrCodeGuessFailed      = "guess_failed"
	ErrCodeNotSolved        = "not_solved"
	ErrCodeAttestationError = "attestation_error"

	// Infrastructure errors
	ErrCodeInternalError = "internal_error"
)
