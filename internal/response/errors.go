package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Schedule ──────────────────────────────────────────────────────
	ErrScheduleNotLoaded ErrCode = "SCHEDULE_NOT_LOADED"
	ErrCourseNotFound    ErrCode = "COURSE_NOT_FOUND"
	ErrRefreshInProgress ErrCode = "REFRESH_IN_PROGRESS"
	ErrRefreshQueue      ErrCode = "REFRESH_QUEUE_UNAVAILABLE"
	ErrFeedRejected      ErrCode = "FEED_REJECTED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrNotFound:
		return "Resource not found."
	case ErrScheduleNotLoaded:
		return "The course schedule has not been loaded yet. Try again shortly."
	case ErrCourseNotFound:
		return "No course with that subject and code is offered."
	case ErrRefreshInProgress:
		return "A schedule refresh is already running."
	case ErrRefreshQueue:
		return "The refresh request could not be queued."
	case ErrFeedRejected:
		return "The course feed could not be ingested."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
