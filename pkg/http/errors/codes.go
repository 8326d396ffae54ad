package errors

// Error codes returned in the HTTP error envelope.
const (
	ErrCodeInternalError    = "internal_error"
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeInvalidToken     = "invalid_token"
	ErrCodeAuthRequired     = "authentication_required"
	ErrCodeLessonNotFound   = "lesson_not_found"
	ErrCodeLessonLocked     = "lesson_locked"
	ErrCodeNoContent        = "no_lesson_content"
	ErrCodeSessionNotFound  = "session_not_found"
	ErrCodeSessionFinished  = "session_finished"
	ErrCodeInvalidAnswer    = "invalid_answer"
	ErrCodeStoreUnavailable = "store_unavailable"
)
