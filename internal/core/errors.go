package core

// Error codes for domain errors.
const (
	ErrCodeUsernameTaken    = "username_taken"
	ErrCodeNotAuthenticated = "not_authenticated"
	ErrCodeRoomNotFound     = "room_not_found"
	ErrCodeRoomExists       = "room_exists"
	ErrCodeEmptyRoomName    = "empty_room_name"
	ErrCodeNotInRoom        = "not_in_room"
	ErrCodeEmptyMessage     = "empty_message"
	ErrCodeBadRequest       = "bad_request"
	ErrCodeStoreError       = "store_error"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
