package custom_errors

import "errors"

// Post errors
var (
	ErrPostNotFound   = errors.New("post not found")
	ErrPostValidation = errors.New("post validation failed")
	ErrForbidden      = errors.New("forbidden")
)

// Read marker errors
var (
	ErrReadMarkerNotFound = errors.New("read marker not found")
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserValidation     = errors.New("user validation failed")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Media errors
var (
	ErrUnsupportedMedia  = errors.New("unsupported media type")
	ErrMediaTooLarge     = errors.New("media file too large")
	ErrMediaSaveFailed   = errors.New("failed to save media")
	ErrMediaRemoveFailed = errors.New("failed to remove media")
)

// Infrastructure errors
var (
	ErrDatabaseQuery = errors.New("database query failed")
	ErrInvalidInput  = errors.New("invalid input")
)
