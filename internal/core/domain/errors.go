package domain

import "errors"

// Domain errors. Each maps to a distinct HTTP status code in the API error
// handler; anything else surfaces as a generic 500.
var (
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailNotVerified      = errors.New("email not verified")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired verification token")
	ErrInvalidFileType       = errors.New("invalid file type")
	ErrForbidden             = errors.New("access forbidden")
	ErrUserNotFound          = errors.New("user not found")
	ErrFileNotFound          = errors.New("file not found")
	ErrInvalidLink           = errors.New("invalid download link")
	ErrLinkExpired           = errors.New("download link expired")
	ErrLinkConsumed          = errors.New("download link already used")
)
