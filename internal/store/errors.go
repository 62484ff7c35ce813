package store

import "errors"

// Sentinel errors for the HTTP layer to map onto status codes. Validation
// errors wrap ErrInvalid so handlers can classify dynamic messages with
// errors.Is.
var (
	ErrInvalid = errors.New("invalid input")

	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email address already registered")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrProtectedUser = errors.New("the bootstrap admin account cannot be deleted")
	ErrWrongPassword = errors.New("current password is incorrect")

	ErrLogNotFound = errors.New("log entry not found")
)
