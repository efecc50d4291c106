package user

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrWrongPassword   = errors.New("current password is incorrect")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidPhone    = errors.New("invalid phone number for the specified region")
	ErrInvalidUsername = errors.New("username must be 3-32 letters, digits, dots or underscores")
	ErrInvalidName     = errors.New("name must be between 1 and 100 characters")
	ErrUsernameTaken   = errors.New("username is already in use")
	ErrEmailTaken      = errors.New("email address is already in use")
	ErrMobileTaken     = errors.New("phone number is already in use")
	ErrEmptyUpdate     = errors.New("nothing to update")
	ErrBlockInPast     = errors.New("block end must be in the future")
)
