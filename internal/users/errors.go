package users

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrNotAGuest     = errors.New("user is not a guest")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already in use")
)
