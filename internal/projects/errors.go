package projects

import "errors"

var (
	// ErrNotFound covers both a missing project and a project owned by
	// someone else, so existence never leaks to non-owners.
	ErrNotFound      = errors.New("project not found")
	ErrDuplicateName = errors.New("project name already in use")
)
