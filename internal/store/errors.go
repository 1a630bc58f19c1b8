package store

import "errors"

var (
	// ErrNotFound indicates the requested project or user does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a user with the same email is already registered
	ErrAlreadyExists = errors.New("already exists")

	// ErrAlreadyMember indicates the user is already a collaborator of the project
	ErrAlreadyMember = errors.New("user is already a collaborator in this project")

	// ErrForbidden indicates the requester is not allowed to change the project
	ErrForbidden = errors.New("requester is not a collaborator of this project")

	// ErrClosed indicates the store has been closed
	ErrClosed = errors.New("store is closed")
)
