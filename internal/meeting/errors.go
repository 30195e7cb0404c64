package meeting

import (
	"errors"
	"fmt"
)

// Validation errors surface to the calling client as structured
// responses; StorageError is always fatal to the calling operation.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyInMeeting = errors.New("already in a meeting")
	ErrNotConnected     = errors.New("no live connection")
)

// StorageError wraps a persistence-collaborator failure. Never
// swallowed, never retried here; callers see it as a server fault.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
