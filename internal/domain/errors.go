package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSource means a pseudo-file does not have the shape its
	// reader requires (missing header, wrong first row).
	ErrMalformedSource = errors.New("malformed source")

	// ErrUnreadable means a pseudo-file could not be opened or read.
	ErrUnreadable = errors.New("unreadable source")

	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// SourceError names the pseudo-file a reader failed on.
type SourceError struct {
	Source string
	Path   string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source (%s): %v", e.Source, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
