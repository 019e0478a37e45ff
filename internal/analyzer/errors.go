package analyzer

import (
	"errors"
	"fmt"
)

var errNotText = errors.New("content is not valid UTF-8 text")

// FileAccessError reports a submission that could not be read.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot access submission %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// MalformedSourceError reports a submission that could not be parsed.
type MalformedSourceError struct {
	Path string
	Err  error
}

func (e *MalformedSourceError) Error() string {
	return fmt.Sprintf("cannot parse submission %s: %v", e.Path, e.Err)
}

func (e *MalformedSourceError) Unwrap() error { return e.Err }
