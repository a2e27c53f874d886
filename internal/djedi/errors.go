package djedi

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch marks transport failures and unsuccessful responses on node reads.
	ErrFetch = errors.New("fetch failed")
	// ErrParse marks node responses whose body is not a valid node record.
	ErrParse = errors.New("invalid node response")
	// ErrWriteRejected marks draft saves and publishes answered with a status other than 200.
	ErrWriteRejected = errors.New("write rejected")
)

// StatusError reports an unexpected HTTP status for one admin call.
type StatusError struct {
	Op     string // node.load | node.editor | node.publish
	Code   int
	Status string
	kind   error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: non-200 status code: %d", e.Op, e.Code)
}

func (e *StatusError) Unwrap() error { return e.kind }
