package services

import "errors"

// Submission errors surfaced to handlers. Validation failures carry no
// mutation; ErrDuplicateVote is recoverable by resubmitting with the
// replace flag set.
var (
	ErrMissingIdentity  = errors.New("missing participant identity")
	ErrPollNotFound     = errors.New("poll not found")
	ErrPollClosed       = errors.New("poll closed")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrDuplicateVote    = errors.New("duplicate vote")
)
