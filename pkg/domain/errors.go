package domain

import "errors"

var (
	ErrNoCurrentThread = errors.New("no current thread")
	ErrUnknownThread   = errors.New("unknown thread id")
	ErrEditInFlight    = errors.New("an edit request is already in flight")
	ErrNoImage         = errors.New("no image loaded")
)

// FailurePrefix marks an assistant message produced by a round-trip that
// returned no image data.
const FailurePrefix = "Image generation failed: "
