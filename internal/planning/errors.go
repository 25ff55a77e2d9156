package planning

import (
	"errors"
	"fmt"
)

var (
	// ErrGenerationFailed means the model produced no usable text.
	ErrGenerationFailed = errors.New("plan generation failed")

	// ErrMalformedResponse means text came back but no task list could be
	// located or parsed in it.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrInvalidCommit is returned for a structurally invalid commit request.
	ErrInvalidCommit = errors.New("invalid commit request")
)

// MalformedResponseError carries the text that could not be parsed.
// It matches ErrMalformedResponse under errors.Is.
type MalformedResponseError struct {
	// Payload is the bracketed slice that failed to decode, or the whole
	// reply when no slice could be located.
	Payload string
	Reason  string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedResponse, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedResponse, e.Reason)
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
