package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for malformed or out-of-range input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict is returned when an operation is not valid for the current state.
	ErrConflict = errors.New("conflict with current state")
	// ErrSetNotFound indicates an unknown question set ID.
	ErrSetNotFound = errors.New("question set not found")
	// ErrSetExhausted indicates the active set has no further questions.
	ErrSetExhausted = errors.New("no more questions in set")
	// ErrSetGone indicates a previously selected set is no longer in the catalog.
	ErrSetGone = errors.New("active set data missing")
)

// NicknameTakenError reports a join collision along with five alternative
// nicknames that are free at the time of the failure.
type NicknameTakenError struct {
	Nickname    string
	Suggestions []string
}

func (e *NicknameTakenError) Error() string {
	return fmt.Sprintf("nickname %q already taken", e.Nickname)
}
