package domain

import (
	"errors"
	"fmt"
)

var (
	ErrParse                 = errors.New("unable to parse sales dataset")
	ErrInvalidWindow         = errors.New("invalid display count")
	ErrAuth                  = errors.New("authentication failed")
	ErrUnauthenticated       = errors.New("no signed-in user")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCandidate      = errors.New("invalid candidate")
	ErrAlreadyVoted          = errors.New("user has already voted")
	ErrVoteInProgress        = errors.New("a vote is already being submitted")
	ErrStatusUnknown         = errors.New("vote status unknown, voting disabled")
	ErrAlreadyExists         = errors.New("document already exists")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrStoreUnavailable      = errors.New("store unavailable")
	ErrPersistenceUnverified = errors.New("vote was not saved to database")
	ErrUnknown               = errors.New("unknown store error")
	ErrInternal              = errors.New("internal server error")
)

// VoteError is returned by a failed vote submission. Kind is one of the
// store-failure sentinels above and is what errors.Is matches against.
type VoteError struct {
	Kind   error
	Detail string
	Err    error
}

func (e *VoteError) Error() string {
	return e.Detail
}

func (e *VoteError) Is(target error) bool {
	return e.Kind == target
}

func (e *VoteError) Unwrap() error {
	return e.Err
}

// AuthError carries the identity provider's message verbatim.
type AuthError struct {
	Detail string
	Err    error
}

func NewAuthError(detail string, err error) *AuthError {
	return &AuthError{Detail: detail, Err: err}
}

func (e *AuthError) Error() string {
	return e.Detail
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ParseError wraps a dataset failure with the stage that produced it.
func ParseError(stage string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrParse, stage)
	}
	return fmt.Errorf("%w: %s: %w", ErrParse, stage, err)
}
