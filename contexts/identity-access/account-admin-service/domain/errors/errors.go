package errors

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAuthorization    = errors.New("missing authorization header")
	ErrInvalidToken            = errors.New("invalid token")
	ErrUserIDRequired          = errors.New("userId is required")
	ErrAdminPrivilegesRequired = errors.New("requires admin privileges")
	ErrDeletionFailed          = errors.New("principal deletion failed")
)

// DeletionFailedError carries the provider-side failure so the boundary can
// surface the provider message without losing the sentinel classification.
type DeletionFailedError struct {
	Err error
}

func (e *DeletionFailedError) Error() string {
	return fmt.Sprintf("%v: %v", ErrDeletionFailed, e.Err)
}

func (e *DeletionFailedError) Unwrap() error {
	return ErrDeletionFailed
}

// ProviderMessage is the message reported by the deletion provider.
func (e *DeletionFailedError) ProviderMessage() string {
	if e.Err == nil {
		return ErrDeletionFailed.Error()
	}
	return e.Err.Error()
}
