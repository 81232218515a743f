package errors

import "errors"

var (
	ErrInvalidRequest          = errors.New("invalid request")
	ErrPrincipalNotFound       = errors.New("principal not found")
	ErrPrincipalAlreadyExists  = errors.New("principal already exists")
	ErrGroupNotFound           = errors.New("group not found")
	ErrGroupAlreadyExists      = errors.New("group already exists")
	ErrGroupDisabled           = errors.New("group is disabled")
	ErrUnknownRole             = errors.New("unknown role")
	ErrUnknownMembershipStatus = errors.New("unknown membership status")
	ErrIdempotencyKeyRequired  = errors.New("idempotency key required")
	ErrIdempotencyConflict     = errors.New("idempotency key conflict")
)
