package service

import "errors"

var (
	ErrNotFound         = errors.New("not_found")
	ErrForbidden        = errors.New("forbidden")
	ErrNotAMember       = errors.New("not_a_member")
	ErrNotOwner         = errors.New("not_owner")
	ErrAlreadyFulfilled = errors.New("already_fulfilled")
	ErrInvalidHelper    = errors.New("invalid_helper")
	ErrInvalidInput     = errors.New("bad_request")
)
