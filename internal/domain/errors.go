package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrSelfAction     = errors.New("cannot act on yourself")
	ErrInvalidContent = errors.New("invalid message content")
)
