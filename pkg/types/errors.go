package types

import "errors"

var (
	ErrEmptyMessage     = errors.New("message text is empty after trimming")
	ErrMessageTooLong   = errors.New("message text exceeds 500 character limit")
	ErrInvalidEventType = errors.New("invalid event type")
)
