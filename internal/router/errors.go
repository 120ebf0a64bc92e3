package router

import "errors"

var (
	ErrSenderNotConnected = errors.New("sender not connected")
	ErrNotPaired          = errors.New("no active partner")
	ErrRateLimited        = errors.New("sending messages too quickly")
)
