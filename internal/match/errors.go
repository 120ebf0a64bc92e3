package match

import "errors"

var (
	ErrSelfPairing   = errors.New("cannot pair a connection with itself")
	ErrAlreadyPaired = errors.New("connection is already paired")
	ErrUnknownClient = errors.New("client not registered")
)
