package session

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrSpawnFailed     = errors.New("starting session failed")
	ErrWaitFailed      = errors.New("waiting for session failed")
)
