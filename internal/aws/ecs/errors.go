package ecs

import (
	"errors"

	"tasnim.dev/opfyx/internal/aws/awserr"
)

var (
	ErrNotFound           = errors.New("task not found")
	ErrContainerNotFound  = errors.New("container not found")
	ErrNoRunningContainer = errors.New("no running container")
	ErrMissingRuntimeID   = errors.New("missing runtime id")
	ErrNoLogConfig        = errors.New("no awslogs configuration")
)

// RemoteError is a failed ECS API call.
type RemoteError = awserr.Error

func remoteErr(op string, err error) error {
	return awserr.Wrap(op, err)
}
