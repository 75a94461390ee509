// Package awserr describes failed AWS API calls.
package awserr

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Error is a failed AWS API call. It is never retried.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the AWS error code, or "" when the failure did not come
// from the service (network, credentials, cancellation).
func (e *Error) Code() string {
	var apiErr smithy.APIError
	if errors.As(e.Err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func Wrap(op string, err error) error {
	return &Error{Op: op, Err: err}
}

// Code returns the AWS error code of the first failed call in err's chain.
func Code(err error) string {
	var remote *Error
	if errors.As(err, &remote) {
		return remote.Code()
	}
	return ""
}
