package utils

import "strings"

// ShortName returns the last "/" segment of an ARN, which is the resource
// id for tasks and the name for clusters and task definitions.
// Input without a "/" is returned unchanged.
func ShortName(arn string) string {
	if i := strings.LastIndexByte(arn, '/'); i >= 0 {
		return arn[i+1:]
	}
	return arn
}
