package ec2

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// EC2 API error codes this package classifies.
const (
	codeInstanceNotFound    = "InvalidInstanceID.NotFound"
	codeDuplicatePermission = "InvalidPermission.Duplicate"
	codeDuplicateKeyPair    = "InvalidKeyPair.Duplicate"
)

// InstanceNotFoundError is returned by GetInstance when the API answered but
// did not include the instance.
type InstanceNotFoundError struct {
	InstanceID string
}

func (e *InstanceNotFoundError) Error() string {
	return fmt.Sprintf("instance %s does not exist", e.InstanceID)
}

// IsInstanceNotFound reports whether err says the instance ID is unknown.
//
// EC2 returns this for a short while after RunInstances because the
// describe path is eventually consistent, so callers polling a fresh
// instance treat it as transient. InvalidInstanceID.Malformed is not
// matched; a malformed ID never resolves.
func IsInstanceNotFound(err error) bool {
	if err == nil {
		return false
	}

	var nf *InstanceNotFoundError
	if errors.As(err, &nf) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == codeInstanceNotFound
	}

	return false
}

func isDuplicatePermission(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == codeDuplicatePermission
}
