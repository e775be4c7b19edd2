package provisioning

import (
	"errors"
	"fmt"

	"github.com/imamik/puppetctl/internal/platform/ec2"
)

// ErrNoMasters is returned when a master has to be picked but none exist.
var ErrNoMasters = errors.New("no puppet masters found")

// UnexpectedStatusError is returned when a new instance leaves "pending" for
// anything other than "running".
type UnexpectedStatusError struct {
	InstanceID string
	Status     ec2.Status
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("couldn't launch EC2 instance %s: instance status was: %s", e.InstanceID, e.Status)
}

// AmbiguousMasterError is returned when a search term does not identify
// exactly one master by ID or by name.
type AmbiguousMasterError struct {
	Token       string
	IDMatches   int
	NameMatches int
}

func (e *AmbiguousMasterError) Error() string {
	return fmt.Sprintf("%d ID matches and %d name matches for instance search term \"%s\"",
		e.IDMatches, e.NameMatches, e.Token)
}
