package provisioning

import "github.com/imamik/puppetctl/internal/platform/ec2"

// Session records what one puppetctl invocation created, so later steps of
// the same invocation can refer to it without a lookup.
type Session struct {
	// WorkingMaster is the master created or chosen in this session.
	WorkingMaster *ec2.Instance

	// WorkingSlaves are the slaves provisioned by the last CreateSlaves
	// call, in creation order.
	WorkingSlaves []*ec2.Instance
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}
