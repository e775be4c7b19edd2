package provisioning

import "github.com/imamik/puppetctl/internal/platform/ec2"

// RefKind says how a MasterRef identifies a master.
type RefKind int

const (
	// RefUnspecified means no master was named: use the session's working
	// master or ask the operator.
	RefUnspecified RefKind = iota
	// RefResolved holds an already looked-up instance.
	RefResolved
	// RefSelector holds an instance ID or puppet:name to search for.
	RefSelector
)

func (k RefKind) String() string {
	switch k {
	case RefResolved:
		return "resolved"
	case RefSelector:
		return "selector"
	default:
		return "unspecified"
	}
}

// MasterRef identifies a master in one of three ways. Build it with
// ResolvedMaster, MasterSelector or UnspecifiedMaster.
type MasterRef struct {
	kind     RefKind
	instance *ec2.Instance
	token    string
}

// ResolvedMaster refers to a known instance.
func ResolvedMaster(inst *ec2.Instance) MasterRef {
	return MasterRef{kind: RefResolved, instance: inst}
}

// MasterSelector refers to the master whose ID or puppet:name is token.
// An empty token is the same as UnspecifiedMaster.
func MasterSelector(token string) MasterRef {
	if token == "" {
		return UnspecifiedMaster()
	}
	return MasterRef{kind: RefSelector, token: token}
}

// UnspecifiedMaster defers the choice to the session or the operator.
func UnspecifiedMaster() MasterRef {
	return MasterRef{kind: RefUnspecified}
}

// Kind returns how the reference identifies a master.
func (r MasterRef) Kind() RefKind {
	return r.kind
}

// Instance returns the instance of a RefResolved reference, nil otherwise.
func (r MasterRef) Instance() *ec2.Instance {
	return r.instance
}

// Token returns the search term of a RefSelector reference.
func (r MasterRef) Token() string {
	return r.token
}
