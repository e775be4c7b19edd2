// Package tags provides the EC2 tag keys and values that make up the puppet
// role registry.
//
// Tags are the only persisted relationship between a master and its slaves.
// There is no separate registry: lookups scan instances and compare tags.
package tags

import (
	"fmt"
	"regexp"
	"sort"
)

// Tag keys written on instances.
const (
	// KeyType holds the puppet role of an instance.
	KeyType = "puppet:type"

	// KeyName holds the human-readable display name.
	KeyName = "puppet:name"

	// KeyMasterID is the back-reference from a slave to its master's instance ID.
	KeyMasterID = "puppet:master_id"
)

// Role values for KeyType.
const (
	RoleMaster = "puppetmaster"
	RoleSlave  = "puppetslave"
)

// UnknownName is shown for instances without a name tag.
const UnknownName = "???"

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateName checks that a display name only uses letters, digits,
// underscores and hyphens.
func ValidateName(name string) error {
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("invalid name %q: use only letters, digits, '_' and '-'", name)
	}
	return nil
}

// TagBuilder provides a fluent interface for building instance tags.
type TagBuilder struct {
	tags map[string]string
}

// NewTagBuilder creates a builder with the given role.
func NewTagBuilder(role string) *TagBuilder {
	return &TagBuilder{tags: map[string]string{KeyType: role}}
}

// WithName adds the display name tag.
func (tb *TagBuilder) WithName(name string) *TagBuilder {
	if name != "" {
		tb.tags[KeyName] = name
	}
	return tb
}

// WithMaster adds the master back-reference.
func (tb *TagBuilder) WithMaster(masterID string) *TagBuilder {
	if masterID != "" {
		tb.tags[KeyMasterID] = masterID
	}
	return tb
}

// Build returns a copy of the tags map.
func (tb *TagBuilder) Build() map[string]string {
	result := make(map[string]string, len(tb.tags))
	for k, v := range tb.tags {
		result[k] = v
	}
	return result
}

// HasRole reports whether the tag set carries the given role.
func HasRole(t map[string]string, role string) bool {
	return t[KeyType] == role
}

// NameOf returns the display name, or UnknownName when it is not set.
func NameOf(t map[string]string) string {
	if name, ok := t[KeyName]; ok && name != "" {
		return name
	}
	return UnknownName
}

// Keys returns the keys of t in write order: type, name, master ID, then any
// other key sorted.
func Keys(t map[string]string) []string {
	keys := make([]string, 0, len(t))
	var rest []string
	for _, k := range []string{KeyType, KeyName, KeyMasterID} {
		if _, ok := t[k]; ok {
			keys = append(keys, k)
		}
	}
	for k := range t {
		if k != KeyType && k != KeyName && k != KeyMasterID {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
