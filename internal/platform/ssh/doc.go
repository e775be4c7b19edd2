// Package ssh runs shell commands on freshly launched instances.
//
// A Client targets one host. A Runner holds the user and key shared by every
// instance puppetctl launches and creates a Client per call, which is what the
// readiness probe and the Puppet installer use.
package ssh
