// Package keygen generates RSA key pairs for SSH authentication.
//
// Keys are produced in PEM format (private) and OpenSSH authorized_keys
// format (public), suitable for importing into EC2 as a key pair.
package keygen
