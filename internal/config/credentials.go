package config

import (
	"errors"
	"fmt"
	"os"
)

// AWS credential environment variables.
const (
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvSessionToken    = "AWS_SESSION_TOKEN"
)

// ErrMissingCredentials is returned when the AWS key pair is not in the
// environment.
var ErrMissingCredentials = errors.New("missing AWS credentials")

// Credentials is a static AWS access key.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// LoadCredentials reads the access key from the process environment.
func LoadCredentials() (Credentials, error) {
	return credentialsFrom(os.Getenv)
}

func credentialsFrom(getenv func(string) string) (Credentials, error) {
	creds := Credentials{
		AccessKeyID:     getenv(EnvAccessKeyID),
		SecretAccessKey: getenv(EnvSecretAccessKey),
		SessionToken:    getenv(EnvSessionToken),
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return Credentials{}, fmt.Errorf("%w: make sure %s and %s are set in your env",
			ErrMissingCredentials, EnvAccessKeyID, EnvSecretAccessKey)
	}
	return creds, nil
}
