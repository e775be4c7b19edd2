package ec2

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/smithy-go"
)

// ErrKeyPairExists is returned by ImportKeyPair when the name is taken.
var ErrKeyPairExists = errors.New("key pair already exists")

// KeyPair is a registered SSH public key.
type KeyPair struct {
	ID          string
	Name        string
	Fingerprint string
}

// ImportKeyPair registers an OpenSSH public key under name.
func (c *RealClient) ImportKeyPair(ctx context.Context, name string, publicKey []byte) (*KeyPair, error) {
	out, err := c.api.ImportKeyPair(ctx, &ec2.ImportKeyPairInput{
		KeyName:           aws.String(name),
		PublicKeyMaterial: publicKey,
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == codeDuplicateKeyPair {
			return nil, fmt.Errorf("%w: %s", ErrKeyPairExists, name)
		}
		return nil, fmt.Errorf("failed to import key pair %s: %w", name, err)
	}

	return &KeyPair{
		ID:          aws.ToString(out.KeyPairId),
		Name:        aws.ToString(out.KeyName),
		Fingerprint: aws.ToString(out.KeyFingerprint),
	}, nil
}
