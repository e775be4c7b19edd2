package handlers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/imamik/puppetctl/internal/config"
	"github.com/imamik/puppetctl/internal/platform/ec2"
	"github.com/imamik/puppetctl/internal/ui/style"
	"github.com/imamik/puppetctl/internal/util/keygen"
)

const keyBits = 4096

var (
	saveConfig         = config.Save
	generateRSAKeyPair = keygen.GenerateRSAKeyPair
)

// InitOptions controls the init command.
type InitOptions struct {
	Output      string
	Force       bool
	GenerateKey bool
}

// Init writes a default configuration file. With GenerateKey it also creates
// a new SSH key at the configured key file and imports its public half into
// EC2 under the configured key pair name.
func Init(ctx context.Context, opts Options, initOpts InitOptions) error {
	output := initOpts.Output
	if output == "" {
		output = config.DefaultConfigFilename
	}

	if !initOpts.Force {
		if _, err := os.Stat(output); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", output)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to check %s: %w", output, err)
		}
	}

	cfg := config.Default()
	if opts.Region != "" {
		cfg.Region = opts.Region
	}

	if initOpts.GenerateKey {
		if err := importKey(ctx, cfg); err != nil {
			return err
		}
	}

	if err := saveConfig(cfg, output); err != nil {
		return err
	}

	style.Fprintln(stdout, style.Success, "Configuration written to %s", output)
	return nil
}

func importKey(ctx context.Context, cfg *config.Config) error {
	keyFile, err := cfg.ExpandedKeyFile()
	if err != nil {
		return err
	}

	creds, err := loadCredentials()
	if err != nil {
		return err
	}

	kp, err := generateRSAKeyPair(keyBits)
	if err != nil {
		return err
	}
	if err := kp.WritePrivateKey(keyFile); err != nil {
		return err
	}

	// The local key only stays if EC2 holds its public half.
	imported, err := uploadPublicKey(ctx, cfg, creds, kp.PublicKey)
	if err != nil {
		if rmErr := os.Remove(keyFile); rmErr != nil {
			style.Fprintln(stderr, style.Warning, "Could not remove %s: %v", keyFile, rmErr)
		}
		return err
	}

	style.Fprintln(stdout, style.Note, "Private key written to %s", keyFile)
	style.Fprintln(stdout, style.Success, "Key pair \"%s\" imported (%s)", imported.Name, imported.Fingerprint)
	return nil
}

func uploadPublicKey(ctx context.Context, cfg *config.Config, creds config.Credentials, publicKey []byte) (*ec2.KeyPair, error) {
	infra, err := newInfraClient(ctx, cfg.Region, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Region, err)
	}

	imported, err := infra.ImportKeyPair(ctx, cfg.KeyPairName, publicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to import key pair %q: %w", cfg.KeyPairName, err)
	}
	return imported, nil
}
