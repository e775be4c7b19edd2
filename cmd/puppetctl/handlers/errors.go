package handlers

import (
	"errors"
	"io"

	"github.com/imamik/puppetctl/internal/config"
	"github.com/imamik/puppetctl/internal/platform/ec2"
	"github.com/imamik/puppetctl/internal/ui/prompt"
	"github.com/imamik/puppetctl/internal/ui/style"
	"github.com/imamik/puppetctl/internal/util/retry"
)

// ReportError prints err as a red line, followed by a hint when the error
// has a known remedy.
func ReportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	style.Fprintln(w, style.Error, "%v", err)
	if hint := hintFor(err); hint != "" {
		style.Fprintln(w, style.Note, "%s", hint)
	}
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, config.ErrMissingCredentials):
		return "Export " + config.EnvAccessKeyID + " and " + config.EnvSecretAccessKey + " and try again."
	case errors.Is(err, prompt.ErrNonInteractive):
		return "Pass the value as an argument or flag when running without a terminal."
	case errors.Is(err, ec2.ErrKeyPairExists):
		return "Remove the existing key pair or set key_pair to a different name."
	case errors.Is(err, retry.ErrTimeout):
		return "Timeouts can be raised with the PUPPETCTL_TIMEOUT_* environment variables."
	default:
		return ""
	}
}
