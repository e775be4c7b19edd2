// Package prompt asks the operator for instance names and master choices
// using huh forms.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// ErrNonInteractive is returned when a prompt is required but stdin is not a terminal.
var ErrNonInteractive = errors.New("input required but stdin is not a terminal")

// runForm is swapped in tests.
var runForm = func(ctx context.Context, form *huh.Form) error {
	return form.RunWithContext(ctx)
}

// Terminal prompts on the controlling terminal.
type Terminal struct {
	in          *os.File
	out         io.Writer
	interactive bool
}

// NewTerminal returns a prompter bound to os.Stdin and os.Stderr.
func NewTerminal() *Terminal {
	return &Terminal{
		in:          os.Stdin,
		out:         os.Stderr,
		interactive: IsTerminal(os.Stdin),
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Input asks for a single line of text. An empty answer selects defaultValue.
func (t *Terminal) Input(ctx context.Context, title, defaultValue string, validate func(string) error) (string, error) {
	if !t.interactive {
		return "", fmt.Errorf("%s: %w", title, ErrNonInteractive)
	}

	var value string
	input := huh.NewInput().
		Title(title).
		Placeholder(defaultValue).
		Value(&value).
		Validate(withDefault(defaultValue, validate))

	if err := runForm(ctx, t.form(huh.NewGroup(input))); err != nil {
		return "", err
	}
	return resolve(value, defaultValue), nil
}

// Select asks the operator to pick one of options and returns its index.
func (t *Terminal) Select(ctx context.Context, title string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, errors.New("no options to select from")
	}
	if !t.interactive {
		return -1, fmt.Errorf("%s: %w", title, ErrNonInteractive)
	}

	choice := 0
	sel := huh.NewSelect[int]().
		Title(title).
		Options(indexedOptions(options)...).
		Value(&choice)

	if err := runForm(ctx, t.form(huh.NewGroup(sel))); err != nil {
		return -1, err
	}
	return choice, nil
}

func (t *Terminal) form(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).
		WithInput(t.in).
		WithOutput(t.out)
}

func indexedOptions(options []string) []huh.Option[int] {
	opts := make([]huh.Option[int], len(options))
	for i, label := range options {
		opts[i] = huh.NewOption(label, i)
	}
	return opts
}

func resolve(value, defaultValue string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultValue
	}
	return value
}

// withDefault validates the value the operator would actually end up with.
func withDefault(defaultValue string, validate func(string) error) func(string) error {
	return func(s string) error {
		if validate == nil {
			return nil
		}
		return validate(resolve(s, defaultValue))
	}
}
