package output

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alios-things/aos-cube/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Prompter asks for commit messages on the terminal
type Prompter struct {
	input *os.File
}

// NewPrompter creates a prompter reading from stdin
func NewPrompter() *Prompter {
	return &Prompter{input: os.Stdin}
}

// CommitMessage asks for the message of the commit publishing name
func (p *Prompter) CommitMessage(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !isatty.IsTerminal(p.input.Fd()) && !isatty.IsCygwinTerminal(p.input.Fd()) {
		return "", errors.Newf(errors.ErrInvalidInput, "a commit message is required for %q, pass --message", name)
	}

	msg, err := pterm.DefaultInteractiveTextInput.Show(fmt.Sprintf("Commit message for %q", name))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput, "failed to read the commit message")
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", errors.Newf(errors.ErrInvalidInput, "empty commit message for %q", name)
	}
	return msg, nil
}
