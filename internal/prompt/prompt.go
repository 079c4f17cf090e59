// Package prompt asks for missing account credentials on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/nhle/mailacct/internal/account"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("prompt aborted")

// Terminal prompts with huh inputs. It only claims to be interactive when
// In is a terminal.
type Terminal struct {
	In *os.File

	// Disabled turns prompting off, e.g. for --batch.
	Disabled bool
}

var _ account.Prompter = (*Terminal)(nil)

// NewTerminal returns a prompter reading from stdin.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin}
}

// Interactive reports whether prompting is possible.
func (t *Terminal) Interactive() bool {
	if t.Disabled || t.In == nil {
		return false
	}
	return term.IsTerminal(int(t.In.Fd()))
}

// Text asks for a visible value, pre-filled with initial.
func (t *Terminal) Text(prompt, initial string) (string, error) {
	value := initial
	input := huh.NewInput().
		Title(strings.TrimSpace(prompt)).
		Value(&value)

	if err := run(input); err != nil {
		return "", err
	}
	return value, nil
}

// Secret asks for a masked value.
func (t *Terminal) Secret(prompt string) (string, error) {
	var value string
	input := huh.NewInput().
		Title(strings.TrimSpace(prompt)).
		EchoMode(huh.EchoModePassword).
		Value(&value)

	if err := run(input); err != nil {
		return "", err
	}
	return value, nil
}

func run(input *huh.Input) error {
	err := input.Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	if err != nil {
		return fmt.Errorf("running prompt: %w", err)
	}
	return nil
}
