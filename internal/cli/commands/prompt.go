package commands

import (
	"errors"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// prompter asks the user for input. The interactive implementation uses promptui; tests
// script the answers.
type prompter interface {
	Select(label string, items []string) (int, error)
	Input(label string, mask bool) (string, error)
	Confirm(label string) (bool, error)
}

type promptUI struct{}

func (promptUI) Select(label string, items []string) (int, error) {
	sel := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}
	idx, _, err := sel.Run()
	return idx, err
}

func (promptUI) Input(label string, mask bool) (string, error) {
	p := promptui.Prompt{Label: label}
	if mask {
		p.Mask = '*'
	}
	return p.Run()
}

func (promptUI) Confirm(label string) (bool, error) {
	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := p.Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// isInteractive reports whether stdin is a terminal
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// isQuit reports whether err means the user left the prompt (Ctrl-C / Ctrl-D)
func isQuit(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF)
}
