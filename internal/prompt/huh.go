package prompt

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the operator leaves a form with Ctrl+C or Esc.
var ErrAborted = errors.New("prompt aborted")

// runForm is swapped in tests.
var runForm = func(form *huh.Form) error { return form.Run() }

// Huh renders prompts as charmbracelet/huh forms.
type Huh struct{}

// NewHuh returns a terminal prompter.
func NewHuh() *Huh { return &Huh{} }

func (h *Huh) Choose(title string, options []Option) (string, error) {
	var value string
	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s - %s", o.Key, o.Label), o.Key))
	}
	field := huh.NewSelect[string]().Title(title).Options(opts...).Value(&value)
	if err := run(huh.NewForm(huh.NewGroup(field))); err != nil {
		return "", err
	}
	return value, nil
}

func (h *Huh) Token(title string) (string, error) {
	var value string
	field := huh.NewInput().Title(title).EchoMode(huh.EchoModePassword).Value(&value)
	if err := run(huh.NewForm(huh.NewGroup(field))); err != nil {
		return "", err
	}
	return value, nil
}

func (h *Huh) Confirm(question string) (bool, error) {
	var value bool
	field := huh.NewConfirm().Title(question).Affirmative("Yes").Negative("No").Value(&value)
	if err := run(huh.NewForm(huh.NewGroup(field))); err != nil {
		return false, err
	}
	return value, nil
}

func run(form *huh.Form) error {
	err := runForm(form)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}
