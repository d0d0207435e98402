package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"scpedit/internal/search"
)

type promptState int

const (
	promptPending promptState = iota
	promptAccepted
	promptCancelled
)

// prompt is a one-line input shown in the message bar. onKey sees the
// current input after every key, including the key that ends the prompt.
type prompt struct {
	input  textinput.Model
	format string
	onKey  func(value string, k search.Key)
}

func newPrompt(format string, onKey func(string, search.Key)) *prompt {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 1024
	in.Focus()
	if onKey == nil {
		onKey = func(string, search.Key) {}
	}
	return &prompt{input: in, format: format, onKey: onKey}
}

// Value returns the text typed so far.
func (p *prompt) Value() string { return p.input.Value() }

// View is the message-bar text.
func (p *prompt) View() string { return fmt.Sprintf(p.format, p.input.Value()) }

// Update feeds one key. Enter only accepts a non-empty input; Escape clears
// it and cancels. Arrow keys never edit the input, they are only reported.
func (p *prompt) Update(msg tea.KeyMsg) (promptState, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.Type {
	case tea.KeyEnter:
		if p.Value() != "" {
			p.onKey(p.Value(), search.KeyEnter)
			return promptAccepted, nil
		}
	case tea.KeyEsc:
		p.input.SetValue("")
		p.onKey("", search.KeyEscape)
		return promptCancelled, nil
	case tea.KeyBackspace, tea.KeyDelete, tea.KeyCtrlH:
		if r := []rune(p.Value()); len(r) > 0 {
			p.input.SetValue(string(r[:len(r)-1]))
			p.input.CursorEnd()
		}
	case tea.KeyTab:
		p.input.SetValue(p.Value() + "\t")
		p.input.CursorEnd()
	case tea.KeyRunes, tea.KeySpace:
		if !msg.Alt {
			p.input, cmd = p.input.Update(msg)
		}
	}
	p.onKey(p.Value(), searchKey(msg))
	return promptPending, cmd
}

func searchKey(msg tea.KeyMsg) search.Key {
	switch msg.Type {
	case tea.KeyUp:
		return search.KeyUp
	case tea.KeyDown:
		return search.KeyDown
	case tea.KeyLeft:
		return search.KeyLeft
	case tea.KeyRight:
		return search.KeyRight
	case tea.KeyEnter:
		return search.KeyEnter
	case tea.KeyEsc:
		return search.KeyEscape
	default:
		return search.KeyOther
	}
}
