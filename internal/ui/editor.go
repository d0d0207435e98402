package ui

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"scpedit/internal/cursor"
	"scpedit/internal/editor"
	"scpedit/internal/render"
	"scpedit/internal/search"
)

// HelpMessage is shown in the message bar when the editor starts.
const HelpMessage = "HELP: Ctrl-S = Save | Ctrl-Q = Quit | Ctrl-F = Find"

// reservedRows are the status bar and the message bar.
const reservedRows = 2

// SaveRequestMsg asks the owner of the storage backend to write Text to Path.
type SaveRequestMsg struct {
	Path string
	Text string
}

// SaveDoneMsg reports the result of a SaveRequestMsg.
type SaveDoneMsg struct {
	Path  string
	Bytes int
	Err   error
}

// FileChangedMsg reports that the open file was modified by someone else.
type FileChangedMsg struct {
	Path string
}

type messageExpiredMsg struct{ seq int }

// Options configures an EditorModel.
type Options struct {
	// QuitTimes is how many extra Ctrl-Q presses discard unsaved changes.
	QuitTimes int
	// MessageTimeout is how long a status message stays visible.
	MessageTimeout time.Duration
	// Describe turns a document path into the name shown in the status bar.
	Describe func(path string) string
	// Renderer styles the output. Nil uses lipgloss's default renderer.
	Renderer *lipgloss.Renderer
}

// EditorModel is the bubbletea front end for an editor.Session.
type EditorModel struct {
	session *editor.Session
	painter *render.Painter
	keys    KeyMap
	help    help.Model

	statusStyle lipgloss.Style

	prompt      *prompt
	promptDone  func(m *EditorModel, value string, cancelled bool) tea.Cmd
	showHelp    bool
	saving      bool
	dirtyAtSave uint64
	quitTimes   int
	quitLeft    int
	message     string
	messageSeq  int
	messageTTL  time.Duration
	describe    func(string) string
	width       int
	height      int
}

// NewEditorModel wraps s. The status message starts as HelpMessage.
func NewEditorModel(s *editor.Session, opts Options) EditorModel {
	if opts.Describe == nil {
		opts.Describe = func(p string) string { return p }
	}
	if opts.MessageTimeout <= 0 {
		opts.MessageTimeout = 5 * time.Second
	}
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	h := help.New()
	h.ShowAll = true
	return EditorModel{
		session:     s,
		painter:     render.NewPainter(r, s.Highlighter()),
		keys:        DefaultKeyMap(),
		help:        h,
		statusStyle: r.NewStyle().Reverse(true),
		quitTimes:   max(opts.QuitTimes, 0),
		quitLeft:    max(opts.QuitTimes, 0),
		message:     HelpMessage,
		messageTTL:  opts.MessageTimeout,
		describe:    opts.Describe,
	}
}

// Init starts the expiry timer for the initial help message.
func (m EditorModel) Init() tea.Cmd {
	return m.expireAfter(m.messageSeq)
}

// Session returns the wrapped editing session.
func (m EditorModel) Session() *editor.Session { return m.session }

// Message returns the current status message.
func (m EditorModel) Message() string { return m.message }

// Prompting reports whether a prompt owns the message bar.
func (m EditorModel) Prompting() bool { return m.prompt != nil }

func (m EditorModel) expireAfter(seq int) tea.Cmd {
	return tea.Tick(m.messageTTL, func(time.Time) tea.Msg {
		return messageExpiredMsg{seq: seq}
	})
}

// setMessage replaces the status message and returns the command that
// clears it once it has been visible for the configured timeout.
func (m *EditorModel) setMessage(format string, args ...any) tea.Cmd {
	m.message = fmt.Sprintf(format, args...)
	m.messageSeq++
	return m.expireAfter(m.messageSeq)
}

// Update handles key presses, window size changes and save results.
func (m EditorModel) Update(msg tea.Msg) (EditorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.session.Resize(max(msg.Width, 1), max(msg.Height-reservedRows, 1))
		m.help.Width = msg.Width
		return m, nil

	case messageExpiredMsg:
		if msg.seq == m.messageSeq {
			m.message = ""
		}
		return m, nil

	case SaveDoneMsg:
		return m.saveDone(msg)

	case FileChangedMsg:
		log.Printf("[editor] %s changed on disk", msg.Path)
		if m.session.Buffer().Dirty() > 0 {
			return m, m.setMessage("File changed on disk (unsaved changes here)")
		}
		return m, m.setMessage("File changed on disk")

	case tea.KeyMsg:
		if m.prompt != nil {
			return m.updatePrompt(msg)
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m EditorModel) updateKey(msg tea.KeyMsg) (EditorModel, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.session.Buffer().Dirty() > 0 && m.quitLeft > 0 {
			cmd := m.setMessage("WARNING!!! File has unsaved changes. Press Ctrl-Q %d more times to quit.", m.quitLeft)
			m.quitLeft--
			return m, cmd
		}
		log.Printf("[editor] quit")
		return m, tea.Quit
	}
	m.quitLeft = m.quitTimes

	s := m.session
	switch {
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.Find):
		return m.find()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Up):
		s.Move(cursor.MoveUp)
	case key.Matches(msg, m.keys.Down):
		s.Move(cursor.MoveDown)
	case key.Matches(msg, m.keys.Left):
		s.Move(cursor.MoveLeft)
	case key.Matches(msg, m.keys.Right):
		s.Move(cursor.MoveRight)
	case key.Matches(msg, m.keys.Home):
		s.Move(cursor.MoveHome)
	case key.Matches(msg, m.keys.End):
		s.Move(cursor.MoveEnd)
	case key.Matches(msg, m.keys.PageUp):
		s.Move(cursor.MovePageUp)
	case key.Matches(msg, m.keys.PageDown):
		s.Move(cursor.MovePageDown)
	case key.Matches(msg, m.keys.Newline):
		s.InsertNewline()
	case key.Matches(msg, m.keys.Backspc):
		s.DeleteChar()
	case key.Matches(msg, m.keys.Delete):
		s.DeleteForward()
	case key.Matches(msg, m.keys.Tab):
		s.InsertChar('\t')
	case key.Matches(msg, m.keys.Refresh):
	case msg.Type == tea.KeySpace:
		s.InsertChar(' ')
	case msg.Type == tea.KeyRunes && !msg.Alt:
		for _, r := range msg.Runes {
			if r == '\n' || r == '\r' {
				s.InsertNewline()
				continue
			}
			s.InsertChar(r)
		}
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Prompts
// ---------------------------------------------------------------------------

func (m EditorModel) openPrompt(format string, onKey func(string, search.Key), done func(*EditorModel, string, bool) tea.Cmd) EditorModel {
	m.prompt = newPrompt(format, onKey)
	m.promptDone = done
	return m
}

func (m EditorModel) updatePrompt(msg tea.KeyMsg) (EditorModel, tea.Cmd) {
	state, cmd := m.prompt.Update(msg)
	if state == promptPending {
		return m, cmd
	}
	value := m.prompt.Value()
	done := m.promptDone
	m.prompt, m.promptDone = nil, nil
	m.message = ""
	if done != nil {
		cmd = tea.Batch(cmd, done(&m, value, state == promptCancelled))
	}
	return m, cmd
}

func (m EditorModel) find() (EditorModel, tea.Cmd) {
	s := m.session
	s.StartSearch()
	m = m.openPrompt("Search: %s (Use ESC / Arrows / Enter)",
		func(q string, k search.Key) { s.Search(q, k) },
		func(_ *EditorModel, _ string, cancelled bool) tea.Cmd {
			s.EndSearch(cancelled)
			return nil
		})
	return m, nil
}

// ---------------------------------------------------------------------------
// Saving
// ---------------------------------------------------------------------------

func (m EditorModel) save() (EditorModel, tea.Cmd) {
	if m.saving {
		return m, m.setMessage("Save already in progress")
	}
	if m.session.Buffer().Path() == "" {
		m = m.openPrompt("Save as: %s (ESC to cancel)", nil,
			func(m *EditorModel, name string, cancelled bool) tea.Cmd {
				if cancelled {
					return m.setMessage("Save Aborted")
				}
				m.session.Buffer().SetPath(name)
				var cmd tea.Cmd
				*m, cmd = m.requestSave()
				return cmd
			})
		return m, nil
	}
	return m.requestSave()
}

func (m EditorModel) requestSave() (EditorModel, tea.Cmd) {
	buf := m.session.Buffer()
	m.saving = true
	m.dirtyAtSave = buf.Dirty()
	req := SaveRequestMsg{Path: buf.Path(), Text: FileText(buf.Text(), buf.Len())}
	log.Printf("[editor] save requested: %s (%d bytes)", req.Path, len(req.Text))
	return m, func() tea.Msg { return req }
}

func (m EditorModel) saveDone(msg SaveDoneMsg) (EditorModel, tea.Cmd) {
	m.saving = false
	if msg.Err != nil {
		log.Printf("[editor] save failed: %v", msg.Err)
		return m, m.setMessage("Save failed: %v", msg.Err)
	}
	buf := m.session.Buffer()
	// Edits made while the write was in flight are not on disk yet.
	if buf.Dirty() == m.dirtyAtSave {
		buf.MarkSaved()
	}
	return m, m.setMessage("%d bytes written to disk", msg.Bytes)
}

// FileText is the on-disk form of a document: every line newline-terminated.
func FileText(text string, lines int) string {
	if lines == 0 {
		return ""
	}
	return text + "\n"
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

// View renders the text area, the status bar and the message bar.
func (m EditorModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading editor..."
	}
	if m.showHelp {
		return RenderHelp(m.help, m.keys, m.width, m.height)
	}
	m.painter.SetHighlighter(m.session.Highlighter())
	body := m.painter.Paint(m.session.Frame(), true)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar(), m.renderMessageBar())
}

func (m EditorModel) renderStatusBar() string {
	buf := m.session.Buffer()
	name := "[No Name]"
	if p := buf.Path(); p != "" {
		name = m.describe(p)
	}
	modified := ""
	if buf.Dirty() > 0 {
		modified = " (modified)"
	}
	left := runewidth.Truncate(fmt.Sprintf("%s%s -- %d lines", name, modified, buf.Len()), m.width, "")
	right := fmt.Sprintf("%d/%d", m.session.Cursor().Y+1, buf.Len())

	gap := m.width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	line := left
	if gap >= 0 {
		line = left + strings.Repeat(" ", gap) + right
	} else {
		line += strings.Repeat(" ", m.width-runewidth.StringWidth(left))
	}
	return m.statusStyle.Render(line)
}

func (m EditorModel) renderMessageBar() string {
	text := m.message
	if m.prompt != nil {
		text = m.prompt.View()
	}
	return runewidth.Truncate(text, m.width, "")
}
