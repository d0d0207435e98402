package ui

import (
	"log"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scpedit/internal/storage"
)

// recentItem is one entry of the recent files list. The stored text is a
// target as accepted on the command line.
type recentItem struct {
	target string
	parsed storage.Target
}

func (r recentItem) Title() string {
	if r.parsed.Path == "" {
		return r.target
	}
	return filepath.Base(r.parsed.Path)
}

func (r recentItem) Description() string {
	if r.parsed.Remote() {
		return r.target
	}
	return "local  " + r.target
}

func (r recentItem) FilterValue() string { return r.target }

// RecentModel lets the user pick a previously saved file before the editor
// starts.
type RecentModel struct {
	list   list.Model
	choice string
	width  int
	height int
}

// NewRecentModel lists files, most recent first. Entries that do not parse
// as a target are skipped.
func NewRecentModel(files []string) RecentModel {
	var items []list.Item
	for _, f := range files {
		t, err := storage.ParseTarget(f)
		if err != nil {
			log.Printf("[RecentModel] skip %q: %v", f, err)
			continue
		}
		items = append(items, recentItem{target: f, parsed: t})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("#FFFFFF")).
		BorderForeground(lipgloss.Color("#7D56F4"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("#AAAAAA")).
		BorderForeground(lipgloss.Color("#7D56F4"))

	l := list.New(items, delegate, 60, 14)
	l.Title = "Recent files"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return RecentModel{list: l}
}

// Choice is the selected target, or "" when the picker was dismissed.
func (m RecentModel) Choice() string { return m.choice }

// Len is the number of selectable entries.
func (m RecentModel) Len() int { return len(m.list.Items()) }

func (m RecentModel) Init() tea.Cmd { return nil }

func (m RecentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-2, 4))
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if item, ok := m.list.SelectedItem().(recentItem); ok {
				log.Printf("[RecentModel] selected %s", item.target)
				m.choice = item.target
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m RecentModel) View() string {
	if m.Len() == 0 {
		return "No recent files.\n"
	}
	return m.list.View()
}
