package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/view"
)

// errPickCanceled is returned by prepare when the user quits the picker.
var errPickCanceled = errors.New("no selection made")

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listCheckedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// subProcess is one expandable activity at any depth.
type subProcess struct {
	Key   string
	Label string
	Depth int
}

// subProcesses lists every sub-process depth first, siblings sorted by id,
// so each entry directly follows its parent.
func subProcesses(p *flow.Pipeline) []subProcess {
	var out []subProcess
	var walk func(p *flow.Pipeline, parent string, depth int)
	walk = func(p *flow.Pipeline, parent string, depth int) {
		ids := make([]string, 0, len(p.Activities))
		for id, it := range p.Activities {
			if it != nil && it.HasPipeline() {
				ids = append(ids, id)
			}
		}
		slices.Sort(ids)
		for _, id := range ids {
			it := p.Activities[id]
			key := layout.Key(parent, id)
			out = append(out, subProcess{Key: key, Label: it.Label(), Depth: depth})
			walk(it.Pipeline, key, depth+1)
		}
	}
	walk(p, "", 0)
	return out
}

// ExpandPickModel is the bubbletea model for choosing which sub-processes
// to expand. Checking a nested sub-process also checks its ancestors, and
// unchecking one unchecks everything below it, so the selection is always
// a valid expand-set.
type ExpandPickModel struct {
	Items     []subProcess
	Expand    view.ExpandSet
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewExpandPickModel creates a picker over items with the keys in initial
// already checked.
func NewExpandPickModel(items []subProcess, initial []string) ExpandPickModel {
	return ExpandPickModel{
		Items:  items,
		Expand: view.NewExpandSet(initial...),
		Height: 15,
	}
}

func (m ExpandPickModel) Init() tea.Cmd {
	return nil
}

func (m ExpandPickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Items) > 0 {
				m.toggle(m.Items[m.Cursor].Key)
			}
		case "a":
			if m.Expand.Len() == len(m.Items) {
				m.Expand = view.NewExpandSet()
			} else {
				m.Expand = view.NewExpandSet(m.keys()...)
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m *ExpandPickModel) toggle(key string) {
	if m.Expand.Has(key) {
		m.Expand = m.Expand.Without(key)
		return
	}
	next := m.Expand.With(key)
	for parent := layout.ParentOf(key); parent != ""; parent = layout.ParentOf(parent) {
		next[parent] = struct{}{}
	}
	m.Expand = next
}

func (m ExpandPickModel) keys() []string {
	keys := make([]string, len(m.Items))
	for i, it := range m.Items {
		keys[i] = it.Key
	}
	return keys
}

// Selected returns the checked keys in sorted order.
func (m ExpandPickModel) Selected() []string {
	return m.Expand.Keys()
}

func (m ExpandPickModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Expand Sub-processes"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Items))
	for i := m.Offset; i < end; i++ {
		it := m.Items[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := listDimStyle.Render("[ ]")
		if m.Expand.Has(it.Key) {
			box = listCheckedStyle.Render("[x]")
		}

		name := it.Label
		if name == "" {
			name = it.Key
		}
		style := listNormalStyle
		if i == m.Cursor {
			style = listSelectedStyle
		}
		line := cursor + strings.Repeat("  ", it.Depth) + box + " " + style.Render(name)
		if name != it.Key {
			line += " " + listDimStyle.Render(it.Key)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d expanded", m.Expand.Len(), len(m.Items))))
	return b.String()
}

// pickExpand runs the picker on the terminal. The list is drawn on stderr
// so "-o -" output stays clean. It returns errPickCanceled when the user
// quits without confirming.
func pickExpand(ctx context.Context, p *flow.Pipeline, initial []string) ([]string, error) {
	items := subProcesses(p)
	if len(items) == 0 {
		loggerFromContext(ctx).Info("graph has no sub-processes to expand")
		return initial, nil
	}

	prog := tea.NewProgram(NewExpandPickModel(items, initial),
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr))
	final, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("pick sub-processes: %w", err)
	}
	fm, ok := final.(ExpandPickModel)
	if !ok || !fm.Confirmed {
		return nil, errPickCanceled
	}
	return fm.Selected(), nil
}
