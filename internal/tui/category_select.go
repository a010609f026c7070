// Package tui holds the interactive terminal pieces of qgit.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/internal/report"
)

// CategoryItem is one risk category offered for cleanup.
type CategoryItem struct {
	Category domain.RiskCategory
	Count    int
	Size     int64
	Tracked  int
	Selected bool
}

// CategorySelectModel is a bubbletea model that lets the user pick which
// categories benedict should act on.
type CategorySelectModel struct {
	items   []CategoryItem
	cursor  int
	done    bool
	quitted bool
}

// ItemsFromResult builds one item per category present in r, in priority order.
func ItemsFromResult(r *domain.ScanResult) []CategoryItem {
	var items []CategoryItem
	for _, c := range r.Categories() {
		item := CategoryItem{Category: c, Count: len(r.Findings[c]), Size: r.CategorySize(c)}
		for _, f := range r.Findings[c] {
			if f.Tracked {
				item.Tracked++
			}
		}
		items = append(items, item)
	}
	return items
}

// NewCategorySelectModel creates a model with every item selected.
func NewCategorySelectModel(items []CategoryItem) CategorySelectModel {
	for i := range items {
		items[i].Selected = true
	}
	return CategorySelectModel{items: items}
}

// Selected returns the chosen categories in list order.
func (m CategorySelectModel) Selected() []domain.RiskCategory {
	var cats []domain.RiskCategory
	for _, it := range m.items {
		if it.Selected {
			cats = append(cats, it.Category)
		}
	}
	return cats
}

// Done reports whether the user confirmed the selection.
func (m CategorySelectModel) Done() bool { return m.done }

// Quitted reports whether the user cancelled.
func (m CategorySelectModel) Quitted() bool { return m.quitted }

// Init satisfies tea.Model.
func (m CategorySelectModel) Init() tea.Cmd { return nil }

// Update satisfies tea.Model.
func (m CategorySelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyUp:
		m.up()
	case tea.KeyDown:
		m.down()
	case tea.KeySpace:
		m.toggle()
	case tea.KeyEnter:
		m.done = true
		return m, tea.Quit
	case tea.KeyEsc, tea.KeyCtrlC:
		m.quitted = true
		return m, tea.Quit
	case tea.KeyRunes:
		switch string(key.Runes) {
		case "k":
			m.up()
		case "j":
			m.down()
		case "x":
			m.toggle()
		case "q":
			m.quitted = true
			return m, tea.Quit
		case "a":
			all := true
			for _, it := range m.items {
				if !it.Selected {
					all = false
					break
				}
			}
			for i := range m.items {
				m.items[i].Selected = !all
			}
		}
	}
	return m, nil
}

func (m *CategorySelectModel) up() {
	if m.cursor > 0 {
		m.cursor--
	}
}

func (m *CategorySelectModel) down() {
	if m.cursor < len(m.items)-1 {
		m.cursor++
	}
}

func (m *CategorySelectModel) toggle() {
	if len(m.items) > 0 {
		m.items[m.cursor].Selected = !m.items[m.cursor].Selected
	}
}

// View satisfies tea.Model.
func (m CategorySelectModel) View() string {
	if m.done || m.quitted {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).MarginBottom(1)
	cursorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	trackedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Select categories to ignore:"))
	b.WriteString("\n")

	for i, item := range m.items {
		checkbox := "[ ]"
		if item.Selected {
			checkbox = "[x]"
		}
		noun := "files"
		if item.Count == 1 {
			noun = "file"
		}
		line := fmt.Sprintf("%s %s %s %s", checkbox, item.Category.Emoji(), item.Category.Label(),
			detailStyle.Render(fmt.Sprintf("(%d %s, %s)", item.Count, noun, report.FormatSize(item.Size))))
		if item.Tracked > 0 {
			line += " " + trackedStyle.Render(fmt.Sprintf("%d tracked", item.Tracked))
		}

		if i == m.cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space: toggle | enter: confirm | a: toggle all | q/esc: cancel"))
	return b.String()
}

// SelectCategories runs the selector on in/out. A cancelled selection
// returns no categories.
func SelectCategories(ctx context.Context, r *domain.ScanResult, in io.Reader, out io.Writer) ([]domain.RiskCategory, error) {
	model := NewCategorySelectModel(ItemsFromResult(r))
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(CategorySelectModel)
	if !ok || m.Quitted() {
		return nil, nil
	}
	return m.Selected(), nil
}
