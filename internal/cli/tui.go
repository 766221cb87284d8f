package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/spriteslicer/pkg/slice"
)

// =============================================================================
// SliceSelectModel - Interactive slice selection
// =============================================================================

// SliceSelectModel is the bubbletea model for picking which slices to export.
// Every slice starts selected.
type SliceSelectModel struct {
	Set       *slice.Set
	Cursor    int
	Checked   []bool
	Confirmed bool
	Height    int
	Offset    int
}

// NewSliceSelectModel creates a selection model over set.
func NewSliceSelectModel(set *slice.Set) SliceSelectModel {
	checked := make([]bool, set.Len())
	for i := range checked {
		checked[i] = true
	}
	return SliceSelectModel{
		Set:     set,
		Checked: checked,
		Height:  15,
	}
}

// Selected returns the checked indices in ascending order.
func (m SliceSelectModel) Selected() []int {
	out := []int{}
	for i, ok := range m.Checked {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

func (m SliceSelectModel) Init() tea.Cmd {
	return nil
}

func (m SliceSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Checked)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Checked) > 0 {
				m.Checked = toggled(m.Checked, m.Cursor)
			}
		case "a":
			m.Checked = allOrNone(m.Checked)
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

// toggled returns a copy of checked with index i flipped, so earlier model
// values stay unchanged.
func toggled(checked []bool, i int) []bool {
	out := append([]bool(nil), checked...)
	out[i] = !out[i]
	return out
}

// allOrNone selects everything, or clears everything when all are selected.
func allOrNone(checked []bool) []bool {
	all := true
	for _, c := range checked {
		all = all && c
	}
	out := make([]bool, len(checked))
	for i := range out {
		out[i] = !all
	}
	return out
}

func (m SliceSelectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Slices"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  space toggle  a all/none  ⏎ export  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Checked))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Set.Slices[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[i] {
			box = "[x]"
		}
		name := r.Name
		if name == "" {
			name = "—"
		}
		rows = append(rows, []string{cursor, box, strconv.Itoa(i), name,
			fmt.Sprintf("%d,%d", r.X, r.Y), fmt.Sprintf("%dx%d", r.Width, r.Height)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "#", "Name", "Pos", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Checked) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if !m.Checked[idx] {
				base = base.Foreground(colorDim)
			} else if col == 1 {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d of %d selected", len(m.Selected()), len(m.Checked))))

	return b.String()
}

// runSliceSelect shows the selection UI and returns the chosen indices.
// ok is false when the user quit without confirming.
func runSliceSelect(set *slice.Set) (indices []int, ok bool, err error) {
	final, err := tea.NewProgram(NewSliceSelectModel(set)).Run()
	if err != nil {
		return nil, false, fmt.Errorf("slice selection: %w", err)
	}
	m := final.(SliceSelectModel)
	if !m.Confirmed {
		return nil, false, nil
	}
	return m.Selected(), true, nil
}
