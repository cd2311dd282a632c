package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/device"
	"github.com/matzehuels/qroute/pkg/route"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TraceModel - Interactive routed-program step viewer
// =============================================================================

// traceStep is one emitted operation together with the logical→physical
// mapping in effect after it.
type traceStep struct {
	op      circuit.Gate
	mapping []device.Qubit
}

// TraceModel is the bubbletea model for stepping through a routed program.
// Moving the cursor walks the operation sequence; the mapping table shows
// where every logical qubit sits at the selected step.
type TraceModel struct {
	Device string
	Swaps  int
	Steps  []traceStep
	Cursor int
	Height int
	Offset int
}

// NewTraceModel replays the routed operation sequence from the initial
// layout and captures a mapping snapshot per step.
func NewTraceModel(deviceName string, routed *route.Routed, initial *route.Layout) TraceModel {
	layout := initial
	if layout == nil {
		layout = route.IdentityLayout(routed.Qubits)
	} else {
		layout = layout.Clone()
	}

	steps := make([]traceStep, 0, len(routed.Ops))
	for _, op := range routed.Ops {
		if op.IsSwap() {
			layout.Swap(device.Qubit(op.Qubits[0]), device.Qubit(op.Qubits[1]))
		}
		steps = append(steps, traceStep{op: op, mapping: layout.Mapping()})
	}

	return TraceModel{
		Device: deviceName,
		Swaps:  routed.Swaps,
		Steps:  steps,
		Height: 15,
	}
}

func (m TraceModel) Init() tea.Cmd {
	return nil
}

func (m TraceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Steps)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "g", "home":
			m.Cursor = 0
			m.Offset = 0
		case "G", "end":
			m.Cursor = len(m.Steps) - 1
			if m.Cursor >= m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TraceModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Routing Trace - %s", m.Device)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d ops, %d swaps   ↑/↓ step  g/G first/last  q quit", len(m.Steps), m.Swaps)))
	b.WriteString("\n\n")

	if len(m.Steps) == 0 {
		b.WriteString(listDimStyle.Render("  (empty program)"))
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.Steps) {
		end = len(m.Steps)
	}

	for i := m.Offset; i < end; i++ {
		step := m.Steps[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%4d  %s", cursor, i, step.op)

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case step.op.IsSwap():
			b.WriteString(styleSwap.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.mappingTable())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Steps))))

	return b.String()
}

// mappingTable renders the logical→physical assignment at the cursor.
func (m TraceModel) mappingTable() string {
	mapping := m.Steps[m.Cursor].mapping

	logical := make([]string, len(mapping))
	physical := make([]string, len(mapping))
	for i, p := range mapping {
		logical[i] = "q" + strconv.Itoa(i)
		physical[i] = strconv.Itoa(int(p))
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows([][]string{logical, physical}...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return headerStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	return t.Render()
}
