package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ontoview/ontoview/pkg/export"
)

// List styles.
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command: an interactive area and region
// browser for a built taxonomy document.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <taxonomy.json>",
		Short: "Browse areas and regions interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := export.ReadFile(args[0])
			if err != nil {
				return err
			}
			prog := tea.NewProgram(NewBrowseModel(doc), tea.WithContext(cmd.Context()))
			_, err = prog.Run()
			return err
		},
	}
}

// browseLevel is the navigation depth of the browser.
type browseLevel int

const (
	levelAreas browseLevel = iota
	levelRegions
	levelConcepts
)

// BrowseModel is the bubbletea model for taxonomy navigation: the area list,
// the regions of the selected area, and the concepts of the selected region.
type BrowseModel struct {
	Doc    export.Document
	Level  browseLevel
	Area   int // selected area ID while at levelRegions and below
	Region int // selected region ID while at levelConcepts

	Cursor int
	Offset int
	Height int
}

// NewBrowseModel creates a browser positioned at the area list.
func NewBrowseModel(doc export.Document) BrowseModel {
	return BrowseModel{Doc: doc, Height: 15}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.rowCount()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", "right", "l":
			return m.descend(), nil
		case "esc", "left", "h":
			return m.ascend(), nil
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// descend moves one level deeper at the cursor.
func (m BrowseModel) descend() BrowseModel {
	switch m.Level {
	case levelAreas:
		m.Area = m.Doc.Areas[m.Cursor].ID
		m.Level = levelRegions
	case levelRegions:
		m.Region = m.Doc.Areas[m.Area].RegionIDs[m.Cursor]
		m.Level = levelConcepts
	default:
		return m
	}
	m.Cursor, m.Offset = 0, 0
	return m
}

// ascend moves one level up, restoring the cursor to the entry just left.
func (m BrowseModel) ascend() BrowseModel {
	switch m.Level {
	case levelRegions:
		m.Level = levelAreas
		m.Cursor = m.Area
	case levelConcepts:
		m.Level = levelRegions
		m.Cursor = indexOf(m.Doc.Areas[m.Area].RegionIDs, m.Region)
	default:
		return m
	}
	m.Offset = 0
	if m.Cursor >= m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m BrowseModel) rowCount() int {
	switch m.Level {
	case levelAreas:
		return len(m.Doc.Areas)
	case levelRegions:
		return len(m.Doc.Areas[m.Area].RegionIDs)
	default:
		return len(m.Doc.Regions[m.Region].Concepts)
	}
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  esc back  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, m.rowCount())
	switch m.Level {
	case levelAreas:
		b.WriteString(m.areaTable(end))
	case levelRegions:
		b.WriteString(m.regionTable(end))
	default:
		b.WriteString(m.conceptList(end))
	}

	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, m.rowCount())))
	return b.String()
}

func (m BrowseModel) title() string {
	switch m.Level {
	case levelAreas:
		return "Areas"
	case levelRegions:
		return "Regions of " + sigString(m.Doc.Areas[m.Area].Signature)
	default:
		r := m.Doc.Regions[m.Region]
		name := r.RootName
		if name == "" {
			name = strconv.FormatInt(r.Root, 10)
		}
		return "Concepts of region " + name
	}
}

func (m BrowseModel) areaTable(end int) string {
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		a := m.Doc.Areas[i]
		rows = append(rows, []string{
			cursorMark(i == m.Cursor),
			sigString(a.Signature),
			strconv.Itoa(len(a.RegionIDs)),
			strconv.Itoa(a.ConceptCount),
		})
	}
	return m.table([]string{"", "Signature", "Regions", "Concepts"}, rows)
}

func (m BrowseModel) regionTable(end int) string {
	ids := m.Doc.Areas[m.Area].RegionIDs
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Doc.Regions[ids[i]]
		name := r.RootName
		if name == "" {
			name = strconv.FormatInt(r.Root, 10)
		}
		rows = append(rows, []string{
			cursorMark(i == m.Cursor),
			name,
			strconv.Itoa(len(r.Concepts)),
		})
	}
	return m.table([]string{"", "Root", "Concepts"}, rows)
}

func (m BrowseModel) conceptList(end int) string {
	var b strings.Builder
	concepts := m.Doc.Regions[m.Region].Concepts
	for i := m.Offset; i < end; i++ {
		line := cursorMark(i == m.Cursor) + strconv.FormatInt(concepts[i], 10)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m BrowseModel) table(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		}).
		Render()
}

func cursorMark(current bool) string {
	if current {
		return "▸ "
	}
	return "  "
}

func sigString(labels []string) string {
	if len(labels) == 0 {
		return "∅"
	}
	return strings.Join(labels, ", ")
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return 0
}
