package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ontoview/ontoview/pkg/export"
)

// statsCommand creates the stats command: a styled summary of a built
// taxonomy document.
func (c *CLI) statsCommand() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats <taxonomy.json>",
		Short: "Summarize a built taxonomy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := export.ReadFile(args[0])
			if err != nil {
				return err
			}
			printTaxonomyStats(doc, top)
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "number of largest areas to list")
	return cmd
}

func printTaxonomyStats(doc export.Document, top int) {
	fmt.Println(StyleTitle.Render("Taxonomy"))
	if doc.BuildID != "" {
		printKeyValue("Build", doc.BuildID)
	}
	if doc.Release != "" {
		printKeyValue("Release", doc.Release)
	}
	if doc.SubrootID != 0 {
		printKeyValue("Subroot", strconv.FormatInt(doc.SubrootID, 10))
	}
	printKeyValue("Concepts", strconv.Itoa(doc.ConceptCount))
	printKeyValue("Areas", strconv.Itoa(len(doc.Areas)))
	printKeyValue("Regions", strconv.Itoa(len(doc.Regions)))
	printKeyValue("Edges", strconv.Itoa(len(doc.Edges)))
	printKeyValue("Types", strconv.Itoa(len(relationshipTypes(doc))))
	printNewline()

	fmt.Println(StyleTitle.Render("Largest areas"))
	fmt.Println(areaTable(doc, top))
}

// areaTable renders the top areas by concept count.
func areaTable(doc export.Document, top int) string {
	areas := slices.Clone(doc.Areas)
	slices.SortStableFunc(areas, func(a, b export.Area) int {
		return b.ConceptCount - a.ConceptCount
	})
	if top > 0 && len(areas) > top {
		areas = areas[:top]
	}

	rows := make([][]string, len(areas))
	for i, a := range areas {
		sig := "∅"
		if len(a.Signature) > 0 {
			sig = strings.Join(a.Signature, ", ")
		}
		rows[i] = []string{
			strconv.Itoa(a.ID),
			sig,
			strconv.Itoa(len(a.RegionIDs)),
			strconv.Itoa(a.ConceptCount),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Signature", "Regions", "Concepts").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		}).
		Render()
}

// relationshipTypes collects the distinct signature labels across all areas.
func relationshipTypes(doc export.Document) []string {
	var types []string
	for _, a := range doc.Areas {
		types = append(types, a.Signature...)
	}
	slices.Sort(types)
	return slices.Compact(types)
}
