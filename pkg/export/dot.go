package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// DotOptions configures DOT generation.
type DotOptions struct {
	// ByArea collapses the diagram to one node per area instead of one node
	// per region. Useful for large taxonomies where the region view is
	// unreadable.
	ByArea bool

	// MaxLabelLength truncates signature labels longer than this many runes.
	// Zero means no truncation.
	MaxLabelLength int
}

// ToDOT converts an exported taxonomy to Graphviz DOT. Nodes are regions (or
// areas with [DotOptions.ByArea]) labeled with their signature and concept
// count; edges point from parent to child so the root renders at the top.
func ToDOT(doc Document, opts DotOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph taxonomy {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("\n")

	if opts.ByArea {
		writeAreaNodes(&buf, doc, opts)
	} else {
		writeRegionNodes(&buf, doc, opts)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeRegionNodes(buf *bytes.Buffer, doc Document, opts DotOptions) {
	for _, r := range doc.Regions {
		label := fmt.Sprintf("%s\n(%d concepts)", sigLabel(r.Signature, opts.MaxLabelLength), len(r.Concepts))
		if r.RootName != "" {
			label = r.RootName + "\n" + label
		}
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if r.ID == doc.RootRegionID {
			attrs = append(attrs, "fillcolor=lightgoldenrod")
		}
		fmt.Fprintf(buf, "  r%d [%s];\n", r.ID, strings.Join(attrs, ", "))
	}
	buf.WriteString("\n")
	for _, e := range doc.Edges {
		fmt.Fprintf(buf, "  r%d -> r%d;\n", e.Parent, e.Child)
	}
}

func writeAreaNodes(buf *bytes.Buffer, doc Document, opts DotOptions) {
	for _, a := range doc.Areas {
		label := fmt.Sprintf("%s\n(%d regions, %d concepts)",
			sigLabel(a.Signature, opts.MaxLabelLength), len(a.RegionIDs), a.ConceptCount)
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if a.ID == doc.RootAreaID {
			attrs = append(attrs, "fillcolor=lightgoldenrod")
		}
		fmt.Fprintf(buf, "  a%d [%s];\n", a.ID, strings.Join(attrs, ", "))
	}
	buf.WriteString("\n")

	// Collapse region edges to distinct area pairs, preserving edge order.
	areaOf := make(map[int]int, len(doc.Regions))
	for _, r := range doc.Regions {
		areaOf[r.ID] = r.AreaID
	}
	seen := make(map[[2]int]struct{})
	for _, e := range doc.Edges {
		pair := [2]int{areaOf[e.Parent], areaOf[e.Child]}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		fmt.Fprintf(buf, "  a%d -> a%d;\n", pair[0], pair[1])
	}
}

func sigLabel(labels []string, maxLen int) string {
	if len(labels) == 0 {
		return "∅"
	}
	s := strings.Join(labels, ", ")
	if maxLen > 0 && len([]rune(s)) > maxLen {
		s = string([]rune(s)[:maxLen]) + "…"
	}
	return s
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
