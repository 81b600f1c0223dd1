package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ontoview/ontoview/pkg/export"
	"github.com/ontoview/ontoview/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output base path (input basename if empty)
	formats  string // comma-separated output formats
	byArea   bool   // render the area view instead of the region view
	maxLabel int    // truncate signature labels
	noCache  bool   // disable render caching
}

// renderCommand creates the render command: turn a built taxonomy document
// into DOT, SVG, or PNG diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{formats: pipeline.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render <taxonomy.json>",
		Short: "Render a built taxonomy to DOT, SVG, or PNG",
		Long: `Render reads a taxonomy document produced by "ontoview build" and draws
the region hierarchy (or, with --by-area, the area hierarchy).

Examples:
  ontoview render taxonomy.json                      # region view as SVG
  ontoview render taxonomy.json -f dot,png --by-area # area view, two formats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (defaults to the input name)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", opts.formats, "output format(s): svg (default), dot, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.byArea, "by-area", false, "render one node per area instead of per region")
	cmd.Flags().IntVar(&opts.maxLabel, "max-label", 0, "truncate signature labels to this many characters")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts *renderOpts) error {
	doc, err := export.ReadFile(path)
	if err != nil {
		return err
	}

	formats := strings.Split(opts.formats, ",")
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	runner := c.newRunner(ctx, opts.noCache)
	defer runner.Close()

	prog := newProgress(c.Logger)
	artifacts, err := runner.Render(ctx, doc, pipeline.Options{
		Formats:        formats,
		ByArea:         opts.byArea,
		MaxLabelLength: opts.maxLabel,
		Logger:         c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d regions", len(doc.Regions)))

	base := opts.output
	if base == "" {
		base = strings.TrimSuffix(path, ".json")
	}
	for _, format := range formats {
		out := base + "." + format
		if err := os.WriteFile(out, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		printFile(out)
	}
	return nil
}
