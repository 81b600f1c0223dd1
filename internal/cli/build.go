package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ontoview/ontoview/pkg/export"
	"github.com/ontoview/ontoview/pkg/pipeline"
	"github.com/ontoview/ontoview/pkg/store"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	subroot  int64  // concept the analyzed subhierarchy is rooted at
	inferred bool   // use the inferred relationship view
	output   string // output base path
	formats  string // comma-separated output formats
	byArea   bool   // render the area view instead of the region view
	maxLabel int    // truncate signature labels
	refresh  bool   // bypass the build cache
	noCache  bool   // disable caching entirely
	save     bool   // persist the build to the configured store
}

// buildCommand creates the build command: derive a region taxonomy from an
// RF2 snapshot release directory.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{output: "taxonomy", formats: pipeline.FormatJSON}

	cmd := &cobra.Command{
		Use:   "build <release-dir>",
		Short: "Build a region taxonomy from an RF2 release",
		Long: `Build derives the abstraction network for an RF2 snapshot release:
concepts are partitioned into regions of identical relationship signatures,
regions are grouped into areas, and the region hierarchy is arranged by
signature containment.

Examples:
  ontoview build ./SnomedCT_Release                         # whole release
  ontoview build ./SnomedCT_Release --subroot 404684003     # one subhierarchy
  ontoview build ./SnomedCT_Release -f json,svg -o finding  # multiple outputs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().Int64Var(&opts.subroot, "subroot", 0, "root concept of the subhierarchy to analyze (default: release root)")
	cmd.Flags().BoolVar(&opts.inferred, "inferred", false, "use the inferred relationship view instead of the stated one")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output base path (extension added per format)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", opts.formats, "output format(s): json (default), dot, svg, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.byArea, "by-area", false, "render one node per area instead of per region")
	cmd.Flags().IntVar(&opts.maxLabel, "max-label", 0, "truncate signature labels to this many characters")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the build cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.save, "save", false, "persist the build to the configured store")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, releaseDir string, opts *buildOpts) error {
	runner := c.newRunner(ctx, opts.noCache)
	defer runner.Close()

	pipeOpts := pipeline.Options{
		ReleaseDir:     releaseDir,
		SubrootID:      opts.subroot,
		Inferred:       opts.inferred,
		Refresh:        opts.refresh,
		Formats:        strings.Split(opts.formats, ","),
		ByArea:         opts.byArea,
		MaxLabelLength: opts.maxLabel,
		Logger:         c.Logger,
	}

	spinner := newSpinner(ctx, "Building taxonomy from "+filepath.Base(releaseDir))
	spinner.Start()
	result, err := runner.Execute(ctx, pipeOpts)
	spinner.Stop()
	if err != nil {
		return err
	}

	printSuccess("Built taxonomy %s", StyleHighlight.Render(result.Document.BuildID))
	printStats(result.Stats.ConceptCount, result.Stats.AreaCount, result.Stats.RegionCount,
		result.CacheInfo.BuildHit)

	for _, format := range pipeOpts.Formats {
		path := opts.output + "." + format
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	if opts.save {
		if err := c.saveBuild(ctx, result.Document); err != nil {
			return err
		}
		printDetail("Saved build %s", result.Document.BuildID)
	}

	printNewline()
	printNextStep("Inspect the result", "ontoview stats "+opts.output+".json")
	return nil
}

// saveBuild persists the document to the configured Mongo store.
func (c *CLI) saveBuild(ctx context.Context, doc export.Document) error {
	if c.Config.Mongo.URI == "" {
		return fmt.Errorf("no store configured (set [mongo] uri in the config file)")
	}
	st, err := store.NewMongoStore(ctx, store.MongoConfig{
		URI:        c.Config.Mongo.URI,
		Database:   c.Config.Mongo.Database,
		Collection: c.Config.Mongo.Collection,
	})
	if err != nil {
		return err
	}
	defer st.Close(ctx)
	return st.Save(ctx, doc)
}
