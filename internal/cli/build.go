package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sersmask/pkg/batch"
	"github.com/matzehuels/sersmask/pkg/cache"
	"github.com/matzehuels/sersmask/pkg/catalog"
	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/pipeline"
	"github.com/matzehuels/sersmask/pkg/render"
)

// stdoutPath makes build write a single artifact to stdout.
const stdoutPath = "-"

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output  string // output file (single format) or base path
	formats string // comma-separated formats
	layers  string // comma-separated layer filter for SVG
	record  bool   // record the run in the catalog
	catalog string // catalog path (default under the data dir)
	refresh bool   // skip cache reads
	cache   cacheOpts
	render  pipeline.Options // labels, detailed, polygons, png width
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{}
	opts.render.PNGWidth = pipeline.DefaultPNGWidth

	cmd := &cobra.Command{
		Use:   "build [batch.toml|batch.yaml|batch.json]",
		Short: "Build a photomask layout from a batch file",
		Long: `Build a photomask layout from a batch file.

Every waveguide of the batch is planned, placed one below the other and
exported. GDS is the default output; SVG, PNG, JSON and the section-chain
diagrams (dot, chain) are previews of the same design.

Rendered artifacts are cached locally, so rebuilding an unchanged batch only
replays the geometry.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeBatchFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format, - for stdout) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): "+render.FormatList()+" (comma-separated, default gds)")
	cmd.Flags().StringVar(&opts.layers, "layers", "", "restrict SVG previews to these layers, e.g. 1/0,gold")
	cmd.Flags().BoolVar(&opts.render.Labels, "labels", false, "label waveguides in SVG previews")
	cmd.Flags().BoolVar(&opts.render.Detailed, "detailed", false, "show dimensions in chain diagrams")
	cmd.Flags().BoolVar(&opts.render.Polygons, "polygons", false, "include polygon outlines in JSON output")
	cmd.Flags().Float64Var(&opts.render.PNGWidth, "png-width", opts.render.PNGWidth, "PNG preview width in inches")
	cmd.Flags().BoolVar(&opts.record, "record", false, "record the run in the catalog")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "catalog database (default ~/.local/share/sersmask/catalog.db)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts")
	opts.cache.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// runBuild loads the batch, runs the pipeline and writes the artifacts.
func (c *CLI) runBuild(ctx context.Context, input string, opts *buildOpts) error {
	prog := newProgress(c.Logger)

	b, err := batch.Load(input)
	if err != nil {
		return fmt.Errorf("load batch %s: %w", input, err)
	}

	popts := opts.render
	popts.Formats = parseFormats(opts.formats)
	popts.Layers = splitList(opts.layers)
	popts.Refresh = opts.refresh
	popts.Logger = c.Logger
	if err := popts.Validate(); err != nil {
		return err
	}
	if opts.output == stdoutPath && len(popts.Formats) > 1 {
		return fmt.Errorf("--output - needs exactly one format, got %d", len(popts.Formats))
	}

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building %s...", b.Name))
	spinner.Start()
	restore := narrate(spinner)

	res, err := runner.Execute(ctx, b, popts)
	restore()
	if err != nil {
		if errors.IsLayout(err) {
			spinner.StopWithError("Layout rejected: " + errors.UserMessage(err))
		} else {
			spinner.StopWithError("Build failed")
		}
		return fmt.Errorf("build %s: %w", input, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(res.Artifacts, popts.Formats, input, opts.output)
	if err != nil {
		return err
	}

	var run catalog.Run
	if opts.record {
		if run, err = recordRun(ctx, opts.catalog, b, res, popts.Formats); err != nil {
			return err
		}
	}

	prog.done("built", "batch", b.Name, "waveguides", res.Stats.Waveguides)
	if opts.output == stdoutPath {
		return nil
	}

	printSuccess("Build complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(res.Stats.Waveguides, res.Stats.Polygons, res.CacheInfo.RenderHit)
	if run.ID != "" {
		printDetail("Recorded run %s", run.ID)
	}
	printNewline()
	printNextStep("Inspect", appName+" inspect "+input)

	return nil
}

// recordRun stores a finished build in the catalog.
func recordRun(ctx context.Context, path string, b *batch.Batch, res *pipeline.Result, formats []string) (catalog.Run, error) {
	cat, err := openCatalog(path)
	if err != nil {
		return catalog.Run{}, fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	batchHash, err := cache.HashJSON(b)
	if err != nil {
		return catalog.Run{}, fmt.Errorf("hash batch: %w", err)
	}
	run, err := cat.Record(ctx, res.Design, catalog.RunMeta{BatchHash: batchHash, Formats: formats})
	if err != nil {
		return catalog.Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// writeArtifacts writes every artifact and returns the paths written.
// A single format goes to output when it is set; otherwise each format is
// written next to basePath(output, input) with its own extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	base := basePath(output, input)
	var paths []string
	for _, f := range formats {
		path := base + render.Format(f).Ext()
		if len(formats) == 1 && output != "" {
			path = output
		}

		if path != stdoutPath {
			if err := errors.ValidateOutputPath(path); err != nil {
				return nil, err
			}
		}
		out, err := openOutput(path)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		_, err = out.Write(artifacts[f])
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		if path != stdoutPath {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.gds, .svg, ...), it strips that extension.
func basePath(output, input string) string {
	if output == "" || output == stdoutPath {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	// ".chain.svg" ends in ".svg", so chain goes first.
	for _, f := range append([]render.Format{render.FormatChain}, render.Formats...) {
		if strings.HasSuffix(output, f.Ext()) {
			return strings.TrimSuffix(output, f.Ext())
		}
	}
	return output
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// For "-" it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == stdoutPath {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
