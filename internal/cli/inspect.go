package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sersmask/pkg/batch"
	"github.com/matzehuels/sersmask/pkg/pipeline"
	"github.com/matzehuels/sersmask/pkg/shape"
	"github.com/matzehuels/sersmask/pkg/waveguide"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

// inspectCommand creates the inspect command, which plans a batch without
// placing it.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		asJSON bool
		index  int
		cc     cacheOpts
	)

	cmd := &cobra.Command{
		Use:   "inspect [batch.toml|batch.yaml|batch.json]",
		Short: "Show the derived geometry and shape sequence of each waveguide",
		Long: `Show the derived geometry and shape sequence of each waveguide.

The batch is validated and planned but not placed. The output lists the
registered cross-sections and, per waveguide, its derived dimensions and the
ordered shape requests the placement engine would replay.

With --json the plan is printed as JSON (the same document as POST /v1/plan).`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeBatchFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := batch.Load(args[0])
			if err != nil {
				return fmt.Errorf("load batch %s: %w", args[0], err)
			}
			if index >= b.Len() {
				return fmt.Errorf("--index %d out of range (batch has %d waveguides)", index, b.Len())
			}
			if asJSON {
				return c.runInspectJSON(cmd.Context(), cmd.OutOrStdout(), b, cc)
			}
			return c.runInspect(cmd.Context(), cmd.OutOrStdout(), b, index)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	cmd.Flags().IntVarP(&index, "index", "i", -1, "only show the waveguide at this index")
	cc.register(cmd)

	return cmd
}

// runInspect plans b and prints the cross-sections and sequences as tables.
func (c *CLI) runInspect(ctx context.Context, w io.Writer, b *batch.Batch, index int) error {
	reg := xsection.NewRegistry()
	builder := waveguide.NewBuilder(reg, waveguide.WithLogger(c.Logger))
	runner := pipeline.NewRunner(nil, nil, c.Logger)

	wgs, err := runner.Plan(ctx, builder, b.Specs, pipeline.Options{Logger: c.Logger})
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	fmt.Fprintln(w, StyleTitle.Render(b.Name))
	fmt.Fprintln(w, crossSectionTable(reg.All()))

	for i, wg := range wgs {
		if index >= 0 && i != index {
			continue
		}
		title := fmt.Sprintf("waveguide %d", i)
		if wg.Name != "" {
			title += " " + StyleHighlight.Render(wg.Name)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleTitle.Render(title))
		fmt.Fprintln(w, derivedTable(wg.Derived))
		fmt.Fprintln(w, sequenceTable(wg.Shapes))
	}
	return nil
}

// runInspectJSON prints the cached plan document.
func (c *CLI) runInspectJSON(ctx context.Context, w io.Writer, b *batch.Batch, cc cacheOpts) error {
	runner, err := c.newRunner(ctx, cc)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	data, _, err := runner.PlanJSON(ctx, b, pipeline.Options{Logger: c.Logger})
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func crossSectionTable(xss []xsection.CrossSection) string {
	t := newTable("cross-section", "layer", "grow", "accuracy")
	for _, xs := range xss {
		for _, l := range xs.Layers {
			t.Row(xs.Name, layerSwatch(l.Layer), num(l.Grow), num(l.Accuracy))
		}
	}
	return t.String()
}

func derivedTable(d waveguide.Derived) string {
	t := newTable("quantity", "µm")
	t.Row("slot", num(d.Slot))
	t.Row("gap", num(d.Gap))
	t.Row("input", num(d.Input))
	t.Row("output", num(d.Output))
	if d.Taper.Length != 0 {
		t.Row("taper", fmt.Sprintf("%s × %s", num(d.Taper.Length), num(d.Taper.Width)))
	}
	if d.TaperOut.Length != 0 {
		t.Row("taper out", fmt.Sprintf("%s × %s", num(d.TaperOut.Length), num(d.TaperOut.Width)))
	}
	if d.Bend.Angle != 0 {
		t.Row("bend", fmt.Sprintf("%s° r=%s sep=%s", num(d.Bend.Angle), num(d.Bend.Radius), num(d.Bend.Sep)))
	}
	if d.MetalLength != 0 {
		t.Row("metal", fmt.Sprintf("%s (span %s, margin %s)", num(d.MetalLength), num(d.MetalSpan), num(d.ActiveMargin)))
	}
	return t.String()
}

func sequenceTable(seq shape.Sequence) string {
	t := newTable("#", "kind", "xs", "length", "shape")
	for i, r := range seq {
		row := []string{strconv.Itoa(i), string(r.Kind()), "", "", ""}
		switch s := r.(type) {
		case shape.Straight:
			row[2], row[3], row[4] = s.XS, num(s.Length), "w="+num(s.Width)
		case shape.Taper:
			row[2], row[3], row[4] = s.XS, num(s.Length), fmt.Sprintf("w=%s→%s", num(s.Width1), num(s.Width2))
		case shape.EulerBend:
			row[2], row[3], row[4] = s.XS, num(s.Len()), fmt.Sprintf("%s° r=%s", num(s.Angle), num(s.Radius))
		case shape.StackMarker:
			row[4] = "next shares previous anchor"
		}
		t.Row(row...)
	}
	return t.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
