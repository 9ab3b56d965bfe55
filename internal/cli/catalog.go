package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sersmask/pkg/catalog"
)

// catalogCommand creates the catalog command for browsing recorded builds.
func (c *CLI) catalogCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List and inspect recorded builds",
		Long: `List and inspect recorded builds.

Builds run with --record (or served by 'serve --record') are stored in a
SQLite catalog together with the spec and end points of every waveguide.`,
	}
	cmd.PersistentFlags().StringVar(&path, "catalog", "", "catalog database (default ~/.local/share/sersmask/catalog.db)")

	cmd.AddCommand(c.catalogListCommand(&path))
	cmd.AddCommand(c.catalogShowCommand(&path))
	cmd.AddCommand(c.catalogDeleteCommand(&path))

	return cmd
}

// catalogListCommand creates the "catalog list" subcommand.
func (c *CLI) catalogListCommand(path *string) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := openCatalog(*path)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer cat.Close()

			runs, err := cat.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				if runs == nil {
					runs = []catalog.Run{}
				}
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				printInfo("No recorded runs")
				return nil
			}

			t := newTable("id", "name", "created", "waveguides", "polygons", "size (µm)", "formats")
			for _, r := range runs {
				t.Row(
					r.ID,
					r.Name,
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					strconv.Itoa(r.Waveguides),
					strconv.Itoa(r.Polygons),
					fmt.Sprintf("%.1f × %.1f", r.Bounds.Width(), r.Bounds.Height()),
					strings.Join(r.Formats, ","),
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print runs as JSON")

	return cmd
}

// catalogShowCommand creates the "catalog show" subcommand.
func (c *CLI) catalogShowCommand(path *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show a recorded run and its waveguides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := openCatalog(*path)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer cat.Close()

			run, err := cat.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			wgs, err := cat.Waveguides(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, map[string]any{"run": run, "waveguides": wgs})
			}

			printKeyValue("Run", run.ID)
			printKeyValue("Name", run.Name)
			printKeyValue("Created", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			printKeyValue("Batch", run.BatchHash)
			printKeyValue("Bounds", fmt.Sprintf("%.3f × %.3f µm", run.Bounds.Width(), run.Bounds.Height()))
			printNewline()

			t := newTable("#", "id", "name", "start", "end", "shapes", "length")
			for _, w := range wgs {
				t.Row(
					strconv.Itoa(w.Index),
					w.ID,
					w.Name,
					fmt.Sprintf("(%s, %s)", num(w.Start.X), num(w.Start.Y)),
					fmt.Sprintf("(%.3f, %.3f)", w.End.X, w.End.Y),
					strconv.Itoa(w.Shapes),
					fmt.Sprintf("%.3f", w.Length),
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")

	return cmd
}

// catalogDeleteCommand creates the "catalog delete" subcommand.
func (c *CLI) catalogDeleteCommand(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [run-id]",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := openCatalog(*path)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer cat.Close()

			if err := cat.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted run %s", args[0])
			return nil
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
