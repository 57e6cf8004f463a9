package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/akmonengine/flatface"
	"github.com/akmonengine/flatface/config"
	"github.com/akmonengine/flatface/meshio"
)

type measureOpts struct {
	tolerance float64 // normalized deviation above which a polygon is non planar
	weld      float64
	workers   int
}

func (c *CLI) measureCommand() *cobra.Command {
	opts := measureOpts{}

	cmd := &cobra.Command{
		Use:   "measure <input>",
		Short: "Report how far the polygons of a mesh are from planar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			m, err := meshio.Load(args[0])
			if err != nil {
				return err
			}
			if opts.weld > 0 {
				vertices, polygons := flatface.Weld(m, opts.weld)
				logger.Debug("Welded vertices", "removed", vertices, "collapsed_polygons", polygons)
			}

			diagonal := m.Bounds().Diagonal()
			planarity := flatface.Measure(m.Polygons, opts.tolerance*diagonal, opts.workers)
			return printPlanarity(cmd.OutOrStdout(), planarity, diagonal)
		},
	}

	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", config.Default().Tolerance, "normalized deviation above which a polygon is non planar")
	cmd.Flags().Float64Var(&opts.weld, "weld", 0, "merge vertices closer than this distance before measuring")
	cmd.Flags().IntVar(&opts.workers, "workers", runtime.NumCPU(), "goroutines used to measure")

	return cmd
}

func printPlanarity(w io.Writer, planarity flatface.Planarity, diagonal float64) error {
	worst := "-"
	if planarity.Worst != nil {
		worst = fmt.Sprintf("polygon %d", planarity.Worst.Index)
	}

	nonPlanar := styleNumber
	if planarity.NonPlanar > 0 {
		nonPlanar = styleWarning
	}

	rows := []struct {
		label string
		value string
	}{
		{"polygons", styleNumber.Render(fmt.Sprint(planarity.Polygons))},
		{"degenerate", styleNumber.Render(fmt.Sprint(planarity.Degenerate))},
		{"non-planar", nonPlanar.Render(fmt.Sprint(planarity.NonPlanar))},
		{"max", styleNumber.Render(fmt.Sprintf("%g", planarity.MaxDeviation))},
		{"normalized", styleNumber.Render(fmt.Sprintf("%g", planarity.Normalized(diagonal)))},
		{"mean", styleNumber.Render(fmt.Sprintf("%g", planarity.MeanDeviation))},
		{"worst", worst},
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(w, styleLabel.Render(row.label)+row.value); err != nil {
			return err
		}
	}
	return nil
}
