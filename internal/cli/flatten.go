package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/akmonengine/flatface"
	"github.com/akmonengine/flatface/config"
	"github.com/akmonengine/flatface/mesh"
	"github.com/akmonengine/flatface/meshio"
)

// flattenOpts holds the command-line flags of the flatten command.
// Flags explicitly set override the values of the config file.
type flattenOpts struct {
	output     string   // output file, defaults to <name>.flat<ext> next to the input
	configPath string   // optional TOML config file
	iterations int      // passes over the selection
	all        bool     // flatten every polygon, ignoring the selection
	faces      []int    // polygon indices to select
	groups     []string // OBJ groups to select
	weld       float64  // weld tolerance applied after loading
	workers    int      // goroutines used to measure planarity
}

func (c *CLI) flattenCommand() *cobra.Command {
	opts := flattenOpts{}

	cmd := &cobra.Command{
		Use:   "flatten <input>",
		Short: "Flatten the selected polygons of an OBJ or PLY mesh",
		Long: `Flatten projects the vertices of each selected polygon onto the plane through
its center, perpendicular to its normal, and repeats the pass so that polygons
sharing vertices settle. Polygons are selected with --faces or --group, --all
flattens every polygon.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			return runFlatten(cmd.Context(), args[0], opts, cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <input>.flat<ext>)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML config file")
	cmd.Flags().IntVarP(&opts.iterations, "iterations", "n", flatface.DEFAULT_ITERATIONS, "how many times to flatten each polygon")
	cmd.Flags().BoolVar(&opts.all, "all", false, "flatten every polygon instead of the selected ones")
	cmd.Flags().IntSliceVar(&opts.faces, "faces", nil, "indices of the polygons to select (0-based)")
	cmd.Flags().StringSliceVar(&opts.groups, "group", nil, "OBJ groups to select")
	cmd.Flags().Float64Var(&opts.weld, "weld", 0, "merge vertices closer than this distance before flattening")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "goroutines used to measure planarity (default NumCPU)")

	return cmd
}

// resolveConfig loads the config file when given, then applies the flags set on the command line
func resolveConfig(flags *pflag.FlagSet, opts flattenOpts) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if flags.Changed("iterations") {
		cfg.Iterations = opts.iterations
	}
	if flags.Changed("all") {
		cfg.SelectedOnly = !opts.all
	}
	if flags.Changed("weld") {
		cfg.WeldTolerance = opts.weld
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}

	return cfg, cfg.Validate()
}

func runFlatten(ctx context.Context, input string, opts flattenOpts, cfg config.Config) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if cfg.AboveSoftMax() {
		logger.Warn("Iteration count above the usual range", "iterations", cfg.Iterations, "soft_max", flatface.SOFT_MAX_ITERATIONS)
	}

	m, err := meshio.Load(input)
	if err != nil {
		return err
	}
	logger.Debug("Loaded mesh", "file", input, "vertices", len(m.Vertices), "polygons", len(m.Polygons))

	// marked before welding, so that --faces refers to the polygons of the file
	if err := markSelection(m, opts); err != nil {
		return err
	}

	if cfg.WeldTolerance > 0 {
		vertices, polygons := flatface.Weld(m, cfg.WeldTolerance)
		logger.Info("Welded vertices", "removed", vertices, "collapsed_polygons", polygons, "tolerance", cfg.WeldTolerance)
	}

	selection := m.Select(cfg.SelectedOnly)
	if len(selection) == 0 {
		logger.Warn("No polygon selected, nothing to flatten", "hint", "use --faces, --group or --all")
	}

	tolerance := cfg.Tolerance * m.Bounds().Diagonal()
	before := flatface.Measure(selection, tolerance, cfg.Workers)
	logPlanarity(logger, "Before", before, m)

	flattener := flatface.NewFlattener(cfg.Iterations)
	subscribeDebug(logger, flattener)

	snapshot := m.Snapshot()
	report, err := flattener.Flatten(ctx, selection)
	if err != nil {
		if restoreErr := m.Restore(snapshot); restoreErr != nil {
			return errors.Join(err, restoreErr)
		}
		return fmt.Errorf("flatten stopped after %d of %d iterations: %w", report.Iterations, cfg.Iterations, err)
	}

	after := flatface.Measure(selection, tolerance, cfg.Workers)
	logPlanarity(logger, "After", after, m)

	output := opts.output
	if output == "" {
		output = defaultOutput(input)
	}
	if err := meshio.Save(output, m); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Flattened %d polygons", len(selection)),
		"iterations", report.Iterations,
		"applied", report.Applied,
		"degenerate", report.Degenerate,
		"malformed", report.Malformed,
		"output", output,
	)
	return nil
}

// markSelection flags the polygons requested with --faces and --group
func markSelection(m *mesh.Mesh, opts flattenOpts) error {
	if err := m.SelectIndices(opts.faces...); err != nil {
		return err
	}
	if len(opts.groups) > 0 && m.SelectGroups(opts.groups...) == 0 {
		return fmt.Errorf("no polygon in group %s", strings.Join(opts.groups, ", "))
	}
	return nil
}

func subscribeDebug(logger *log.Logger, flattener *flatface.Flattener) {
	if logger.GetLevel() > log.DebugLevel {
		return
	}

	flattener.Events.Subscribe(flatface.ON_DEGENERATE, func(event flatface.Event) {
		e := event.(flatface.DegenerateEvent)
		logger.Debug("Degenerate polygon skipped", "polygon", e.Polygon.Index, "iteration", e.Iteration+1)
	})
	flattener.Events.Subscribe(flatface.ON_MALFORMED, func(event flatface.Event) {
		e := event.(flatface.MalformedEvent)
		logger.Debug("Malformed polygon skipped", "polygon", e.Polygon.Index, "iteration", e.Iteration+1)
	})
	flattener.Events.Subscribe(flatface.ON_ITERATION, func(event flatface.Event) {
		e := event.(flatface.IterationEvent)
		logger.Debug("Pass done", "iteration", e.Iteration+1, "polygons", e.Polygons)
	})
}

func logPlanarity(logger *log.Logger, stage string, planarity flatface.Planarity, m *mesh.Mesh) {
	logger.Info(stage,
		"max_deviation", planarity.MaxDeviation,
		"normalized", planarity.Normalized(m.Bounds().Diagonal()),
		"non_planar", planarity.NonPlanar,
	)
}

// defaultOutput turns "mesh.obj" into "mesh.flat.obj"
func defaultOutput(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".flat" + ext
}
