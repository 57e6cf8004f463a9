package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akmonengine/flatface"
	"github.com/akmonengine/flatface/mesh"
	"github.com/akmonengine/flatface/meshio"
)

// twoWarpedQuads has a warped quad in group "top" and a less warped one in group "bottom"
const twoWarpedQuads = `v 0 0 0
v 1 0 0.2
v 1 1 0
v 0 1 0.2
v 0 0 -2
v 1 0 -1.9
v 1 1 -2
v 0 1 -1.9
g top
f 1 2 3 4
g bottom
f 5 6 7 8
`

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quads.obj")
	if err := os.WriteFile(path, []byte(twoWarpedQuads), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer

	c := New(&logs, LogDebug)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)

	err := root.ExecuteContext(ctx)
	return logs.String() + out.String(), err
}

func deviations(t *testing.T, path string) []float64 {
	t.Helper()
	m, err := meshio.Load(path)
	if err != nil {
		t.Fatalf("Load(%s) error = %v", path, err)
	}

	result := make([]float64, len(m.Polygons))
	for i, p := range m.Polygons {
		result[i], _ = flatface.Deviation(p)
	}
	return result
}

func TestFlattenCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		flat []bool
	}{
		{"all", []string{"--all"}, []bool{true, true}},
		{"faces", []string{"--faces", "1"}, []bool{false, true}},
		{"group", []string{"--group", "top"}, []bool{true, false}},
		{"nothing selected", nil, []bool{false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeInput(t)
			output := filepath.Join(filepath.Dir(input), "out.obj")

			args := append([]string{"flatten", input, "-o", output}, tt.args...)
			logs, err := execute(t, context.Background(), args...)
			if err != nil {
				t.Fatalf("flatten %v error = %v\n%s", tt.args, err, logs)
			}

			for i, deviation := range deviations(t, output) {
				if flat := deviation < 1e-9; flat != tt.flat[i] {
					t.Errorf("polygon %d deviation = %v, flat = %v, want %v", i, deviation, flat, tt.flat[i])
				}
			}
		})
	}
}

func TestFlattenCommand_NothingSelectedWarns(t *testing.T) {
	logs, err := execute(t, context.Background(), "flatten", writeInput(t))
	if err != nil {
		t.Fatalf("flatten error = %v", err)
	}
	if !strings.Contains(logs, "No polygon selected") {
		t.Errorf("logs should warn about the empty selection:\n%s", logs)
	}
}

func TestFlattenCommand_DefaultOutput(t *testing.T) {
	input := writeInput(t)

	if _, err := execute(t, context.Background(), "flatten", input, "--all", "-n", "3"); err != nil {
		t.Fatalf("flatten error = %v", err)
	}

	output := defaultOutput(input)
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("default output %s not written: %v", output, err)
	}
	// the input is left untouched
	if d := deviations(t, input); d[0] < 0.01 {
		t.Errorf("input file was modified, deviation = %v", d[0])
	}
}

func TestFlattenCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected error
	}{
		{"face out of range", []string{"--faces", "2"}, mesh.ErrIndexOutOfRange},
		{"unknown group", []string{"--group", "side"}, nil},
		{"zero iterations", []string{"--all", "-n", "0"}, nil},
		{"missing config", []string{"--config", "missing.toml"}, os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeInput(t)
			output := filepath.Join(filepath.Dir(input), "out.obj")

			args := append([]string{"flatten", input, "-o", output}, tt.args...)
			_, err := execute(t, context.Background(), args...)
			if err == nil {
				t.Fatalf("flatten %v should fail", tt.args)
			}
			if tt.expected != nil && !errors.Is(err, tt.expected) {
				t.Errorf("flatten %v error = %v, want %v", tt.args, err, tt.expected)
			}
			if _, statErr := os.Stat(output); statErr == nil {
				t.Errorf("output written although flatten failed")
			}
		})
	}
}

func TestFlattenCommand_Canceled(t *testing.T) {
	input := writeInput(t)
	output := filepath.Join(filepath.Dir(input), "out.obj")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := execute(t, ctx, "flatten", input, "--all", "-o", output)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("flatten error = %v, want %v", err, context.Canceled)
	}
	if _, statErr := os.Stat(output); statErr == nil {
		t.Errorf("output written although flatten was canceled")
	}
}

func TestResolveConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flatface.toml")
	if err := os.WriteFile(path, []byte("iterations = 4\nselected_only = false\nworkers = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(&bytes.Buffer{}, LogInfo)
	cmd := c.flattenCommand()
	if err := cmd.ParseFlags([]string{"--config", path, "--workers", "3"}); err != nil {
		t.Fatal(err)
	}

	// the opts bound by flattenCommand are private to it, read the values back from the flag set
	configPath, _ := cmd.Flags().GetString("config")
	workers, _ := cmd.Flags().GetInt("workers")
	iterations, _ := cmd.Flags().GetInt("iterations")

	cfg, err := resolveConfig(cmd.Flags(), flattenOpts{configPath: configPath, workers: workers, iterations: iterations})
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}

	// unset flags keep the file values, set flags override them
	if cfg.Iterations != 4 || cfg.SelectedOnly || cfg.Workers != 3 {
		t.Errorf("resolveConfig() = %+v", cfg)
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{"mesh.obj", "mesh.flat.obj"},
		{"dir/scan.ply", "dir/scan.flat.ply"},
		{"a.b.obj", "a.b.flat.obj"},
	}

	for _, tt := range tests {
		if result := defaultOutput(tt.input); result != tt.expected {
			t.Errorf("defaultOutput(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestFlattenCommand_WeldDropsCollapsedPolygons(t *testing.T) {
	// polygon 1 collapses into an edge once welded, polygon 2 is a warped quad
	input := filepath.Join(t.TempDir(), "split.obj")
	content := `v 0 0 0
v 1 0 0
v 0 1 0
v 1 0 0.0001
v 0 1 0.0001
v 1 0 -0.0001
v 3 0 0
v 4 0 0.2
v 4 1 0
v 3 1 0.2
f 1 2 3
f 4 5 6
f 7 8 9 10
`
	if err := os.WriteFile(input, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(filepath.Dir(input), "out.obj")

	if _, err := execute(t, context.Background(), "flatten", input, "--weld", "0.001", "--faces", "2", "-o", output); err != nil {
		t.Fatalf("flatten error = %v", err)
	}

	d := deviations(t, output)
	if len(d) != 2 {
		t.Fatalf("output has %d polygons, want 2", len(d))
	}
	// --faces indexes the polygons of the input file, before welding
	if d[1] >= 1e-9 {
		t.Errorf("selected quad deviation = %v, want flat", d[1])
	}
}
