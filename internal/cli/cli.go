// Package cli implements the flatface command-line interface.
//
// The flatten command loads a mesh file, resolves the polygon selection once,
// runs the flattener and writes the result. The whole run is one unit: when it
// is interrupted, the vertex positions are restored before returning. The
// measure command reports how far the polygons of a file are from planar.
//
// All commands support --verbose (-v) for debug-level logging, the logger is
// passed through context.Context.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const appName = "flatface"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var (
	version = "dev"
	commit  = "none"
)

// SetVersion sets the version shown by --version, usually injected with ldflags
func SetVersion(v, c string) {
	version = v
	commit = c
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Flatface flattens the polygons of a mesh",
		Long:         `Flatface moves the vertices of non-planar polygons onto the plane through their center, pass after pass, until every selected polygon is flat.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(appName + " {{.Version}}\ncommit: " + commit + "\n")

	root.AddCommand(c.flattenCommand())
	root.AddCommand(c.measureCommand())

	return root
}
