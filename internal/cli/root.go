// Package cli implements the gothreadpool command line
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	configPath string
	noColor    bool
)

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gothreadpool",
		Short: "Pinned worker pool with category routing",
		Long: `gothreadpool runs a pool of OS-thread-bound workers behind a dispatch
strategy and drives it with a synthetic load.

Examples:
  # run for 10s with the category strategy on 8 workers
  gothreadpool run --strategy category --workers 8 --duration 10s

  # print the effective configuration
  gothreadpool config --config configs/gothreadpool.yaml`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(newRunCommand())
	root.AddCommand(newConfigCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func writef(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
