package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set with -ldflags at release time
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			writef(out, "gothreadpool\n")
			writef(out, "  Version:    %s\n", Version)
			writef(out, "  Git Commit: %s\n", GitCommit)
			writef(out, "  Build Time: %s\n", BuildTime)
			writef(out, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
