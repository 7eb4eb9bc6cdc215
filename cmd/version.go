package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of parallel-prompt",
		Run: func(cmd *cobra.Command, args []string) {
			commit, date, goVersion := buildDetails()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "parallel-prompt version %s\n", cmd.Root().Version)
			_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
			_, _ = fmt.Fprintf(out, "  built:  %s\n", date)
			_, _ = fmt.Fprintf(out, "  go:     %s\n", goVersion)
		},
	}
}

// buildDetails prefers the values set at link time and falls back to the VCS
// stamp the go command embeds in the binary.
func buildDetails() (commit, date, goVersion string) {
	commit, date, goVersion = buildCommit, buildDate, "unknown"

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, date, goVersion
	}
	goVersion = info.GoVersion
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "unknown":
			commit = s.Value
		case s.Key == "vcs.time" && date == "unknown":
			date = s.Value
		}
	}
	return commit, date, goVersion
}
