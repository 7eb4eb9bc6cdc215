package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/giantswarm/parallel-prompt/internal/config"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "parallel-prompt",
		Short: "Benchmark serial against parallel LLM prompting",
		Long: `parallel-prompt measures whether splitting one large LLM request into many
small concurrent requests answers faster than sending it as a single request.

For every task it times one serial call against N parallel calls, counts the
completion tokens of both, and reports the raw and token-normalized speedup.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			settings = cfg
			return nil
		},
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newE2ECmd())
	root.AddCommand(newSweepCmd())
	root.AddCommand(newJudgeCmd())
	root.AddCommand(newTasksCmd())

	defaults := config.Default()
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().String("config", "", "Path to a YAML config file (default ./parallel-prompt.yaml)")
	root.PersistentFlags().String("endpoint", defaults.Endpoint, "OpenAI-compatible API endpoint URL")
	root.PersistentFlags().String("api-key", "", "API key (or set OPENAI_API_KEY)")
	root.PersistentFlags().String("model", defaults.Model, "Model answering the benchmark prompts")
	root.PersistentFlags().Int("max-in-flight", defaults.MaxInFlight, "Maximum concurrent requests. 0 means unbounded")
	root.PersistentFlags().Float64("rps", defaults.RPS, "Maximum requests per second. 0 means unlimited")
	root.PersistentFlags().Duration("timeout", defaults.Timeout, "Overall timeout (e.g. 30m, 1h). 0 means no timeout")

	return root
}

// settings is resolved once per invocation before any command runs.
var settings = config.Default()

var (
	buildCommit = "unknown"
	buildDate   = "unknown"
)

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// SetBuildInfo sets the commit and build date for the version command.
func SetBuildInfo(commit, date string) {
	buildCommit = commit
	buildDate = date
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "parallel-prompt version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// commandContext returns the command context, cancelled on interrupt and
// after the configured timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	if settings.Timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, settings.Timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
