package cmd

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/giantswarm/parallel-prompt/internal/judge"
	"github.com/giantswarm/parallel-prompt/internal/report"
)

func newJudgeCmd() *cobra.Command {
	var (
		concurrency int
		seed        uint64
	)

	cmd := &cobra.Command{
		Use:   "judge <results-file>",
		Short: "Judge serial against parallel answers using an LLM",
		Long: `Show the serial answer and the joined parallel answers of every task in a
JSON results file to a judge model, in random order. The judge picks the
better answer for accuracy, grammar, detail and overall preference.

Judgements are written next to the results file as <name>_judgements.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resultsFile := args[0]

			if _, err := os.Stat(resultsFile); os.IsNotExist(err) {
				return fmt.Errorf("results file not found: %s", resultsFile)
			}

			if !cmd.Flags().Changed("seed") {
				seed = rand.Uint64()
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			cfg := *settings
			cfg.Model = settings.JudgeModel
			j := judge.NewJudge(newLLMClient(&cfg), judge.Config{
				Model:       settings.JudgeModel,
				Concurrency: concurrency,
				Seed:        seed,
			})

			fmt.Fprintf(cmd.OutOrStdout(), "Judging: %s\n", resultsFile)
			fmt.Fprintf(cmd.OutOrStdout(), "Model: %s\n", settings.JudgeModel)
			fmt.Fprintf(cmd.OutOrStdout(), "Seed: %d\n", seed)

			output, err := j.JudgeFile(ctx, resultsFile)
			if err != nil {
				return err
			}

			judgementsFile, err := judge.WriteJudgementFile(output, resultsFile)
			if err != nil {
				return err
			}

			if err := report.RenderJudgeStats(cmd.OutOrStdout(), output.Stats); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nJudgements written to: %s\n", judgementsFile)
			return nil
		},
	}

	cmd.Flags().String("judge-model", judge.DefaultJudgeModel, "Judge model name")
	cmd.Flags().IntVar(&concurrency, "concurrency", judge.DefaultConcurrency, "Judgements in flight")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for the response order (default random)")

	return cmd
}
