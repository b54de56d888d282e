package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/evidence-cli/internal/pipeline"
)

var (
	runTopic       string
	runKeywords    []string
	runCompetitors []string
	runContentID   string
	runFormat      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the evidence bundle for a single topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		req := pipeline.Request{
			ContentID:      runContentID,
			Topic:          runTopic,
			Keywords:       runKeywords,
			CompetitorURLs: runCompetitors,
		}
		if err := req.Validate(); err != nil {
			return err
		}

		env, err := initPipeline(ctx, "run")
		if err != nil {
			return err
		}
		defer env.Close()

		bundle := env.Engine.Run(ctx, req)
		zap.L().Info("evidence complete",
			zap.String("topic", req.Topic),
			zap.Int("confidence", bundle.OverallConfidence),
		)

		return writeOutput(cmd.OutOrStdout(), runFormat, bundle)
	},
}

func init() {
	runCmd.Flags().StringVar(&runTopic, "topic", "", "content topic (required)")
	runCmd.Flags().StringSliceVar(&runKeywords, "keyword", nil, "target keyword (repeatable)")
	runCmd.Flags().StringSliceVar(&runCompetitors, "competitor", nil, "competitor page URL (repeatable)")
	runCmd.Flags().StringVar(&runContentID, "content-id", "", "persist the bundle under this content id")
	runCmd.Flags().StringVar(&runFormat, "format", "json", "output format: json or yaml")
	_ = runCmd.MarkFlagRequired("topic")
	rootCmd.AddCommand(runCmd)
}
