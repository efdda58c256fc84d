package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/healthml/strokepipe/dataset"
	"github.com/healthml/strokepipe/pipeline"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run the full training pipeline and print the evaluation report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFromFlags(cmd)
		if err != nil {
			return err
		}
		result, err := pipeline.Run(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		printReport(cmd, result.Report)
		return nil
	},
}

func init() {
	addPipelineFlags(trainCmd)
	trainCmd.Flags().Float64("proportion", 0.75, "share of cleaned rows used for training")
	trainCmd.Flags().Int("folds", 10, "number of cross-validation folds")
	trainCmd.Flags().IntSlice("grid", []int{3, 4, 5}, "candidate per-split feature counts")
}

// addPipelineFlags registers the flags train and predict share.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("data", "", "path to the stroke CSV file")
	cmd.Flags().Int("trees", 500, "number of trees in the forest")
	cmd.Flags().Uint64("seed", 1, "seed for every stochastic stage")
	_ = cmd.MarkFlagRequired("data")
}

func configFromFlags(cmd *cobra.Command) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()

	var err error
	if cfg.DataPath, err = cmd.Flags().GetString("data"); err != nil {
		return cfg, err
	}
	if cfg.TrainProportion, err = cmd.Flags().GetFloat64("proportion"); err != nil {
		return cfg, err
	}
	if cfg.Folds, err = cmd.Flags().GetInt("folds"); err != nil {
		return cfg, err
	}
	if cfg.Grid, err = cmd.Flags().GetIntSlice("grid"); err != nil {
		return cfg, err
	}
	if cfg.Trees, err = cmd.Flags().GetInt("trees"); err != nil {
		return cfg, err
	}
	if cfg.Seed, err = cmd.Flags().GetUint64("seed"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func printReport(cmd *cobra.Command, report pipeline.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "rows: %d (train %d, test %d)\n",
		report.Rows, report.TrainRows, report.TestRows)
	fmt.Fprintf(out, "labels: %d stroke, %d no_stroke\n\n",
		report.Summary.ByStroke[dataset.Stroke], report.Summary.ByStroke[dataset.NoStroke])

	fmt.Fprintln(out, "numeric columns:")
	fmt.Fprintf(out, "  %-18s %-6s %-9s %-9s %-9s %s\n", "column", "n", "mean", "stddev", "min", "max")
	for _, col := range report.Summary.Numeric {
		fmt.Fprintf(out, "  %-18s %-6d %-9.3f %-9.3f %-9.3f %.3f\n",
			col.Name, col.Count, col.Mean, col.StdDev, col.Min, col.Max)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "leaderboard:")
	fmt.Fprintf(out, "  %-6s %-10s %-8s %-8s %s\n", "mtry", "metric", "mean", "stderr", "folds")
	for _, row := range report.Leaderboard {
		fmt.Fprintf(out, "  %-6d %-10s %-8.4f %-8.4f %d\n",
			row.MTry, row.Metric, row.Mean, row.StdErr, row.N)
	}

	fmt.Fprintf(out, "\nselected mtry: %d\n", report.BestMTry)
	fmt.Fprintf(out, "test accuracy: %.4f\n", report.TestAccuracy)
	if math.IsNaN(report.TestAUC) {
		fmt.Fprintln(out, "test roc_auc:  undefined (single-class test split)")
	} else {
		fmt.Fprintf(out, "test roc_auc:  %.4f\n", report.TestAUC)
	}
	fmt.Fprintf(out, "\n%s\n", report.Confusion)
}
