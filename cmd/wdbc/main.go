// Command wdbc runs the breast cancer diagnosis model comparison:
// load the diagnostic CSV, partition it, train every configured
// classifier, and print an evaluation table.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tksato/wdbc/config"
	"github.com/tksato/wdbc/dataset"
	"github.com/tksato/wdbc/harness"
	"github.com/tksato/wdbc/model"
	"github.com/tksato/wdbc/pkg/log"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "wdbc",
		Short:         "Breast cancer diagnosis model comparison",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML config file (or WDBC_CONFIG)")

	root.AddCommand(newRunCommand(&cfgPath))
	root.AddCommand(newInspectCommand(&cfgPath))
	return root
}

func newRunCommand(cfgPath *string) *cobra.Command {
	var (
		dataPath  string
		fraction  float64
		seed      int64
		threshold float64
		stratify  bool
		sortByAUC bool
		models    []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Train and evaluate all configured models on one partition",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}

			// Flags override file and environment when set explicitly.
			flags := cmd.Flags()
			if flags.Changed("data") {
				cfg.DataPath = dataPath
			}
			if flags.Changed("fraction") {
				cfg.TrainFraction = fraction
			}
			if flags.Changed("seed") {
				cfg.Seed = seed
			}
			if flags.Changed("threshold") {
				cfg.Threshold = threshold
			}
			if flags.Changed("stratify") {
				cfg.Stratify = stratify
			}
			if flags.Changed("sort-by-auc") {
				cfg.SortByAUC = sortByAUC
			}
			if flags.Changed("model") {
				cfg.Models = models
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.DataPath == "" {
				return fmt.Errorf("no dataset given: set --data, data_path in the config file, or WDBC_DATA_PATH")
			}

			log.SetLevel(log.ParseLevel(cfg.LogLevel))
			return runComparison(cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "path to the diagnostic CSV")
	cmd.Flags().Float64Var(&fraction, "fraction", 0.8, "training fraction in (0, 1)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "seed for partitioning and model randomness")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "score cutoff for the confusion matrix")
	cmd.Flags().BoolVar(&stratify, "stratify", false, "preserve class balance across partitions")
	cmd.Flags().BoolVar(&sortByAUC, "sort-by-auc", false, "order the table best AUC first")
	cmd.Flags().StringSliceVar(&models, "model", nil, "models to run (repeatable), default all")
	return cmd
}

func runComparison(cfg *config.Config, out io.Writer) error {
	d, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return err
	}

	var split *dataset.Split
	if cfg.Stratify {
		split, err = dataset.NewStratifiedSplit(d, cfg.TrainFraction, cfg.Seed)
	} else {
		split, err = dataset.NewSplit(d, cfg.TrainFraction, cfg.Seed)
	}
	if err != nil {
		return err
	}

	adapters := make([]model.Adapter, 0, len(cfg.SelectedModels()))
	for _, name := range cfg.SelectedModels() {
		adapters = append(adapters, adapterForName(name, cfg.Seed))
	}

	runner := harness.NewRunner(adapters, harness.WithThreshold(cfg.Threshold))
	report, err := runner.Run(split)
	if err != nil {
		return err
	}

	sink := harness.NewTextSink(out)
	sink.SortByAUC = cfg.SortByAUC
	if err := sink.Write(report); err != nil {
		return err
	}

	if len(report.Succeeded()) == 0 {
		return fmt.Errorf("all models failed")
	}
	return nil
}

func adapterForName(name string, seed int64) model.Adapter {
	switch name {
	case "random_forest":
		return model.NewRandomForest(model.RandomForestParams{Seed: seed})
	case "gradient_boosting":
		return model.NewGradientBoosting(model.GradientBoostingParams{Seed: seed})
	case "xgboost":
		return model.NewXGBoost(model.XGBoostParams{Seed: seed})
	case "mlp":
		return model.NewMLP(model.MLPParams{Seed: seed})
	}
	// Config validation rejects unknown names before this point.
	panic("unknown model " + name)
}

func newInspectCommand(cfgPath *string) *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print dataset shape, class counts, and feature statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("data") {
				cfg.DataPath = dataPath
			}
			if cfg.DataPath == "" {
				return fmt.Errorf("no dataset given: set --data, data_path in the config file, or WDBC_DATA_PATH")
			}

			log.SetLevel(log.ParseLevel(cfg.LogLevel))

			d, err := dataset.Load(cfg.DataPath)
			if err != nil {
				return err
			}
			summary, err := dataset.Summarize(d)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "samples: %d\nfeatures: %d\nbenign: %d\nmalignant: %d\n",
				summary.Samples, len(summary.Features), summary.Benign, summary.Malignant)
			if summary.Unknown > 0 {
				fmt.Fprintf(out, "unknown labels: %d\n", summary.Unknown)
			}

			fmt.Fprintf(out, "\n%-28s %12s %12s %12s %12s\n", "feature", "mean", "stddev", "min", "max")
			for _, fs := range summary.Features {
				fmt.Fprintf(out, "%-28s %12.4f %12.4f %12.4f %12.4f\n",
					fs.Name, fs.Mean, fs.StdDev, fs.Min, fs.Max)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "path to the diagnostic CSV")
	return cmd
}
