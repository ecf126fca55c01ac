// Command drevalgo runs drug response prediction experiments described by a
// YAML configuration: it loads the response data, trains and evaluates the
// configured models under the selected cross-validation mode, and writes the
// prediction datasets to the output directory.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/drevalgo/core/model"
	"github.com/YuminosukeSato/drevalgo/dataset"
	"github.com/YuminosukeSato/drevalgo/experiment"
	"github.com/YuminosukeSato/drevalgo/linear"
	"github.com/YuminosukeSato/drevalgo/pkg/errors"
	"github.com/YuminosukeSato/drevalgo/pkg/log"
)

// modelRegistry maps config model names to constructors.
var modelRegistry = map[string]func() model.DRPModel{
	"LinearRegression": func() model.DRPModel { return linear.NewLinearRegression() },
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "drevalgo",
		Short:         "Drug response prediction experiment suite",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetupLogger(logLevel)
			log.SetupWarnings()
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the experiment described by a YAML config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := experiment.LoadConfig(configPath)
			if err != nil {
				return err
			}
			opts, err := cfg.Options()
			if err != nil {
				return err
			}

			models := make([]model.DRPModel, 0, len(cfg.Models))
			for _, name := range cfg.Models {
				constructor, ok := modelRegistry[name]
				if !ok {
					known := make([]string, 0, len(modelRegistry))
					for k := range modelRegistry {
						known = append(known, k)
					}
					return errors.NewConfigurationError("run", "model", name, known...)
				}
				models = append(models, constructor())
			}

			responseData, err := dataset.LoadResponseCSV(cfg.ResponsePath)
			if err != nil {
				return err
			}

			return experiment.RunExperiment(models, responseData, opts)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "experiment.yaml", "path to the experiment config")
	return cmd
}
