// Package cmd assembles the agrisight command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mlaakso/agrisight-go/cmd/analyze"
	"github.com/mlaakso/agrisight-go/cmd/crops"
	"github.com/mlaakso/agrisight-go/cmd/serve"
	"github.com/mlaakso/agrisight-go/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "agrisight",
		Short: "AgriSight CLI",
		Long:  "Satellite land-cover analysis and profit-ranked crop recommendations.",
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(
		analyze.Command(settings),
		serve.Command(settings),
		crops.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := cmd.Flags().Parse(args); err != nil {
			return err
		}
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags shared by every subcommand.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().StringVar(&settings.Imagery.Provider, "imagery", viper.GetString("imagery.provider"), "Imagery provider (arcgis/mapbox)")
	rootCmd.PersistentFlags().StringVar(&settings.Classifier.Endpoint, "classifier", viper.GetString("classifier.endpoint"), "Classification model endpoint URL")
	rootCmd.PersistentFlags().IntVar(&settings.Analysis.MaxConcurrency, "concurrency", viper.GetInt("analysis.maxconcurrency"), "Maximum concurrent sample classifications")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
	}
}
