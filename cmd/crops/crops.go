// Package crops implements the standalone crop recommendation
// subcommand, which skips imagery and classification entirely.
package crops

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlaakso/agrisight-go/internal/classifier"
	"github.com/mlaakso/agrisight-go/internal/conf"
	cropengine "github.com/mlaakso/agrisight-go/internal/crops"
)

type options struct {
	lat           float64
	lon           float64
	label         string
	farmSizeHa    float64
	riskTolerance string
	list          bool
}

// Command creates the crops command.
func Command(settings *conf.Settings) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "crops",
		Short: "Rank crops for a location without imagery analysis",
		Long: "Run the crop recommendation engine directly from a known land-cover " +
			"label and latitude-derived climate, or list the crop knowledge base.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "Latitude of the site")
	cmd.Flags().Float64Var(&opts.lon, "lon", 0, "Longitude of the site")
	cmd.Flags().StringVar(&opts.label, "label", classifier.LabelArableLand, "Land-cover label to infer soil from")
	cmd.Flags().Float64Var(&opts.farmSizeHa, "farm-size", 1.0, "Farm size in hectares for profit projections")
	cmd.Flags().StringVar(&opts.riskTolerance, "risk", "medium", "Risk tolerance (low/medium/high)")
	cmd.Flags().BoolVar(&opts.list, "list", false, "List the crop knowledge base instead of ranking")

	return cmd
}

func run(settings *conf.Settings, opts *options) error {
	kb, err := cropengine.LoadKnowledgeBase()
	if err != nil {
		return fmt.Errorf("failed to load crop knowledge base: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if opts.list {
		return encoder.Encode(kb.Profiles)
	}

	engine := cropengine.NewEngine(kb, settings.Crops)
	set := engine.Recommend(cropengine.Request{
		Latitude:       opts.lat,
		Longitude:      opts.lon,
		LandCoverLabel: opts.label,
		FarmSizeHa:     opts.farmSizeHa,
		RiskTolerance:  opts.riskTolerance,
	})

	return encoder.Encode(set)
}
