// Package analyze implements the one-shot analysis subcommand.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mlaakso/agrisight-go/internal/analysis"
	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/geo"
	"github.com/mlaakso/agrisight-go/internal/sampling"
)

type options struct {
	lat           float64
	lon           float64
	polygon       string
	farmSizeHa    float64
	riskTolerance string
}

// Command creates the analyze command for a single point or polygon.
func Command(settings *conf.Settings) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a location and print crop recommendations",
		Long: "Classify satellite imagery for a point or polygon and print the " +
			"land verdict with profit-ranked crop recommendations as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), settings, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "Latitude of the point to analyze")
	cmd.Flags().Float64Var(&opts.lon, "lon", 0, "Longitude of the point to analyze")
	cmd.Flags().StringVar(&opts.polygon, "polygon", "", "Polygon vertices as JSON, or @file to read from a file")
	cmd.Flags().Float64Var(&opts.farmSizeHa, "farm-size", 1.0, "Farm size in hectares for profit projections")
	cmd.Flags().StringVar(&opts.riskTolerance, "risk", "medium", "Risk tolerance (low/medium/high)")

	return cmd
}

func run(ctx context.Context, settings *conf.Settings, opts *options) error {
	req, err := buildRequest(opts)
	if err != nil {
		return err
	}

	system, err := analysis.NewSystem(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis system: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := system.Pipeline.Analyze(ctx, req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// buildRequest maps flags to a pipeline request. A polygon flag wins
// over point coordinates.
func buildRequest(opts *options) (analysis.Request, error) {
	req := analysis.Request{
		FarmSizeHa:    opts.farmSizeHa,
		RiskTolerance: opts.riskTolerance,
	}

	if opts.polygon != "" {
		raw := opts.polygon
		if strings.HasPrefix(raw, "@") {
			data, err := os.ReadFile(strings.TrimPrefix(raw, "@"))
			if err != nil {
				return req, fmt.Errorf("failed to read polygon file: %w", err)
			}
			raw = string(data)
		}
		var polygon geo.Polygon
		if err := json.Unmarshal([]byte(raw), &polygon); err != nil {
			return req, fmt.Errorf("invalid polygon JSON: %w", err)
		}
		req.Mode = sampling.ModePolygon
		req.Polygon = polygon
		return req, nil
	}

	req.Mode = sampling.ModePoint
	req.Point = geo.Coordinate{Lat: opts.lat, Lon: opts.lon}
	return req, nil
}
