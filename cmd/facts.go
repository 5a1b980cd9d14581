package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/abdul-raz/Safe-Tourism/internal/facts"
	"github.com/abdul-raz/Safe-Tourism/internal/feature"
)

var (
	factsLat      float64
	factsLon      float64
	factsFeatures bool
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Show the spatial facts for a coordinate",
	Long: `Queries the spatial database for the raw hazard and point-of-interest
measurements at a coordinate, without running the classifier. Useful for
debugging why a location scores the way it does.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
			return eris.New("--lat and --lon are required")
		}

		pool, err := spatialPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		adapter := facts.NewPostgresAdapter(pool, cfg.Boundary)
		hazard, poi, err := adapter.Fetch(ctx, factsLat, factsLon)
		if err != nil {
			return err
		}

		out := struct {
			Hazard *facts.HazardFacts `json:"hazard"`
			Poi    *facts.PoiFacts    `json:"poi"`
			Vector map[string]float64 `json:"features,omitempty"`
		}{Hazard: hazard, Poi: poi}

		if factsFeatures {
			vector, err := feature.Build(hazard, poi)
			if err != nil {
				return err
			}
			out.Vector = make(map[string]float64, feature.Count)
			for i, name := range feature.Names() {
				out.Vector[name] = vector[i]
			}
		}

		return printJSON(out)
	},
}

func init() {
	factsCmd.Flags().Float64Var(&factsLat, "lat", 0, "latitude (WGS84)")
	factsCmd.Flags().Float64Var(&factsLon, "lon", 0, "longitude (WGS84)")
	factsCmd.Flags().BoolVar(&factsFeatures, "features", false, "also print the derived feature vector")
	rootCmd.AddCommand(factsCmd)
}
