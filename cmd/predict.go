package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abdul-raz/Safe-Tourism/internal/predict"
)

var (
	predictLat         float64
	predictLon         float64
	predictBatch       string
	predictConcurrency int
	predictNoHistory   bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Classify the safety risk of a coordinate",
	Long: `Classifies one coordinate (--lat/--lon) or a CSV of coordinates (--batch)
and prints the prediction as JSON. Batch files have one "lat,lon" pair per
line; a header row is skipped automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnvironment(ctx, !predictNoHistory)
		if err != nil {
			return err
		}
		defer env.Close()

		if predictBatch != "" {
			return runBatch(ctx, env, predictBatch, predictConcurrency)
		}

		if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
			return eris.New("either --lat and --lon or --batch is required")
		}

		result, err := env.predictor.Predict(ctx, predictLat, predictLon)
		if err != nil {
			return err
		}
		env.record(ctx, result)

		return printJSON(result)
	},
}

func init() {
	predictCmd.Flags().Float64Var(&predictLat, "lat", 0, "latitude (WGS84)")
	predictCmd.Flags().Float64Var(&predictLon, "lon", 0, "longitude (WGS84)")
	predictCmd.Flags().StringVar(&predictBatch, "batch", "", "CSV file of lat,lon pairs")
	predictCmd.Flags().IntVar(&predictConcurrency, "concurrency", 4, "parallel predictions in batch mode")
	predictCmd.Flags().BoolVar(&predictNoHistory, "no-history", false, "skip recording predictions")
	rootCmd.AddCommand(predictCmd)
}

type coordinate struct {
	lat, lon float64
}

// readCoordinates parses a lat,lon CSV, skipping a header row if present.
func readCoordinates(path string) ([]coordinate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open batch file %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var coords []coordinate
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read batch file %s", path)
		}
		line++

		if len(record) < 2 {
			return nil, eris.Errorf("batch line %d: want lat,lon", line)
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if latErr != nil || lonErr != nil {
			if line == 1 {
				continue // header row
			}
			return nil, eris.Errorf("batch line %d: malformed coordinate", line)
		}
		coords = append(coords, coordinate{lat: lat, lon: lon})
	}

	if len(coords) == 0 {
		return nil, eris.Errorf("batch file %s contains no coordinates", path)
	}
	return coords, nil
}

// runBatch predicts all coordinates concurrently, preserving input order in
// the output.
func runBatch(ctx context.Context, env *environment, path string, concurrency int) error {
	coords, err := readCoordinates(path)
	if err != nil {
		return err
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	zap.L().Info("batch prediction",
		zap.Int("coordinates", len(coords)),
		zap.Int("concurrency", concurrency),
	)

	results := make([]*predict.Result, len(coords))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, c := range coords {
		g.Go(func() error {
			result, err := env.predictor.Predict(gctx, c.lat, c.lon)
			if err != nil {
				return eris.Wrapf(err, "predict %.4f,%.4f", c.lat, c.lon)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, result := range results {
		env.record(ctx, result)
		if err := printJSON(result); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}
