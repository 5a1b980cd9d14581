package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/abdul-raz/Safe-Tourism/internal/db"
	"github.com/abdul-raz/Safe-Tourism/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent predictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		history, err := store.Open(ctx, cfg.Store, &db.PoolConfig{
			MaxConns: cfg.Spatial.MaxConns,
			MinConns: cfg.Spatial.MinConns,
		})
		if err != nil {
			return eris.Wrap(err, "open history store")
		}
		defer history.Close()

		if err := history.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate history store")
		}

		records, err := history.ListRecent(ctx, historyLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No predictions recorded yet")
			return nil
		}

		fmt.Printf("%-36s %10s %11s %-8s %6s %6s %s\n",
			"ID", "Lat", "Lon", "Risk", "Score", "Alert", "When")
		fmt.Println(strings.Repeat("-", 92))
		for _, r := range records {
			fmt.Printf("%-36s %10.4f %11.4f %-8s %6.2f %6v %s\n",
				r.ID, r.Lat, r.Lon, r.RiskLabel, r.RiskScore, r.AlertNeeded,
				r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max records to list")
	rootCmd.AddCommand(historyCmd)
}
