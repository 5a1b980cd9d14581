package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/abdul-raz/Safe-Tourism/internal/zones"
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Manage the spatial zone tables",
}

var zonesMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the spatial tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := spatialPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := zones.NewImporter(pool).EnsureSchema(ctx); err != nil {
			return err
		}
		fmt.Println("spatial schema ready")
		return nil
	},
}

var zonesImportCmd = &cobra.Command{
	Use:   "import <dataset> <shapefile>",
	Short: "Import a shapefile into a zone table",
	Long: `Imports a shapefile into the spatial database. Dataset is "hazards"
(polygon hazard zones with zone_type and danger_weight attributes) or "pois"
(point locations with amenity and safety_weight attributes).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ds, ok := zones.DatasetByName(args[0])
		if !ok {
			return eris.Errorf("unknown dataset %q (want hazards or pois)", args[0])
		}

		pool, err := spatialPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		importer := zones.NewImporter(pool)
		if err := importer.EnsureSchema(ctx); err != nil {
			return err
		}

		n, err := importer.Import(ctx, ds, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("imported %d %s records\n", n, ds.Name)
		return nil
	},
}

func init() {
	zonesCmd.AddCommand(zonesMigrateCmd)
	zonesCmd.AddCommand(zonesImportCmd)
	rootCmd.AddCommand(zonesCmd)
}
