package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-raz/Safe-Tourism/internal/feature"
	"github.com/abdul-raz/Safe-Tourism/internal/model"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect the trained risk model artifact",
}

var modelInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a summary of the model artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		artifact, err := model.Load(cfg.Model.Path)
		if err != nil {
			return err
		}

		totalTrees := 0
		members := make([]map[string]any, 0, len(artifact.Members))
		for _, m := range artifact.Members {
			totalTrees += len(m.Trees)
			members = append(members, map[string]any{
				"name":  m.Name,
				"trees": len(m.Trees),
			})
		}

		return printJSON(map[string]any{
			"path":           cfg.Model.Path,
			"schema_version": artifact.SchemaVersion,
			"classes":        artifact.Classes,
			"features":       len(artifact.FeatureNames),
			"members":        members,
			"total_trees":    totalTrees,
			"has_explainer":  artifact.Explainer != nil,
		})
	},
}

var modelVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the artifact against the feature builder's schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		artifact, err := model.Load(cfg.Model.Path)
		if err != nil {
			return err
		}
		if err := artifact.VerifySchema(feature.Names()); err != nil {
			return err
		}
		fmt.Println("model schema OK")
		return nil
	},
}

func init() {
	modelCmd.AddCommand(modelInspectCmd)
	modelCmd.AddCommand(modelVerifyCmd)
	rootCmd.AddCommand(modelCmd)
}
