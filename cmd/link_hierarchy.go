package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ascending-research/mobility-cli/internal/pipeline"
)

var linkHierarchyCmd = &cobra.Command{
	Use:   "hierarchy",
	Short: "Link census tracts to counties and commuting zones",
	Long:  "Join the tract demographics workbook with the county-to-commuting-zone equivalency table and write the tract-CZ link table.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d := pipeline.New(cfg, nil)
		rows, err := d.LinkHierarchy(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Linked %d tracts -> %s\n", len(rows), filepath.Join(cfg.Output.Dir, pipeline.TractCZFile))
		return nil
	},
}

func init() { linkCmd.AddCommand(linkHierarchyCmd) }
