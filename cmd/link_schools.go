package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ascending-research/mobility-cli/internal/pipeline"
)

var linkSchoolsCmd = &cobra.Command{
	Use:   "schools",
	Short: "Link schools to their nearest census tract",
	Long:  "Load school coordinates and tract polygons, assign each school its nearest tract, and write the school-tract link table.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d := pipeline.New(cfg, nil)
		links, _, err := d.LinkSchools(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Linked %d schools -> %s\n", len(links), filepath.Join(cfg.Output.Dir, pipeline.SchoolTractFile))
		return nil
	},
}

func init() { linkCmd.AddCommand(linkSchoolsCmd) }
