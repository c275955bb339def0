package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ascending-research/mobility-cli/internal/mobility"
	"github.com/ascending-research/mobility-cli/internal/pipeline"
)

// Output file names for the mobility joins.
const (
	czMobilityFile     = "school_cz_mobility.csv"
	countyMobilityFile = "school_county_mobility.csv"
)

var mobilityCmd = &cobra.Command{
	Use:   "mobility",
	Short: "Intergenerational mobility joins",
	Long:  "Commands for joining linkage output with the intergenerational mobility tables.",
}

var mobilityMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Join linkage output with mobility tables",
	Long:  "Join the merged school-tract-CZ table with the commuting-zone and county intergenerational mobility tables.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var merged []pipeline.MergedRow
		if err := pipeline.ReadCSVFile(filepath.Join(cfg.Output.Dir, pipeline.MergedFile), &merged); err != nil {
			return err
		}

		czs, err := mobility.LoadCZMobility(ctx, cfg.Mobility.CZCSV)
		if err != nil {
			return err
		}
		counties, err := mobility.LoadCountyMobility(ctx, cfg.Mobility.CountyCSV)
		if err != nil {
			return err
		}

		czRows := mobility.MergeCZ(merged, czs)
		czPath := filepath.Join(cfg.Output.Dir, czMobilityFile)
		if err := pipeline.WriteCSVFile(czPath, czRows); err != nil {
			return err
		}

		countyRows := mobility.MergeCounty(merged, counties)
		countyPath := filepath.Join(cfg.Output.Dir, countyMobilityFile)
		if err := pipeline.WriteCSVFile(countyPath, countyRows); err != nil {
			return err
		}

		fmt.Printf("CZ mobility:     %d rows -> %s\n", len(czRows), czPath)
		fmt.Printf("County mobility: %d rows -> %s\n", len(countyRows), countyPath)
		return nil
	},
}

func init() {
	mobilityCmd.AddCommand(mobilityMergeCmd)
	rootCmd.AddCommand(mobilityCmd)
}
