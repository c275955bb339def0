package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ascending-research/mobility-cli/internal/pipeline"
	"github.com/ascending-research/mobility-cli/internal/store"
)

var linkRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full linkage pipeline",
	Long:  "Run both linkage branches, merge them into the school-tract-CZ table, and record the run in the local store.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		noStore, _ := cmd.Flags().GetBool("no-store")

		var st *store.Store
		if !noStore {
			var err error
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		res, err := pipeline.New(cfg, st).Run(ctx)
		if err != nil {
			return err
		}

		if res.RunID != "" {
			fmt.Printf("Run %s complete.\n", res.RunID)
		}
		fmt.Printf("Schools linked:   %d\n", len(res.Links))
		fmt.Printf("Hierarchy rows:   %d\n", len(res.Hierarchy))
		fmt.Printf("Merged rows:      %d\n", len(res.Merged))
		fmt.Printf("Output directory: %s\n", cfg.Output.Dir)
		return nil
	},
}

func init() {
	linkRunCmd.Flags().Bool("no-store", false, "skip recording the run in the local store")
	linkCmd.AddCommand(linkRunCmd)
}
