package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ascending-research/mobility-cli/internal/config"
	"github.com/ascending-research/mobility-cli/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mobility-cli",
	Short: "School to commuting-zone linkage pipeline",
	Long:  "Links school coordinates to census tracts, tracts to counties and commuting zones, and joins the result with intergenerational mobility tables.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens the local run store and applies migrations.
func initStore(ctx context.Context) (*store.Store, error) {
	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
