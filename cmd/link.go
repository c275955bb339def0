package main

import "github.com/spf13/cobra"

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Geographic linkage stages",
	Long:  "Run the school-tract and tract-commuting-zone linkage stages, together or individually.",
}

func init() { rootCmd.AddCommand(linkCmd) }
