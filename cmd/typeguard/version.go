package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/typeguard"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of typeguard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "typeguard version %s\n", strings.TrimSpace(typeguard.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
