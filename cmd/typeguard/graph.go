package main

import (
	"fmt"

	"github.com/aretw0/typeguard/internal/presentation/graph"
	"github.com/aretw0/typeguard/pkg/schema"
	"github.com/aretw0/typeguard/pkg/validator"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph EXPR",
	Short: "Export a type expression as a diagram",
	Long: `Parses the type expression and outputs a Mermaid diagram (graph TD) of its
structure. With --value, the value in that file is checked as well and the
nodes it fails are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		valuePath, _ := cmd.Flags().GetString("value")

		d, err := schema.Parse(args[0], nil)
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if valuePath != "" {
			v, err := schema.LoadValue(valuePath)
			if err != nil {
				return err
			}
			overlay = graph.OverlayFrom(validator.Check(v, d, name))
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(name, d, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("name", "value", "Name of the root node")
	graphCmd.Flags().String("value", "", "Value file whose violations are highlighted")
}
