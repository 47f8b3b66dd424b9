package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/typeguard/internal/cli"
	"github.com/aretw0/typeguard/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate --type EXPR FILE...",
	Short: "Check values against a type expression",
	Long: `Reads a YAML or JSON value from each FILE ("-" for stdin) and checks it
against the type expression given with --type. Use the !tuple, !set and
!frozenset tags for those kinds of values.

Exits with status 1 when any value does not conform.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		typeExpr, _ := cmd.Flags().GetString("type")
		name, _ := cmd.Flags().GetString("name")
		typeVars, _ := cmd.Flags().GetString("typevars")

		opts := cli.CheckOptions{
			In:     cmd.InOrStdin(),
			Out:    cmd.OutOrStdout(),
			Writer: tui.NewReportWriter(s.Format),
			Logger: s.Logger,
			Name:   name,
		}
		if typeVars != "" {
			if err := json.Unmarshal([]byte(typeVars), &opts.TypeVars); err != nil {
				return fmt.Errorf("invalid --typevars: %w", err)
			}
		}
		return cli.RunValidate(cmd.Context(), opts, typeExpr, args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("type", "t", "", "Type expression the values must conform to")
	validateCmd.Flags().String("name", "", "Name the value is reported under (default: value)")
	validateCmd.Flags().String("typevars", "", `Type variables as JSON, e.g. {"T": ["int", "str"]}`)
	_ = validateCmd.MarkFlagRequired("type")
}
