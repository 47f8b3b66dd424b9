package main

import (
	"github.com/aretw0/typeguard/internal/cli"
	"github.com/aretw0/typeguard/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check SIGFILE CALLFILE...",
	Short: "Check recorded calls against a signature",
	Long: `Checks each recorded call in CALLFILE ("-" for stdin) against the signature
in SIGFILE. A call file holds the call's args, kwargs and, optionally, the
value it returned:

  args: [[1.0, 2.0]]
  kwargs: {factor: 2.0}
  return: [2.0, 4.0]

With --library, SIGFILE is the name of a signature in that directory.
Exits with status 1 when any call does not conform.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		library, _ := cmd.Flags().GetString("library")

		opts := cli.CheckOptions{
			In:     cmd.InOrStdin(),
			Out:    cmd.OutOrStdout(),
			Writer: tui.NewReportWriter(s.Format),
			Logger: s.Logger,
			Loader: cli.OpenLoader(library),
		}
		return cli.RunCheck(cmd.Context(), opts, args[0], library != "", args[1:])
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().String("library", "", "Directory of signature files; SIGFILE is then a signature name")
}
