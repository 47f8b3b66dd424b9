package main

import (
	"fmt"
	"net"

	"github.com/aretw0/typeguard/internal/cli"
	"github.com/aretw0/typeguard/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP validation API",
	Long: `Starts the HTTP API: POST /v1/validate and /v1/check, GET /v1/signatures,
/v1/reports, /v1/events (server-sent events), /metrics and /healthz.

Failing reports are kept in the sink selected with --sink (memory, file,
redis or none).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		cfg := s.Config
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("signatures") {
			cfg.Signatures, _ = cmd.Flags().GetString("signatures")
		}
		if cmd.Flags().Changed("sink") {
			cfg.Sink, _ = cmd.Flags().GetString("sink")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		stack, err := cli.NewStack(ctx, cfg, s.Logger)
		if err != nil {
			return err
		}
		defer stack.Close()

		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
		if err != nil {
			return err
		}

		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.ErrOrStderr())
			fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s (sink: %s)\n", ln.Addr(), cfg.Sink)
			if cfg.Signatures != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Serving signatures from: %s\n", cfg.Signatures)
			}
		}

		err = cli.Serve(ctx, ln, stack.Handler(), s.Logger)
		if sig := ctx.Signal(); sig != nil {
			s.Logger.Info("Shutdown signal received", "signal", sig.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (env TYPEGUARD_PORT)")
	serveCmd.Flags().String("signatures", "", "Directory of signature files (env TYPEGUARD_SIGNATURES)")
	serveCmd.Flags().String("sink", "memory", "Report sink: memory, file, redis or none (env TYPEGUARD_SINK)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
