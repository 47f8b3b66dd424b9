package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/typeguard/internal/cli"
	"github.com/aretw0/typeguard/internal/config"
	"github.com/aretw0/typeguard/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts typeguard as an MCP Server, exposing the validate_value, check_call
and list_signatures tools to AI agents.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		cfg := s.Config
		if cmd.Flags().Changed("signatures") {
			cfg.Signatures, _ = cmd.Flags().GetString("signatures")
		}
		if !cmd.Flags().Changed("sink") {
			cfg.Sink = config.SinkNone
		} else {
			cfg.Sink, _ = cmd.Flags().GetString("sink")
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		stack, err := cli.NewStack(ctx, cfg, s.Logger)
		if err != nil {
			return err
		}
		defer stack.Close()

		srv := mcp.NewServer(stack.Checker, stack.Loader)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			s.Logger.Info("Starting typeguard MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			s.Logger.Info("Starting typeguard MCP Server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && err != http.ErrServerClosed {
				return err
			}
			s.Logger.Info("MCP Server stopped gracefully")
			return nil
		}
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("signatures", "", "Directory of signature files (env TYPEGUARD_SIGNATURES)")
	mcpCmd.Flags().String("sink", "none", "Report sink for failing checks: memory, file, redis or none")
}
