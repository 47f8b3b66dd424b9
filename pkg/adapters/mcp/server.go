package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/typeguard"
	"github.com/aretw0/typeguard/pkg/ports"
	"github.com/aretw0/typeguard/pkg/sanitize"
	"github.com/aretw0/typeguard/pkg/schema"
	"github.com/aretw0/typeguard/pkg/violation"
	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	signaturesURI        = "typeguard://signatures"
	signatureURITemplate = "typeguard://signatures/{name}"
)

// ReportResponse is the structured result of both tools.
type ReportResponse struct {
	OK     bool             `json:"ok" jsonschema_description:"True when no violation was found"`
	Report violation.Report `json:"report" jsonschema_description:"The violations found, with their messages"`
}

// ReportOutputSchema returns the JSON schema of ReportResponse. Violation
// entries nest, so they are emitted once under $defs and referenced.
func ReportOutputSchema() (json.RawMessage, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		Anonymous:                 true,
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(ReportResponse{})
	schema.Version = ""
	return json.Marshal(schema)
}

// ValueArgs are the arguments of the validate_value tool.
type ValueArgs struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Name     string `json:"name,omitempty"`
	TypeVars string `json:"typevars,omitempty"`
}

// CallArgs are the arguments of the check_call tool.
type CallArgs struct {
	Signature     string `json:"signature,omitempty"`
	SignatureName string `json:"signature_name,omitempty"`
	Call          string `json:"call,omitempty"`
}

// Checker defines what the MCP server needs from the checking core.
type Checker interface {
	ports.Checker
	Signatures() ([]string, error)
}

// Server wraps a Checker and exposes it as an MCP Server.
type Server struct {
	checker   Checker
	loader    ports.SignatureLoader
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. loader may be nil, in which
// case no signature resources are served.
func NewServer(checker Checker, loader ports.SignatureLoader) *Server {
	s := &Server{
		checker:   checker,
		loader:    loader,
		mcpServer: server.NewMCPServer("typeguard-mcp", strings.TrimSpace(typeguard.Version)),
	}
	s.registerTools()
	if loader != nil {
		s.registerResources()
	}
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	outputSchema, err := ReportOutputSchema()
	if err != nil {
		// Only a change to ReportResponse can make this fail.
		panic(fmt.Sprintf("mcp: report output schema: %v", err))
	}

	// TOOL: validate_value
	validateTool := mcp.NewTool("validate_value",
		mcp.WithDescription("Check a value against a type expression such as list[int] or dict[str, int | none]."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Type expression the value must conform to")),
		mcp.WithString("value", mcp.Required(), mcp.Description("The value, as a JSON or YAML document. Use !tuple, !set or !frozenset tags for those kinds")),
		mcp.WithString("name", mcp.Description("Name the value is reported under (default: value)")),
		mcp.WithString("typevars", mcp.Description("JSON object mapping type variable names to lists of constraint expressions")),
		mcp.WithRawOutputSchema(outputSchema),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: check_call
	checkTool := mcp.NewTool("check_call",
		mcp.WithDescription("Check a recorded function call (arguments and optional return value) against a signature."),
		mcp.WithString("signature", mcp.Description("Inline signature document (JSON or YAML) with name, params and return")),
		mcp.WithString("signature_name", mcp.Description("Name of a signature from the library")),
		mcp.WithString("call", mcp.Description("Call record document: {args: [...], kwargs: {...}, return: ...}")),
		mcp.WithRawOutputSchema(outputSchema),
	)
	s.mcpServer.AddTool(checkTool, mcp.NewStructuredToolHandler(s.handleCheck))

	// TOOL: list_signatures
	s.mcpServer.AddTool(mcp.NewTool("list_signatures",
		mcp.WithDescription("List the names of the signatures in the library."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names, err := s.checker.Signatures()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(names)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args ValueArgs) (ReportResponse, error) {
	if err := sanitize.Fields(map[string]*string{"type": &args.Type, "value": &args.Value, "name": &args.Name, "typevars": &args.TypeVars}); err != nil {
		return ReportResponse{}, fmt.Errorf("invalid input: %w", err)
	}
	v, err := schema.ParseValue([]byte(args.Value))
	if err != nil {
		return ReportResponse{}, fmt.Errorf("invalid value: %w", err)
	}
	req := ports.ValueRequest{Type: args.Type, Value: v, Name: args.Name}
	if args.TypeVars != "" {
		if err := json.Unmarshal([]byte(args.TypeVars), &req.TypeVars); err != nil {
			return ReportResponse{}, fmt.Errorf("invalid typevars: %w", err)
		}
	}

	report, err := s.checker.CheckValue(ctx, req)
	if err != nil {
		return ReportResponse{}, fmt.Errorf("validate failed: %w", err)
	}
	return ReportResponse{OK: report.OK(), Report: report}, nil
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest, args CallArgs) (ReportResponse, error) {
	if err := sanitize.Fields(map[string]*string{"signature": &args.Signature, "signature_name": &args.SignatureName, "call": &args.Call}); err != nil {
		return ReportResponse{}, fmt.Errorf("invalid input: %w", err)
	}
	req := ports.CallRequest{SignatureName: args.SignatureName}
	if args.Signature != "" {
		doc, err := schema.ParseValue([]byte(args.Signature))
		if err != nil {
			return ReportResponse{}, fmt.Errorf("invalid signature: %w", err)
		}
		m, ok := doc.(map[string]any)
		if !ok {
			return ReportResponse{}, errors.New("invalid signature: expected a mapping")
		}
		req.Signature = m
	}

	rec, err := schema.ParseCallRecord([]byte(args.Call))
	if err != nil {
		return ReportResponse{}, fmt.Errorf("invalid call: %w", err)
	}
	req.Args = rec.Args.Positional
	req.Kwargs = rec.Args.Keyword
	req.Return = rec.Return
	req.HasReturn = rec.Returned

	report, err := s.checker.CheckCall(ctx, req)
	if err != nil {
		return ReportResponse{}, fmt.Errorf("check failed: %w", err)
	}
	return ReportResponse{OK: report.OK(), Report: report}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: typeguard://signatures
	s.mcpServer.AddResource(mcp.NewResource(signaturesURI, "Signature Library",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.loader.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list signatures: %w", err)
		}
		jsonBytes, _ := json.Marshal(names)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      signaturesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: typeguard://signatures/{name}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(signatureURITemplate, "Signature",
		mcp.WithTemplateMIMEType("application/yaml"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		name := strings.TrimPrefix(request.Params.URI, signaturesURI+"/")
		data, err := s.loader.Get(name)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/yaml",
				Text:     string(data),
			},
		}, nil
	})
}
