// Package mcp exposes the validator over the Model Context Protocol so
// editor agents can call it as tools instead of shelling out to the CLI.
package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"windtrader/internal/compat"
	"windtrader/internal/invoke"
	"windtrader/internal/manifest"
)

// Runner is the subset of invoke.Runner the tools need.
type Runner interface {
	Check(ctx context.Context, document string, spec manifest.ValidatorSpec) (invoke.Result, error)
	Echo(ctx context.Context, document string, spec manifest.ValidatorSpec) (invoke.Result, error)
}

// Server wraps the MCP SDK server with the validator tools.
type Server struct {
	MCPServer *sdkmcp.Server

	runner       Runner
	orchestrator *compat.Orchestrator
	load         func() (*manifest.Manifest, error)
}

// NewServer creates an MCP server with check, echo, compatibility, and
// catalog tools. load may be nil to use the bundled catalog.
func NewServer(runner Runner, orchestrator *compat.Orchestrator, load func() (*manifest.Manifest, error)) *Server {
	if load == nil {
		load = manifest.Load
	}
	s := &Server{runner: runner, orchestrator: orchestrator, load: load}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "windtrader", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_versions",
		Description: "List the validator versions in the catalog and which one is latest.",
	}, s.handleListVersions)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "check_document",
		Description: "Validate a SysML v2 document against one validator version. Returns the tool's exit code and captured output.",
	}, s.handleCheckDocument)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "echo_document",
		Description: "Run the validator's echo passthrough on a document: same exit-code contract as check, normalized output on success.",
	}, s.handleEchoDocument)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "compatibility_report",
		Description: "Validate a document against every catalog version, latest first, and return the aggregate compatibility verdict.",
	}, s.handleCompatibilityReport)
}

// --- Tool input/output types ---

type listVersionsOutput struct {
	Latest   string           `json:"latest"`
	Versions []catalogVersion `json:"versions"`
}

type catalogVersion struct {
	Version               string `json:"version"`
	MinimumRuntimeVersion int    `json:"minimum_runtime_version"`
}

type checkDocumentInput struct {
	Text    string `json:"text" jsonschema:"SysML v2 textual document to validate"`
	Version string `json:"version,omitempty" jsonschema:"validator version from the catalog; default is the latest"`
}

type checkDocumentOutput struct {
	OK         bool   `json:"ok"`
	Version    string `json:"version"`
	ExitCode   int    `json:"exit_code"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type compatibilityReportInput struct {
	Text string `json:"text" jsonschema:"SysML v2 textual document to validate"`
}

type compatibilityReportOutput struct {
	LatestVersion        string            `json:"latest_version"`
	Status               string            `json:"status"`
	CompatibleVersions   []string          `json:"compatible_versions"`
	IncompatibleVersions map[string]string `json:"incompatible_versions"`
	InvokerErrors        map[string]string `json:"invoker_errors"`
}

// --- Tool handlers ---

func (s *Server) handleListVersions(_ context.Context, _ *sdkmcp.CallToolRequest, _ struct{}) (*sdkmcp.CallToolResult, listVersionsOutput, error) {
	m, err := s.load()
	if err != nil {
		return nil, listVersionsOutput{}, fmt.Errorf("load catalog: %w", err)
	}
	out := listVersionsOutput{Latest: m.LatestVersion}
	for _, v := range m.Validators {
		out.Versions = append(out.Versions, catalogVersion{
			Version:               v.Version,
			MinimumRuntimeVersion: v.MinimumRuntimeVersion,
		})
	}
	return nil, out, nil
}

func (s *Server) handleCheckDocument(ctx context.Context, _ *sdkmcp.CallToolRequest, input checkDocumentInput) (*sdkmcp.CallToolResult, checkDocumentOutput, error) {
	return s.runSubcommand(ctx, input, s.runner.Check)
}

func (s *Server) handleEchoDocument(ctx context.Context, _ *sdkmcp.CallToolRequest, input checkDocumentInput) (*sdkmcp.CallToolResult, checkDocumentOutput, error) {
	return s.runSubcommand(ctx, input, s.runner.Echo)
}

func (s *Server) runSubcommand(ctx context.Context, input checkDocumentInput, run func(context.Context, string, manifest.ValidatorSpec) (invoke.Result, error)) (*sdkmcp.CallToolResult, checkDocumentOutput, error) {
	m, err := s.load()
	if err != nil {
		return nil, checkDocumentOutput{}, fmt.Errorf("load catalog: %w", err)
	}
	version := input.Version
	if version == "" {
		version = m.LatestVersion
	}
	spec, err := m.Get(version)
	if err != nil {
		return nil, checkDocumentOutput{}, err
	}
	res, err := run(ctx, input.Text, spec)
	if err != nil {
		return nil, checkDocumentOutput{}, err
	}
	return nil, checkDocumentOutput{
		OK:         res.Succeeded,
		Version:    res.Version,
		ExitCode:   res.ExitCode,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		DurationMS: res.Duration.Milliseconds(),
	}, nil
}

func (s *Server) handleCompatibilityReport(ctx context.Context, _ *sdkmcp.CallToolRequest, input compatibilityReportInput) (*sdkmcp.CallToolResult, compatibilityReportOutput, error) {
	rep, err := s.orchestrator.Report(ctx, input.Text)
	if err != nil {
		return nil, compatibilityReportOutput{}, err
	}
	return nil, compatibilityReportOutput{
		LatestVersion:        rep.LatestVersion,
		Status:               string(rep.Status),
		CompatibleVersions:   rep.CompatibleVersions,
		IncompatibleVersions: rep.IncompatibleVersions,
		InvokerErrors:        rep.InvokerErrors,
	}, nil
}
