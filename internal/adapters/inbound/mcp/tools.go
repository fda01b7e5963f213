package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/portlint/portlint/internal/adapters/outbound/buildinfo"
	"github.com/portlint/portlint/internal/adapters/outbound/config"
	"github.com/portlint/portlint/internal/adapters/outbound/dumpbin"
	"github.com/portlint/portlint/internal/adapters/outbound/gitinfo"
	"github.com/portlint/portlint/internal/adapters/outbound/scanner"
	"github.com/portlint/portlint/internal/application"
	"github.com/portlint/portlint/internal/domain"
)

// registerTools registers all portlint MCP tools on the given server.
func registerTools(s *server.MCPServer, dumpbinPath string) {
	// 1. portlint_validate
	s.AddTool(
		mcplib.NewTool("portlint_validate",
			mcplib.WithDescription("Run all post-build checks against a staged package directory and return the validation report as JSON"),
			mcplib.WithString("package_dir",
				mcplib.Required(),
				mcplib.Description("Staged output directory of the built package"),
			),
			mcplib.WithString("name", mcplib.Description("Package name (defaults to the package directory basename)")),
			mcplib.WithString("config", mcplib.Description("Triplet configuration file (YAML)")),
			mcplib.WithString("buildtrees", mcplib.Description("Buildtrees root holding per-package source trees")),
			mcplib.WithString("ports", mcplib.Description("Ports tree holding the package recipes")),
		),
		handleValidate(dumpbinPath),
	)

	// 2. portlint_policies
	s.AddTool(
		mcplib.NewTool("portlint_policies",
			mcplib.WithDescription("List the recognized validation policies and the build-system variables that enable them"),
		),
		handlePolicies(),
	)
}

func handleValidate(dumpbinPath string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		packageDir, err := request.RequireString("package_dir")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		args := request.GetArguments()
		name, _ := args["name"].(string)
		if name == "" {
			name = filepath.Base(packageDir)
		}
		configPath, _ := args["config"].(string)
		buildtreesDir, _ := args["buildtrees"].(string)
		portsDir, _ := args["ports"].(string)

		svc := application.NewValidateService(
			scanner.New(),
			config.New(),
			buildinfo.New(),
			gitinfo.New(),
			dumpbin.New(dumpbinPath),
		)

		report, err := svc.Validate(application.ValidateRequest{
			Spec:          domain.PackageSpec{Name: name},
			PackageDir:    packageDir,
			BuildtreesDir: buildtreesDir,
			PortsDir:      portsDir,
			ConfigPath:    configPath,
		})
		if err != nil {
			return errorResult(fmt.Sprintf("validation failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handlePolicies() server.ToolHandlerFunc {
	type policyInfo struct {
		Name          string `json:"name"`
		CMakeVariable string `json:"cmake_variable"`
	}
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		policies := make([]policyInfo, 0, len(domain.AllPolicies))
		for _, p := range domain.AllPolicies {
			policies = append(policies, policyInfo{
				Name:          string(p),
				CMakeVariable: p.CMakeVariable(),
			})
		}
		return jsonResult(policies)
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
