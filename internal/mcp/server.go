// Package mcp implements a Model Context Protocol (MCP) server over the rule
// manager and deployment service using the mcp-go library.
//
// The server exposes the same operations as the HTTP API as MCP tools, so AI
// assistants can resolve and deploy rules in-process over stdio (JSON-RPC
// 2.0) without a running HTTP server.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ololo-tratata/cursor-rules/internal/logging"
	"github.com/ololo-tratata/cursor-rules/internal/rules"
)

// RuleProvider is the rule-manager contract the MCP tools need.
type RuleProvider interface {
	GetRulesForTechnology(ctx context.Context, technology string) *rules.RuleSet
	GetRulesForFile(ctx context.Context, fileCtx rules.FileContext) *rules.RuleSet
	GetRuleByID(ctx context.Context, ruleID, technology string) (rules.Rule, bool)
}

// Deployer is the deployment contract the MCP tools need.
type Deployer interface {
	DeployRules(targetDir, technology string) error
	DetectProjectType(projectDir string) (string, bool)
}

// NewMCPServer creates an MCP server with all cursor-rules tools registered.
func NewMCPServer(rulesProvider RuleProvider, deployer Deployer, logger *logging.AppLogger) *server.MCPServer {
	s := server.NewMCPServer(
		"cursor-rules",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	registerTools(s, rulesProvider, deployer, logger)
	return s
}

// ServeStdio runs the MCP server over stdin/stdout until the client
// disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func registerTools(s *server.MCPServer, rulesProvider RuleProvider, deployer Deployer, logger *logging.AppLogger) {
	s.AddTool(
		mcplib.NewTool("list_technologies",
			mcplib.WithDescription("List all technologies that rules are available for"),
		),
		handleListTechnologies(),
	)

	s.AddTool(
		mcplib.NewTool("get_rules_for_technology",
			mcplib.WithDescription("Get the full rule set for a technology as JSON"),
			mcplib.WithString("technology",
				mcplib.Required(),
				mcplib.Description("Technology name, e.g. python or typescript"),
			),
		),
		handleGetRules(rulesProvider),
	)

	s.AddTool(
		mcplib.NewTool("get_rule",
			mcplib.WithDescription("Get a single rule by identifier within a technology"),
			mcplib.WithString("technology",
				mcplib.Required(),
				mcplib.Description("Technology name the rule belongs to"),
			),
			mcplib.WithString("rule_id",
				mcplib.Required(),
				mcplib.Description("Rule identifier, e.g. python-linting"),
			),
		),
		handleGetRule(rulesProvider),
	)

	s.AddTool(
		mcplib.NewTool("get_rules_for_file",
			mcplib.WithDescription("Get the rules that apply to a specific file path"),
			mcplib.WithString("file_path",
				mcplib.Required(),
				mcplib.Description("Path of the file to resolve rules for"),
			),
			mcplib.WithString("project_type",
				mcplib.Description("Project type override; wins over the file extension"),
			),
		),
		handleGetRulesForFile(rulesProvider),
	)

	s.AddTool(
		mcplib.NewTool("deploy_rules",
			mcplib.WithDescription("Deploy cached rules for a technology into a target project directory"),
			mcplib.WithString("target_dir",
				mcplib.Required(),
				mcplib.Description("Absolute path of the target project"),
			),
			mcplib.WithString("technology",
				mcplib.Description("Technology to deploy; auto-detected from the project when omitted"),
			),
		),
		handleDeploy(rulesProvider, deployer, logger),
	)
}

func handleListTechnologies() server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(rules.Technologies())
	}
}

func handleGetRules(rulesProvider RuleProvider) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		technology, err := request.RequireString("technology")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(rulesProvider.GetRulesForTechnology(ctx, technology))
	}
}

func handleGetRule(rulesProvider RuleProvider) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		technology, err := request.RequireString("technology")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		ruleID, err := request.RequireString("rule_id")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		rule, ok := rulesProvider.GetRuleByID(ctx, ruleID, technology)
		if !ok {
			return errorResult(fmt.Sprintf("rule %q not found for %s", ruleID, technology)), nil
		}
		return jsonResult(rule)
	}
}

func handleGetRulesForFile(rulesProvider RuleProvider) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		filePath, err := request.RequireString("file_path")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		fileCtx := rules.FileContext{
			FilePath:    filePath,
			ProjectType: request.GetString("project_type", ""),
		}
		return jsonResult(rulesProvider.GetRulesForFile(ctx, fileCtx))
	}
}

func handleDeploy(rulesProvider RuleProvider, deployer Deployer, logger *logging.AppLogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		targetDir, err := request.RequireString("target_dir")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		technology := request.GetString("technology", "")
		if technology == "" {
			detected, ok := deployer.DetectProjectType(targetDir)
			if !ok {
				return errorResult("could not detect project type; pass the technology argument"), nil
			}
			technology = detected
		}

		set := rulesProvider.GetRulesForTechnology(ctx, technology)
		if set.Total == 0 {
			return errorResult("no rules found for technology: " + technology), nil
		}

		if err := deployer.DeployRules(targetDir, technology); err != nil {
			logger.Error("Deploy via MCP failed", "target", targetDir, "error", err)
			return errorResult("failed to deploy rules: " + err.Error()), nil
		}

		return jsonResult(map[string]any{
			"success":     true,
			"technology":  technology,
			"rules_count": set.Total,
			"target_dir":  targetDir,
		})
	}
}

// jsonResult marshals v as indented JSON text content.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool error without failing the JSON-RPC call.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
