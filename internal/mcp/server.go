// Package mcp exposes the risky-file scanner as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	gomcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/internal/ignorefile"
	"github.com/greyhatharold/QGit/internal/report"
	"github.com/greyhatharold/QGit/internal/scanner"
	"github.com/greyhatharold/QGit/internal/util"
	"github.com/greyhatharold/QGit/internal/vcs"
	"github.com/greyhatharold/QGit/rules"
)

// QGitServer wraps the MCP server with the rule table used for scans.
type QGitServer struct {
	table    rules.Table
	cmd      util.CommandRunner
	logger   *zap.Logger
	version  string
	server   *server.MCPServer
	handlers map[string]server.ToolHandlerFunc
}

// NewQGitServer creates a server with every tool registered. cmd runs git
// to find tracked files; scans of directories outside a work tree report
// nothing as tracked.
func NewQGitServer(table rules.Table, cmd util.CommandRunner, logger *zap.Logger, version string) *QGitServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &QGitServer{
		table:    table,
		cmd:      cmd,
		logger:   logger,
		version:  version,
		server:   server.NewMCPServer("qgit", version),
		handlers: make(map[string]server.ToolHandlerFunc),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server instance.
func (s *QGitServer) MCPServer() *server.MCPServer {
	return s.server
}

func (s *QGitServer) registerTools() {
	s.addTool("list_categories",
		gomcp.NewTool("list_categories",
			gomcp.WithDescription("List the risk categories and how many rules each has"),
		),
		s.handleListCategories,
	)

	s.addTool("scan",
		gomcp.NewTool("scan",
			gomcp.WithDescription("Scan a directory for risky files and return a readable report"),
			gomcp.WithString("path",
				gomcp.Required(),
				gomcp.Description("Directory to scan"),
			),
		),
		s.handleScan,
	)

	s.addTool("scan_toml",
		gomcp.NewTool("scan_toml",
			gomcp.WithDescription("Scan a directory and return the findings as a TOML manifest"),
			gomcp.WithString("path",
				gomcp.Required(),
				gomcp.Description("Directory to scan"),
			),
		),
		s.handleScanTOML,
	)

	s.addTool("preview_ignore",
		gomcp.NewTool("preview_ignore",
			gomcp.WithDescription("Show the .gitignore content a cleanup would produce without writing it"),
			gomcp.WithString("path",
				gomcp.Required(),
				gomcp.Description("Directory to scan"),
			),
			gomcp.WithString("existing",
				gomcp.Description("Current ignore file content; defaults to <path>/.gitignore"),
			),
			gomcp.WithArray("categories",
				gomcp.Description("Category identifiers to include; defaults to all found"),
				gomcp.WithStringItems(),
			),
		),
		s.handlePreviewIgnore,
	)
}

func (s *QGitServer) addTool(name string, tool gomcp.Tool, handler server.ToolHandlerFunc) {
	s.handlers[name] = handler
	s.server.AddTool(tool, handler)
}

type categoryInfo struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Emoji       string `json:"emoji"`
	Sensitivity string `json:"sensitivity"`
	Patterns    int    `json:"patterns"`
}

func (s *QGitServer) handleListCategories(_ context.Context, _ gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	counts := make(map[domain.RiskCategory]int)
	for _, p := range s.table.Patterns() {
		counts[p.Category]++
	}

	infos := make([]categoryInfo, 0, len(domain.AllCategories()))
	for _, c := range domain.AllCategories() {
		infos = append(infos, categoryInfo{
			ID:          c.String(),
			Label:       c.Label(),
			Emoji:       c.Emoji(),
			Sensitivity: c.Sensitivity().String(),
			Patterns:    counts[c],
		})
	}

	data, err := json.Marshal(infos)
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("failed to marshal categories: %v", err)), nil
	}
	return gomcp.NewToolResultText(string(data)), nil
}

func (s *QGitServer) handleScan(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	result, errResult := s.scanRequest(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	return gomcp.NewToolResultText(report.Format(result)), nil
}

func (s *QGitServer) handleScanTOML(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	result, errResult := s.scanRequest(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	data, err := domain.MarshalReport(result, s.version)
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("failed to marshal report: %v", err)), nil
	}
	return gomcp.NewToolResultText(string(data)), nil
}

type previewResult struct {
	Content string   `json:"content"`
	Added   []string `json:"added"`
}

func (s *QGitServer) handlePreviewIgnore(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var only []domain.RiskCategory
	for _, id := range req.GetStringSlice("categories", nil) {
		c, err := domain.ParseCategory(id)
		if err != nil {
			return gomcp.NewToolResultError(err.Error()), nil
		}
		only = append(only, c)
	}

	result, errResult := s.scanRequest(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	existing, ok := req.GetArguments()["existing"].(string)
	if !ok {
		data, err := os.ReadFile(filepath.Join(result.Root, ".gitignore"))
		if err != nil && !os.IsNotExist(err) {
			return gomcp.NewToolResultError(fmt.Sprintf("failed to read .gitignore: %v", err)), nil
		}
		existing = string(data)
	}

	content, added := ignorefile.Preview(existing, ignorefile.Recommend(result, only...))
	if added == nil {
		added = []string{}
	}
	data, err := json.Marshal(previewResult{Content: content, Added: added})
	if err != nil {
		return gomcp.NewToolResultError(fmt.Sprintf("failed to marshal preview: %v", err)), nil
	}
	return gomcp.NewToolResultText(string(data)), nil
}

// scanRequest scans the "path" argument. A non-nil tool result reports a
// failure back to the client.
func (s *QGitServer) scanRequest(ctx context.Context, req gomcp.CallToolRequest) (*domain.ScanResult, *gomcp.CallToolResult) {
	path, err := req.RequireString("path")
	if err != nil {
		return nil, gomcp.NewToolResultError(err.Error())
	}
	root, err := filepath.Abs(util.ExpandHome(path))
	if err != nil {
		return nil, gomcp.NewToolResultError(err.Error())
	}

	opts := []scanner.Option{scanner.WithLogger(s.logger)}
	repo := vcs.New(root, s.cmd, s.logger)
	if repo.IsRepository(ctx) {
		tracked, err := repo.ListTrackedFiles(ctx)
		if err != nil {
			return nil, gomcp.NewToolResultError(fmt.Sprintf("listing tracked files: %v", err))
		}
		opts = append(opts, scanner.WithTracked(tracked))
		if top, err := repo.TopLevel(ctx); err == nil {
			opts = append(opts, scanner.WithWorkTree(top))
		}
	}

	result, err := scanner.New(s.table, opts...).Scan(ctx, root)
	if err != nil {
		return nil, gomcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err))
	}
	s.logger.Debug("mcp scan", zap.String("root", root), zap.Int("matched", result.TotalMatched))
	return result, nil
}
