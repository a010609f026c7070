package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpserver "github.com/greyhatharold/QGit/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as MCP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		srv := mcpserver.NewQGitServer(table, newRunner(), logger, Version)

		port := cfg.GetInt("port")
		if port > 0 {
			logger.Info("serving MCP over SSE", zap.Int("port", port))
			return server.NewSSEServer(srv.MCPServer(),
				server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)),
			).Start(fmt.Sprintf(":%d", port))
		}
		return server.NewStdioServer(srv.MCPServer()).Listen(cmd.Context(), os.Stdin, os.Stdout)
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (0 = stdio)")
	rootCmd.AddCommand(serveCmd)
}
