package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/newsrag/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools:
  retrieve  - nearest news passages for a query
  ask       - answer a question from the corpus (when an LLM is configured)

Resources:
  newsrag://documents       - stored documents
  newsrag://documents/{id}  - the text of one document

By default the server communicates over stdio. Use --http to serve
streamable HTTP instead.

Examples:
  newsrag mcp serve
  newsrag mcp serve --http 127.0.0.1:8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().String("http", "", "listen address for streamable HTTP (empty = stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	if err := ensureIndex(cmd.Context()); err != nil {
		return fmt.Errorf("loading index: %w", err)
	}

	ports := &mcp.Ports{
		Retrieval: retrievalService,
		Answer:    answerService,
		Document:  documentService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if addr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
