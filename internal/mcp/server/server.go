// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the Humio commands as MCP tools over stdio.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tombee/humio-connector/internal/humio"
	connerrors "github.com/tombee/humio-connector/pkg/errors"
)

// Executor runs connector commands. *humio.Integration satisfies it.
type Executor interface {
	Execute(ctx context.Context, command string, args humio.Args) (*humio.Result, error)
	Commands() []humio.CommandInfo
}

// Server wraps the MCP server and the registered Humio tools.
type Server struct {
	mcpServer   *server.MCPServer
	executor    Executor
	tools       []mcp.Tool
	name        string
	version     string
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Name is the server name (default: "humio-connector")
	Name string

	// Version is the connector version
	Version string

	// Logger must not write to stdout, which carries the protocol.
	Logger *slog.Logger

	// WritesPerMinute and CallsPerMinute bound tool usage (defaults 10 and 100).
	WritesPerMinute int
	CallsPerMinute  int
}

// NewServer creates a server with one tool per command.
func NewServer(executor Executor, config ServerConfig) (*Server, error) {
	if executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if config.Name == "" {
		config.Name = "humio-connector"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.WritesPerMinute <= 0 {
		config.WritesPerMinute = 10
	}
	if config.CallsPerMinute <= 0 {
		config.CallsPerMinute = 100
	}

	s := &Server{
		mcpServer:   server.NewMCPServer(config.Name, config.Version, server.WithToolCapabilities(false)),
		executor:    executor,
		name:        config.Name,
		version:     config.Version,
		rateLimiter: NewRateLimiter(config.WritesPerMinute, config.CallsPerMinute),
		logger:      config.Logger.With(slog.String("component", "mcp")),
	}

	for _, info := range executor.Commands() {
		s.addTool(info)
	}

	return s, nil
}

func (s *Server) addTool(info humio.CommandInfo) {
	opts := []mcp.ToolOption{
		mcp.WithDescription(info.Description),
		mcp.WithReadOnlyHintAnnotation(!slices.Contains(info.Tags, "write")),
		mcp.WithDestructiveHintAnnotation(slices.Contains(info.Tags, "destructive")),
	}
	for _, p := range info.Parameters {
		propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		if p.Default != "" {
			propOpts = append(propOpts, mcp.DefaultString(p.Default))
		}
		opts = append(opts, mcp.WithString(p.Name, propOpts...))
	}

	tool := mcp.NewTool(info.Name, opts...)
	s.tools = append(s.tools, tool)
	s.mcpServer.AddTool(tool, s.handler(info))
}

// Tools returns the registered tool definitions.
func (s *Server) Tools() []mcp.Tool {
	return slices.Clone(s.tools)
}

func (s *Server) handler(info humio.CommandInfo) server.ToolHandlerFunc {
	write := slices.Contains(info.Tags, "write")

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !s.rateLimiter.AllowCall() || (write && !s.rateLimiter.AllowWrite()) {
			s.logger.Warn("tool call rate limited", slog.String("tool", info.Name))
			return errorResponse("rate limit exceeded, try again later"), nil
		}

		args := humio.ArgsFromMap(request.GetArguments())
		result, err := s.executor.Execute(ctx, info.Name, args)
		if err != nil {
			return errorResponse(errorMessage(err)), nil
		}
		return toolResult(result)
	}
}

func toolResult(result *humio.Result) (*mcp.CallToolResult, error) {
	res := textResponse(result.Markdown)
	if result.Outputs == nil {
		return res, nil
	}

	b, err := json.MarshalIndent(result.Outputs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode outputs: %w", err)
	}
	res.Content = append(res.Content, mcp.NewTextContent(string(b)))
	return res, nil
}

func errorMessage(err error) string {
	if uv, ok := connerrors.UserFacing(err); ok {
		msg := uv.UserMessage()
		if s := uv.Suggestion(); s != "" {
			msg += "\n" + s
		}
		return msg
	}
	return err.Error()
}

// Run serves the MCP protocol on stdio until the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server",
		slog.String("version", s.version),
		slog.Int("tools", len(s.tools)))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

func textResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}
