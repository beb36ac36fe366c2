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

// Package mcpserver implements the mcp-server command, which exposes the
// Humio commands as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tombee/humio-connector/internal/commands/shared"
	"github.com/tombee/humio-connector/internal/mcp/server"
	"github.com/tombee/humio-connector/internal/observability"
)

type options struct {
	writesPerMinute int
	callsPerMinute  int
	metricsAddr     string
}

// NewCommand creates the mcp-server command
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve the Humio commands as MCP tools",
		Long: `Start an MCP (Model Context Protocol) server on stdio.

Every Humio command becomes a tool with the same name and string
parameters. fetch-incidents is only usable when the incident query is
configured. Logs go to stderr because stdout carries the protocol.

Configuration example for an MCP client:
  {
    "mcpServers": {
      "humio": {
        "command": "humio-connector",
        "args": ["mcp-server"]
      }
    }
  }

Tools that create or delete alerts and query jobs are rate limited
separately from read-only tools.`,
		Annotations: map[string]string{"group": "humio"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCPServer(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.writesPerMinute, "writes-per-minute", 10, "Limit on write tool calls per minute")
	cmd.Flags().IntVar(&opts.callsPerMinute, "calls-per-minute", 100, "Limit on all tool calls per minute")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address (default from observability.metrics_addr)")

	return cmd
}

func runMCPServer(cmd *cobra.Command, opts options) error {
	ctx := cmd.Context()

	rt, srv, err := newServer(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer rt.Close(context.WithoutCancel(ctx))

	if !cmd.Flags().Changed("metrics-addr") {
		opts.metricsAddr = rt.Config.Observability.MetricsAddr
	}
	if opts.metricsAddr != "" {
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		metrics := observability.NewServer(opts.metricsAddr, rt.Provider.MetricsHandler(), nil, rt.Logger)
		go func() {
			if err := metrics.Run(metricsCtx); err != nil {
				rt.Logger.Warn("metrics server stopped", slog.String("error", err.Error()))
			}
		}()
	}

	if err := srv.Run(ctx); err != nil {
		return shared.NewCommandError("MCP server failed", err)
	}
	return nil
}

func newServer(ctx context.Context, cmd *cobra.Command, opts options) (*shared.Runtime, *server.Server, error) {
	if opts.writesPerMinute < 0 || opts.callsPerMinute < 0 {
		return nil, nil, shared.NewArgumentError("rate limits must not be negative", nil)
	}

	rt, err := shared.NewRuntime(ctx, shared.RuntimeOptions{
		OptionalState: true,
		LogOutput:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, err
	}

	versionStr, _, _ := shared.GetVersion()
	srv, err := server.NewServer(rt.Integration, server.ServerConfig{
		Name:            "humio-connector",
		Version:         versionStr,
		Logger:          rt.Logger,
		WritesPerMinute: opts.writesPerMinute,
		CallsPerMinute:  opts.callsPerMinute,
	})
	if err != nil {
		_ = rt.Close(context.WithoutCancel(ctx))
		return nil, nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	return rt, srv, nil
}
