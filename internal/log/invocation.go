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

package log

import (
	"context"
	"log/slog"
	"time"
)

// Invocation describes a single connector command invocation for logging purposes.
type Invocation struct {
	// Command is the connector command name (e.g., "humio-query").
	Command string

	// InvocationID uniquely identifies this invocation.
	InvocationID string

	// Metadata contains additional fields to attach to both log lines.
	Metadata map[string]any
}

// LogInvocationStart logs that a command is about to run.
func LogInvocationStart(logger *slog.Logger, inv *Invocation) {
	attrs := []any{
		"event", "command_start",
		CommandKey, inv.Command,
	}
	if inv.InvocationID != "" {
		attrs = append(attrs, InvocationIDKey, inv.InvocationID)
	}
	for k, v := range inv.Metadata {
		attrs = append(attrs, k, v)
	}

	logger.Info("command being called", attrs...)
}

// LogInvocationResult logs the outcome of a command.
func LogInvocationResult(logger *slog.Logger, inv *Invocation, err error, duration time.Duration) {
	attrs := []any{
		"event", "command_result",
		CommandKey, inv.Command,
		"success", err == nil,
		DurationKey, duration.Milliseconds(),
	}
	if inv.InvocationID != "" {
		attrs = append(attrs, InvocationIDKey, inv.InvocationID)
	}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}
	for k, v := range inv.Metadata {
		attrs = append(attrs, k, v)
	}

	level := slog.LevelInfo
	message := "command completed"
	if err != nil {
		level = slog.LevelError
		message = "command failed"
	}

	logger.Log(context.Background(), level, message, attrs...)
}
