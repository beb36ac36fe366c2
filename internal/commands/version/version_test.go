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

package version

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/tombee/humio-connector/internal/cli"
	"github.com/tombee/humio-connector/internal/commands/shared"
)

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()

	if cmd.Use != "version" {
		t.Errorf("expected use 'version', got %q", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected short description to be set")
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	shared.SetVersion("1.0.0", "test123", "2025-12-22")
	t.Cleanup(func() {
		shared.SetVersion("dev", "unknown", "unknown")
		shared.ResetFlagsForTest()
	})

	root := cli.NewRootCommand()
	root.AddCommand(NewVersionCommand())
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	return buf.String()
}

func TestVersionOutput(t *testing.T) {
	output := execute(t, "version")

	if !strings.Contains(output, "humio-connector version 1.0.0") {
		t.Errorf("expected output to contain version '1.0.0', got: %s", output)
	}
	if !strings.Contains(output, "test123") {
		t.Errorf("expected output to contain commit, got: %s", output)
	}
}

func TestVersionJSONOutput(t *testing.T) {
	output := execute(t, "version", "--json")

	var info VersionInfo
	if err := json.Unmarshal([]byte(output), &info); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}

	if info.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", info.Version)
	}
	if info.Commit != "test123" {
		t.Errorf("expected commit 'test123', got %q", info.Commit)
	}
	if info.BuildDate != "2025-12-22" {
		t.Errorf("expected build date '2025-12-22', got %q", info.BuildDate)
	}
	if info.Commands != 12 {
		t.Errorf("expected 12 commands, got %d", info.Commands)
	}
	if !info.Success || info.Command != "version" {
		t.Errorf("unexpected envelope: %+v", info.JSONResponse)
	}
}
