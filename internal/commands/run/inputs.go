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

package run

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tombee/humio-connector/internal/commands/shared"
	"github.com/tombee/humio-connector/internal/humio"
)

// loadArgsFile reads a JSON object of arguments from path, or from stdin
// when path is "-".
func loadArgsFile(path string, stdin io.Reader) (map[string]any, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		if f, ok := stdin.(*os.File); ok && shared.IsTerminal(f) {
			return nil, fmt.Errorf("--args-file - requires input on stdin (pipe or redirect)")
		}
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read args file: %w", err)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON arguments: %w", err)
	}
	return raw, nil
}

// parseArgs merges the args file (if any) with key=value pairs. Pairs win.
func parseArgs(pairs []string, argsFile string, stdin io.Reader) (humio.Args, error) {
	args := humio.Args{}
	if argsFile != "" {
		raw, err := loadArgsFile(argsFile, stdin)
		if err != nil {
			return nil, shared.NewArgumentError("invalid --args-file", err)
		}
		args = humio.ArgsFromMap(raw)
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, shared.NewArgumentError(fmt.Sprintf("invalid argument %q (expected key=value)", pair), nil)
		}
		args[key] = value
	}

	return args, nil
}
