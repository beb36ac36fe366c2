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

package shared

import (
	"encoding/json"
	"io"
	"os"
)

// JSONResponse is the base envelope for all JSON output
type JSONResponse struct {
	Version string `json:"@version"`
	Command string `json:"command"`
	Success bool   `json:"success"`
}

// JSONError represents a structured error with code, message, and suggestion
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// CommandResponse wraps a successful command result.
type CommandResponse struct {
	JSONResponse
	Markdown string         `json:"markdown,omitempty"`
	Outputs  map[string]any `json:"outputs,omitempty"`
	Result   any            `json:"result,omitempty"`
}

// currentCommand names the command in JSON error envelopes.
var currentCommand = "humio-connector"

// SetCurrentCommand records the running command for error reporting.
func SetCurrentCommand(name string) {
	currentCommand = name
}

// NewResponse returns a successful envelope for command.
func NewResponse(command string) JSONResponse {
	return JSONResponse{Version: "1.0", Command: command, Success: true}
}

// WriteJSON marshals v as indented JSON to w.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// EmitJSON writes v to stdout.
func EmitJSON(v any) error {
	return WriteJSON(os.Stdout, v)
}

// WriteJSONError writes a failed envelope carrying errs.
func WriteJSONError(w io.Writer, command string, errs []JSONError) error {
	type errorResponse struct {
		JSONResponse
		Errors []JSONError `json:"errors"`
	}

	return WriteJSON(w, errorResponse{
		JSONResponse: JSONResponse{
			Version: "1.0",
			Command: command,
			Success: false,
		},
		Errors: errs,
	})
}
