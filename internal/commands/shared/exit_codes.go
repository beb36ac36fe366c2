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
	"errors"
	"fmt"
	"io"
	"os"

	connerrors "github.com/tombee/humio-connector/pkg/errors"
)

// Exit codes for humio-connector commands
const (
	ExitSuccess         = 0
	ExitCommandFailed   = 1
	ExitInvalidConfig   = 2
	ExitInvalidArgument = 3
	ExitAPIError        = 4
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error

	// Reported errors were already shown by the command; only the exit
	// code is used.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		if e.Message == "" {
			return e.Cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewCommandError creates an error for a failed command
func NewCommandError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitCommandFailed, Message: msg, Cause: cause}
}

// NewConfigError creates an error for invalid or missing configuration
func NewConfigError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidConfig, Message: msg, Cause: cause}
}

// NewArgumentError creates an error for bad command-line arguments
func NewArgumentError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidArgument, Message: msg, Cause: cause}
}

// ExitCodeFor maps an error to its exit code. An ExitError in the chain
// wins; otherwise the error category decides.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch connerrors.Classify(err) {
	case connerrors.TypeConfig, connerrors.TypeValidation:
		return ExitInvalidConfig
	case connerrors.TypeArgument:
		return ExitInvalidArgument
	case connerrors.TypeAPI, connerrors.TypeNotFound:
		return ExitAPIError
	default:
		return ExitCommandFailed
	}
}

// HandleExitError reports err once and exits with the matching code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(ReportError(os.Stdout, os.Stderr, err, GetJSON()))
}

// ReportError writes err as plain text to stderr, or as a JSON error
// document to stdout when asJSON is set, and returns the exit code.
func ReportError(stdout, stderr io.Writer, err error, asJSON bool) int {
	code := ExitCodeFor(err)

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Reported {
		return code
	}

	if asJSON {
		jsonErr := JSONError{
			Code:    errorCodeFor(code, err),
			Message: userMessage(err),
		}
		if uv, ok := connerrors.UserFacing(err); ok {
			jsonErr.Suggestion = uv.Suggestion()
		}
		if writeErr := WriteJSONError(stdout, currentCommand, []JSONError{jsonErr}); writeErr == nil {
			return code
		}
	}

	fmt.Fprintln(stderr, RenderError("Error: "+userMessage(err)))
	printUserVisibleSuggestion(stderr, err)
	return code
}

// userMessage returns the text printed for err. An ExitError with its own
// message is printed whole; otherwise the user-facing message wins.
func userMessage(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Message != "" {
		return exitErr.Error()
	}
	if uv, ok := connerrors.UserFacing(err); ok {
		return uv.UserMessage()
	}
	return err.Error()
}

// printUserVisibleSuggestion prints the suggestion of the first
// UserVisibleError in the chain, if any.
func printUserVisibleSuggestion(w io.Writer, err error) {
	uv, ok := connerrors.UserFacing(err)
	if !ok {
		return
	}
	if suggestion := uv.Suggestion(); suggestion != "" {
		fmt.Fprintf(w, "\n%s %s\n", RenderLabel("Suggestion:"), suggestion)
	}
}
