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
	"github.com/tombee/humio-connector/internal/humio"
	connerrors "github.com/tombee/humio-connector/pkg/errors"
)

// Error codes for structured JSON output
const (
	ErrorCodeInvalidConfig   = "E201" // Invalid or missing configuration
	ErrorCodeMissingAPIKey   = "E203" // API key missing or unresolvable
	ErrorCodeInvalidArgument = "E302" // Bad command argument
	ErrorCodeUnknownCommand  = "E304" // Command not in the dispatch table
	ErrorCodeNotFound        = "E401" // Resource not found
	ErrorCodeInternal        = "E402" // Internal error
	ErrorCodeAPIError        = "E403" // Humio returned an unexpected status
)

// errorCodeFor maps an exit code (and the error, for finer detail) to a
// JSON error code.
func errorCodeFor(exitCode int, err error) string {
	switch exitCode {
	case ExitInvalidConfig:
		var cfgErr *connerrors.ConfigError
		if connerrors.As(err, &cfgErr) && cfgErr.Key == "humio.api_key" {
			return ErrorCodeMissingAPIKey
		}
		return ErrorCodeInvalidConfig
	case ExitInvalidArgument:
		var unknown *humio.UnknownCommandError
		if connerrors.As(err, &unknown) {
			return ErrorCodeUnknownCommand
		}
		return ErrorCodeInvalidArgument
	case ExitAPIError:
		if humio.IsNotFound(err) {
			return ErrorCodeNotFound
		}
		return ErrorCodeAPIError
	default:
		return ErrorCodeInternal
	}
}
