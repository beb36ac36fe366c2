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

package errors

// UserVisibleError defines errors that should be displayed to end users
// with user-friendly messages and actionable suggestions.
//
// Humio API errors and configuration errors implement this interface so
// the CLI can print a hint next to the failure.
type UserVisibleError interface {
	error

	// IsUserVisible returns true if this error should be shown to users.
	IsUserVisible() bool

	// UserMessage returns a user-friendly error message.
	UserMessage() string

	// Suggestion returns actionable guidance for resolving the error.
	// Returns empty string if no suggestion is available.
	Suggestion() string
}

// ErrorClassifier lets callers branch on an error category without
// depending on the concrete type. The CLI maps categories to exit codes.
type ErrorClassifier interface {
	error

	// ErrorType returns a string identifying the error category.
	// Examples: "config", "validation", "argument", "not_found", "api"
	ErrorType() string
}

// Error categories returned by ErrorType.
const (
	TypeConfig     = "config"
	TypeValidation = "validation"
	TypeArgument   = "argument"
	TypeNotFound   = "not_found"
	TypeAPI        = "api"
)

// Classify returns the category of the first ErrorClassifier in err's tree,
// or "" when none is present.
func Classify(err error) string {
	var c ErrorClassifier
	if As(err, &c) {
		return c.ErrorType()
	}
	return ""
}
