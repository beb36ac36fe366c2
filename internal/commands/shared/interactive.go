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
	"io"
	"os"

	"golang.org/x/term"
)

// IsNonInteractive reports whether prompting is impossible or unwanted:
// HUMIO_CONNECTOR_NON_INTERACTIVE=true, a CI environment, or stdin not a TTY.
func IsNonInteractive() bool {
	if os.Getenv("HUMIO_CONNECTOR_NON_INTERACTIVE") == "true" {
		return true
	}
	if isCIEnvironment() {
		return true
	}
	return !term.IsTerminal(int(os.Stdin.Fd()))
}

// isCIEnvironment checks for common CI environment variables.
func isCIEnvironment() bool {
	for _, envVar := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI"} {
		if v := os.Getenv(envVar); v == "true" || v == "1" {
			return true
		}
	}
	return os.Getenv("JENKINS_HOME") != ""
}

// IsTerminal reports whether w is a terminal. Non-file writers are not.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ReadSecret reads a line from the terminal without echo.
func ReadSecret(f *os.File) (string, error) {
	b, err := term.ReadPassword(int(f.Fd()))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
