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

// globals holds the persistent flag values bound by the root command.
var globals struct {
	verbose bool
	quiet   bool
	json    bool
	config  string
}

// Build information, injected into main via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// RegisterFlagPointers returns pointers for the root command to bind
// --verbose, --quiet, --json and --config.
func RegisterFlagPointers() (*bool, *bool, *bool, *string) {
	return &globals.verbose, &globals.quiet, &globals.json, &globals.config
}

// ValidateGlobalFlags rejects contradictory persistent flags.
func ValidateGlobalFlags() error {
	if globals.verbose && globals.quiet {
		return NewArgumentError("--verbose and --quiet cannot be used together", nil)
	}
	return nil
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version, commit, buildDate = v, c, b
}

// GetVersion returns version, commit and build date.
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

func GetVerbose() bool      { return globals.verbose }
func GetQuiet() bool        { return globals.quiet }
func GetJSON() bool         { return globals.json }
func GetConfigPath() string { return globals.config }

// ResetFlagsForTest clears global flag state between tests.
func ResetFlagsForTest() {
	globals.verbose, globals.quiet, globals.json = false, false, false
	globals.config = ""
	currentCommand = "humio-connector"
}
