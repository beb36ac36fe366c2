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

/*
Package cli provides the root command and shared configuration for the
humio-connector CLI.

This package creates the main Cobra command tree and handles global concerns like
version information, persistent flags, and error handling. Individual commands
are implemented in the internal/commands subpackages.

# Command Tree

	humio-connector
	├── exec             Run any Humio command (humio-query, humio-poll, ...)
	├── commands         List commands and their parameters
	├── test             Check connectivity (test-module)
	├── fetch-incidents  Fetch new events as incidents
	├── mcp-server       Expose commands as MCP tools over stdio
	├── auth             Manage the API key in the OS keychain
	├── version          Show version
	└── help             Show help

# Global Flags

	--verbose, -v    Enable debug logging
	--quiet, -q      Only log errors
	--json           Output in JSON format
	--config         Path to config file

# Exit Codes

  - 0: Success
  - 1: Command failed
  - 2: Invalid configuration
  - 3: Invalid argument or unknown command
  - 4: Humio returned an error
*/
package cli
