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
Package secrets resolves the Humio API key from its configured reference.

A reference takes one of three forms:

	keychain:<name>  - OS keychain entry under the "humio-connector" service
	${VAR}           - environment variable
	anything else    - a literal key

The keychain backend uses github.com/zalando/go-keyring, which maps to
macOS Keychain, the Linux Secret Service API and the Windows Credential
Manager.
*/
package secrets
