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

package secrets

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// envRefPattern matches a whole-value ${VAR} reference.
var envRefPattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

// Resolver turns a secret reference into its value.
type Resolver struct {
	keychain SecretBackend
	env      SecretBackend
}

// NewResolver creates a resolver over the given keychain and environment
// backends. Nil backends fall back to the system defaults.
func NewResolver(keychain, env SecretBackend) *Resolver {
	if keychain == nil {
		keychain = NewKeychainBackend()
	}
	if env == nil {
		env = NewEnvBackend()
	}
	return &Resolver{keychain: keychain, env: env}
}

// IsReference reports whether ref names a secret rather than holding one.
func IsReference(ref string) bool {
	return strings.HasPrefix(ref, "keychain:") || envRefPattern.MatchString(ref)
}

// Resolve returns the secret for ref. Literal values are returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	if name, ok := strings.CutPrefix(ref, "keychain:"); ok {
		if name == "" {
			name = DefaultKeyName
		}
		v, err := r.keychain.Get(ctx, name)
		if err != nil {
			return "", fmt.Errorf("failed to resolve keychain secret %q: %w", name, err)
		}
		return v, nil
	}

	if m := envRefPattern.FindStringSubmatch(ref); m != nil {
		v, err := r.env.Get(ctx, m[1])
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", ref, err)
		}
		return v, nil
	}

	return ref, nil
}

// Keychain exposes the keychain backend for the auth commands.
func (r *Resolver) Keychain() SecretBackend {
	return r.keychain
}
