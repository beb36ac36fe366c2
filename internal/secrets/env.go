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
	"os"
)

// EnvBackend reads secrets from environment variables. It is read-only.
type EnvBackend struct {
	lookup func(string) (string, bool)
}

// NewEnvBackend returns a backend over the process environment.
func NewEnvBackend() *EnvBackend {
	return &EnvBackend{lookup: os.LookupEnv}
}

func (e *EnvBackend) Name() string { return "env" }

func (e *EnvBackend) Get(_ context.Context, key string) (string, error) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: environment variable %s", ErrSecretNotFound, key)
	}
	return v, nil
}

func (e *EnvBackend) Set(context.Context, string, string) error { return ErrReadOnlyBackend }

func (e *EnvBackend) Delete(context.Context, string) error { return ErrReadOnlyBackend }

func (e *EnvBackend) Available() bool { return true }
