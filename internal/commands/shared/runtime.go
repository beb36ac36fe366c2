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
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/tombee/humio-connector/internal/config"
	"github.com/tombee/humio-connector/internal/humio"
	connlog "github.com/tombee/humio-connector/internal/log"
	"github.com/tombee/humio-connector/internal/observability"
	"github.com/tombee/humio-connector/internal/secrets"
	"github.com/tombee/humio-connector/internal/state"
	connerrors "github.com/tombee/humio-connector/pkg/errors"
)

// RuntimeOptions selects the optional parts of a Runtime.
type RuntimeOptions struct {
	// State opens the last-run store and enables fetch-incidents.
	State bool

	// OptionalState opens the store only when the incident query is
	// configured, leaving fetch-incidents unavailable otherwise.
	OptionalState bool

	// LogOutput receives logs. Defaults to os.Stderr.
	LogOutput io.Writer

	// Resolver resolves the API key reference. Defaults to keychain + env.
	Resolver *secrets.Resolver
}

// Runtime is everything a command needs, built from the loaded config.
type Runtime struct {
	Config      *config.Config
	Logger      *slog.Logger
	Provider    *observability.Provider
	Integration *humio.Integration
	Store       state.Store
}

// NewRuntime loads configuration and wires the client, integration,
// telemetry and (optionally) the state store.
func NewRuntime(ctx context.Context, opts RuntimeOptions) (*Runtime, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Log, opts.LogOutput)

	provider, err := observability.NewProvider(ctx, observability.Config{
		ServiceName:    "humio-connector",
		ServiceVersion: version,
		Exporter:       cfg.Observability.Tracing.Exporter,
		Endpoint:       cfg.Observability.Tracing.Endpoint,
		Insecure:       cfg.Observability.Tracing.Insecure,
		SampleRatio:    cfg.Observability.Tracing.SampleRatio,
	})
	if err != nil {
		return nil, &connerrors.ConfigError{
			Key:    "observability.tracing",
			Reason: err.Error(),
			Cause:  err,
		}
	}

	rt := &Runtime{Config: cfg, Logger: logger, Provider: provider}
	if err := rt.wire(ctx, opts); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) wire(ctx context.Context, opts RuntimeOptions) error {
	cfg := rt.Config

	resolver := opts.Resolver
	if resolver == nil {
		resolver = secrets.NewResolver(nil, nil)
	}
	apiKey, err := resolver.Resolve(ctx, cfg.Humio.APIKey)
	if err != nil {
		return &connerrors.ConfigError{
			Key:    "humio.api_key",
			Reason: "cannot resolve API key",
			Cause:  err,
		}
	}
	rt.Logger.Debug("resolved API key", slog.String("api_key", connlog.SanitizeAPIKey(apiKey)))

	metrics, err := humio.NewMetrics(rt.Provider.MeterProvider())
	if err != nil {
		return err
	}

	client, err := humio.NewClient(humio.ClientConfig{
		BaseURL:   cfg.Humio.URL,
		Verify:    !cfg.Humio.Insecure,
		Proxies:   cfg.Humio.EffectiveProxies(),
		APIKey:    apiKey,
		RateLimit: cfg.Humio.RateLimit,
		Burst:     cfg.Humio.Burst,
		Timeout:   cfg.Humio.Timeout,
	}, humio.WithClientLogger(rt.Logger), humio.WithClientMetrics(metrics))
	if err != nil {
		return &connerrors.ConfigError{Key: "humio", Reason: err.Error(), Cause: err}
	}

	intOpts := []humio.Option{humio.WithMetrics(metrics), humio.WithLogger(rt.Logger)}

	withState := opts.State
	if opts.OptionalState && !withState {
		withState = cfg.ValidateIncidents() == nil
	}

	if withState {
		if err := cfg.ValidateIncidents(); err != nil {
			return &connerrors.ConfigError{Key: "incidents", Reason: err.Error(), Cause: err}
		}

		store, err := state.NewSQLiteStore(state.StateConfig{
			Path:        cfg.State.Path,
			Integration: cfg.State.Integration,
		})
		if err != nil {
			return &connerrors.ConfigError{Key: "state.path", Reason: err.Error(), Cause: err}
		}
		rt.Store = store

		intOpts = append(intOpts, humio.WithIncidents(humio.IncidentConfig{
			QueryString:           cfg.Incidents.QueryParameter,
			Repository:            cfg.Incidents.QueryRepository,
			StartTime:             cfg.Incidents.QueryStartTime,
			TimeZoneOffsetMinutes: cfg.Incidents.QueryTimeZoneOffsetMinutes,
		}, store))
	}

	rt.Integration = humio.NewIntegration(client, intOpts...)
	return nil
}

// Close releases the store and flushes telemetry.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.Store != nil {
		errs = append(errs, rt.Store.Close())
	}
	if rt.Provider != nil {
		errs = append(errs, rt.Provider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func newLogger(cfg config.LogConfig, out io.Writer) *slog.Logger {
	if out == nil {
		out = os.Stderr
	}

	level := cfg.Level
	switch {
	case GetVerbose():
		level = "debug"
	case GetQuiet():
		level = "error"
	}

	return connlog.New(&connlog.Config{
		Level:     level,
		Format:    connlog.Format(cfg.Format),
		Output:    out,
		AddSource: cfg.AddSource,
	})
}
