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

// Package incidents implements the fetch-incidents command.
package incidents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/humio-connector/internal/commands/shared"
	"github.com/tombee/humio-connector/internal/humio"
	"github.com/tombee/humio-connector/internal/observability"
	"github.com/tombee/humio-connector/internal/state"
)

type options struct {
	interval    time.Duration
	reset       bool
	metricsAddr string
	jqExpr      string
}

// NewCommand creates the fetch-incidents command.
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "fetch-incidents",
		Short: "Fetch new events from Humio as incidents",
		Long: `Fetch-incidents runs the configured incident query from the last
successful run (or the configured start time on first run) until now and
prints the resulting incidents as JSON. The last-run marker advances only
after a successful query.

With --interval the fetch repeats on that interval until interrupted. Runs
never overlap; a failed run is logged and the next one proceeds.

Warning: --reset clears the last-run marker, so the next run starts from the
configured start time and may return incidents that were already fetched.`,
		Example: `  # Fetch once
  humio-connector fetch-incidents

  # Poll every minute and expose /metrics and /healthz
  humio-connector fetch-incidents --interval 1m --metrics-addr :9090

  # Print only incident names
  humio-connector fetch-incidents --jq '.[].name'`,
		Annotations: map[string]string{"group": "humio"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runFetch(ctx, cmd, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "Repeat the fetch on this interval (default from incidents.interval; 0 runs once)")
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "Clear the last-run marker before fetching")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address (default from observability.metrics_addr)")
	cmd.Flags().StringVar(&opts.jqExpr, "jq", "", "jq expression applied to each batch of incidents")

	return cmd
}

func runFetch(ctx context.Context, cmd *cobra.Command, opts options) error {
	if err := shared.ValidateJQ(opts.jqExpr); err != nil {
		return err
	}

	rt, err := shared.NewRuntime(ctx, shared.RuntimeOptions{
		State:     true,
		LogOutput: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer rt.Close(context.WithoutCancel(ctx))

	if !cmd.Flags().Changed("interval") {
		opts.interval = rt.Config.Incidents.Interval
	}
	if !cmd.Flags().Changed("metrics-addr") {
		opts.metricsAddr = rt.Config.Observability.MetricsAddr
	}
	if opts.interval < 0 {
		return shared.NewArgumentError("--interval must not be negative", nil)
	}

	if opts.reset {
		if err := rt.Store.Reset(ctx); err != nil {
			return shared.NewCommandError("failed to reset last run marker", err)
		}
		rt.Logger.Info("last run marker reset")
	}

	f := &fetcher{rt: rt, cmd: cmd, jqExpr: opts.jqExpr}

	if opts.metricsAddr != "" {
		srv := observability.NewServer(opts.metricsAddr, rt.Provider.MetricsHandler(), f.health, rt.Logger)
		srvCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- srv.Run(srvCtx) }()
		defer func() {
			cancel()
			if err := <-done; err != nil {
				rt.Logger.Warn("metrics server stopped", slog.String("error", err.Error()))
			}
		}()
	}

	if opts.interval == 0 {
		return f.fetch(ctx)
	}
	return f.poll(ctx, opts.interval)
}

type fetcher struct {
	rt     *shared.Runtime
	cmd    *cobra.Command
	jqExpr string
}

// fetch runs one fetch-incidents invocation and prints the batch.
func (f *fetcher) fetch(ctx context.Context) error {
	result, err := f.rt.Integration.Execute(ctx, humio.CmdFetchIncidents, nil)
	if err != nil {
		return err
	}

	incidents, _ := result.Raw.([]humio.Incident)
	if incidents == nil {
		incidents = []humio.Incident{}
	}
	return shared.WriteFiltered(ctx, f.cmd.OutOrStdout(), f.jqExpr, incidents)
}

// poll fetches immediately and then on every tick until ctx is done.
// A run that overlaps a tick delays the next run rather than racing it.
func (f *fetcher) poll(ctx context.Context, interval time.Duration) error {
	f.rt.Logger.Info("polling for incidents", slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := f.fetch(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			f.rt.Logger.Error("fetch-incidents failed", slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			f.rt.Logger.Info("polling stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// health reports whether the last-run store is readable.
func (f *fetcher) health(ctx context.Context) error {
	_, err := f.rt.Store.GetLastRun(ctx)
	if err != nil && !errors.Is(err, state.ErrNoLastRun) {
		return fmt.Errorf("last run store: %w", err)
	}
	return nil
}
