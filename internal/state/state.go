// Package state persists the incident fetch marker between invocations.
package state

import (
	"context"
	"errors"
)

// ErrNoLastRun is returned when no marker has been stored yet.
var ErrNoLastRun = errors.New("no last run recorded")

// LastRun is the fetch marker.
type LastRun struct {
	// Time is Unix seconds of the last successful fetch.
	Time int64 `json:"time"`
}

// Store reads and writes the marker for a single integration instance.
type Store interface {
	GetLastRun(ctx context.Context) (LastRun, error)
	SetLastRun(ctx context.Context, lr LastRun) error
	Reset(ctx context.Context) error
	Close() error
}
