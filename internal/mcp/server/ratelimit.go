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

package server

import (
	"golang.org/x/time/rate"
)

// RateLimiter bounds tool calls. Every call draws from the call bucket;
// calls that change remote state also draw from the write bucket.
type RateLimiter struct {
	writes *rate.Limiter
	calls  *rate.Limiter
}

// NewRateLimiter creates a rate limiter with per-minute budgets. The full
// budget is available as an initial burst.
func NewRateLimiter(writesPerMinute, callsPerMinute int) *RateLimiter {
	return &RateLimiter{
		writes: rate.NewLimiter(perMinute(writesPerMinute), writesPerMinute),
		calls:  rate.NewLimiter(perMinute(callsPerMinute), callsPerMinute),
	}
}

func perMinute(n int) rate.Limit {
	return rate.Limit(float64(n) / 60.0)
}

// AllowWrite reports whether a state-changing call may proceed.
func (rl *RateLimiter) AllowWrite() bool {
	return rl.writes.Allow()
}

// AllowCall reports whether any tool call may proceed.
func (rl *RateLimiter) AllowCall() bool {
	return rl.calls.Allow()
}
