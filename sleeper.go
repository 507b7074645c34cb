// Copyright 2026 The retryhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retryhttp

import (
	"context"
	"time"
)

// A Sleeper blocks the calling goroutine for the given duration, or
// until the context is done, whichever comes first. If the context
// ends the wait early, the context's error is returned and the caller
// abandons the retry.
//
// Handlers in this package use DefaultSleeper unless another Sleeper
// is configured. Tests typically substitute a Sleeper that records
// requested durations instead of waiting.
type Sleeper func(ctx context.Context, d time.Duration) error

// DefaultSleeper waits on a timer, abandoning the wait if ctx is done
// first.
func DefaultSleeper(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
