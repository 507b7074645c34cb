// Copyright 2026 The retryhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retryhttp

import (
	"errors"
	"syscall"

	"github.com/Bishtashish/retryhttp/request"
	"github.com/cenkalti/backoff/v4"
)

// A BackOffIOErrorHandler retries attempts that failed below the HTTP
// layer, sleeping for the next value of its backoff generator before
// each retry. When the generator signals exhaustion, the handler stops
// retrying and the I/O error propagates to the caller unchanged.
//
// The handler is stateful through its generator and must be created
// fresh for each request. RetryInitializer does this automatically;
// construct one directly only when wiring handlers by hand.
type BackOffIOErrorHandler struct {
	// BackOff supplies successive wait durations. It must not be nil
	// and must not be shared with another request.
	BackOff backoff.BackOff

	// Sleep performs the wait. If nil, DefaultSleeper is used.
	Sleep Sleeper

	// TransientOnly restricts retries to errors with some prospect of
	// succeeding on a later attempt: timeouts, connection resets, and
	// connection refusals. Other I/O errors then fail immediately.
	TransientOnly bool
}

// HandleError decides whether the transport should retry after err
// ended an attempt, sleeping for the next backoff duration when it
// decides to retry. If the request's context ends the sleep early, the
// context error is returned and no retry is indicated.
func (h *BackOffIOErrorHandler) HandleError(r *request.Request, err error, supportsRetry bool) (bool, error) {
	if !supportsRetry {
		return false, nil
	}
	if h.TransientOnly && !transientErr(err) {
		return false, nil
	}
	d := h.BackOff.NextBackOff()
	if d == backoff.Stop {
		return false, nil
	}
	sleep := h.Sleep
	if sleep == nil {
		sleep = DefaultSleeper
	}
	if serr := sleep(r.Context(), d); serr != nil {
		return false, serr
	}
	return true, nil
}

// transientErr reports whether err, or any of its wrapped causes,
// indicates a condition a later attempt might not hit: a timeout, a
// connection reset, or a connection refusal. Temporary() is never
// consulted, as its semantics aren't entirely clear.
func transientErr(err error) bool {
	var t interface{ Timeout() bool }
	if errors.As(err, &t) && t.Timeout() {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ECONNRESET || errno == syscall.ECONNREFUSED
	}
	return false
}
