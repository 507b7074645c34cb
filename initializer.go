// Copyright 2026 The retryhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retryhttp

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Bishtashish/retryhttp/request"
	"github.com/Bishtashish/retryhttp/retry"
	"github.com/cenkalti/backoff/v4"
)

// An Initializer prepares an outbound request before its first
// attempt, for example by setting headers or installing retry
// handlers. Initialize is called exactly once per request.
type Initializer interface {
	Initialize(r *request.Request) error
}

// The InitializerFunc type is an adapter to allow the use of ordinary
// functions as request initializers.
type InitializerFunc func(r *request.Request) error

// Initialize calls f(r).
func (f InitializerFunc) Initialize(r *request.Request) error {
	return f(r)
}

// Chain composes several initializers into one that runs them in
// order, stopping at the first error. Later initializers see, and may
// override, the effects of earlier ones, so a RetryInitializer placed
// after a credential initializer takes over the request's
// unsuccessful-response handler while keeping the credential handler
// first in its decision chain.
func Chain(initializers ...Initializer) Initializer {
	chain := make([]Initializer, len(initializers))
	copy(chain, initializers)
	return InitializerFunc(func(r *request.Request) error {
		for _, i := range chain {
			if err := i.Initialize(r); err != nil {
				return err
			}
		}
		return nil
	})
}

// A TimeoutInitializer sets per-attempt connect and read timeouts on
// requests. Zero values leave the transport's defaults in place. It is
// typically placed in a Chain ahead of a RetryInitializer.
type TimeoutInitializer struct {
	Connect time.Duration
	Read    time.Duration
}

// Initialize copies the configured timeouts onto r.
func (i TimeoutInitializer) Initialize(r *request.Request) error {
	r.ConnectTimeout = i.Connect
	r.ReadTimeout = i.Read
	return nil
}

// A RetryInitializer installs retry behavior on individual outbound
// requests: a retry budget, a composed unsuccessful-response handler,
// and a backoff-driven I/O error handler.
//
// One RetryInitializer is shared by all requests made through a given
// client configuration. It holds at most one retry Policy and exactly
// one credential-refresh handler, and is safe for concurrent use: each
// Initialize call manufactures fresh, request-scoped handler state.
type RetryInitializer struct {
	// Credentials is the credential-refresh handler, consulted first
	// on every unsuccessful response so that an expired or invalid
	// credential is refreshed before any backoff-based retry is
	// considered. It is required: Initialize panics if it is nil.
	Credentials request.UnsuccessfulResponseHandler

	// Policy decides which status codes are retryable, how many
	// retries are allowed, and how backoff grows. If nil, retries are
	// disabled entirely and only Credentials is installed.
	Policy *retry.Policy

	// Sleep performs retry waits for the installed handlers. If nil,
	// DefaultSleeper is used.
	Sleep Sleeper
}

// Initialize configures r with this initializer's retry behavior.
//
// With a policy present, r's retry budget is set to the policy's
// MaxRetries, its unsuccessful-response handler is set to the
// credential handler chained with a status code handler, and its I/O
// error handler is set to a BackOffIOErrorHandler. The two failure
// channels receive independent backoff generators, both created fresh
// for this request.
//
// With a nil policy, r's retry budget is forced to zero, no I/O error
// handler is installed, and the credential handler alone becomes the
// unsuccessful-response handler, since credential refresh retry is
// independent of the policy.
func (i *RetryInitializer) Initialize(r *request.Request) error {
	if i.Credentials == nil {
		panic("retryhttp: nil credentials handler")
	}
	if i.Policy == nil {
		r.RetryBudget = 0
		r.UnsuccessfulResponseHandler = i.Credentials
		return nil
	}
	r.RetryBudget = i.Policy.MaxRetries()
	r.UnsuccessfulResponseHandler = &composedResponseHandler{
		credentials: i.Credentials,
		status: &statusResponseHandler{
			policy:  i.Policy,
			backOff: i.Policy.NewBackOff(),
			sleep:   i.Sleep,
			now:     time.Now,
		},
	}
	r.IOErrorHandler = &BackOffIOErrorHandler{
		BackOff: i.Policy.NewBackOff(),
		Sleep:   i.Sleep,
	}
	return nil
}

// composedResponseHandler chains credential refresh retry ahead of
// status code retry. It is a persistent, request-scoped handler: the
// transport holds a stable reference and calls it again on each
// subsequent failure of the same logical request.
type composedResponseHandler struct {
	credentials request.UnsuccessfulResponseHandler
	status      *statusResponseHandler
}

// HandleResponse delegates to the credential handler first. If it
// indicates a retry, or fails, the status code handler is never
// consulted.
func (h *composedResponseHandler) HandleResponse(r *request.Request, resp *http.Response, supportsRetry bool) (bool, error) {
	doRetry, err := h.credentials.HandleResponse(r, resp, supportsRetry)
	if doRetry || err != nil {
		return doRetry, err
	}
	return h.status.HandleResponse(r, resp, supportsRetry)
}

// statusResponseHandler retries responses whose status code is in the
// policy's retryable set, waiting before each retry it indicates. The
// wait is the Retry-After response header when the server supplies
// one, capped at the policy's max interval, and otherwise the next
// value of a per-request backoff generator. Generator exhaustion ends
// retrying on this channel.
type statusResponseHandler struct {
	policy  *retry.Policy
	backOff backoff.BackOff
	sleep   Sleeper
	now     func() time.Time
}

func (h *statusResponseHandler) HandleResponse(r *request.Request, resp *http.Response, supportsRetry bool) (bool, error) {
	if !supportsRetry {
		return false, nil
	}
	if !h.policy.RetryableStatus(resp.StatusCode) {
		return false, nil
	}
	d := retryAfter(resp, h.now())
	if d > 0 {
		if max := h.policy.MaxInterval(); d > max {
			d = max
		}
	} else {
		d = h.backOff.NextBackOff()
		if d == backoff.Stop {
			return false, nil
		}
	}
	sleep := h.sleep
	if sleep == nil {
		sleep = DefaultSleeper
	}
	if err := sleep(r.Context(), d); err != nil {
		return false, err
	}
	return true, nil
}

// retryAfter extracts the wait requested by a Retry-After response
// header, which may be either a delta in seconds or an HTTP-date
// (RFC 7231 section 7.1.3). Zero means the header is absent, invalid,
// or already in the past.
func retryAfter(resp *http.Response, now time.Time) time.Duration {
	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
