// Copyright 2026 The retryhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// InitialInterval is the wait duration produced by the first value of
// every backoff generator manufactured by a Policy. It is fixed: only
// the growth multiplier and the ceiling are configurable.
const InitialInterval = 500 * time.Millisecond

// DefaultMaxInterval is the backoff growth ceiling used when
// Config.MaxInterval is left zero.
const DefaultMaxInterval = 2 * time.Minute

// DefaultMultiplier is the backoff growth factor used when
// Config.Multiplier is left zero.
const DefaultMultiplier = 2.0

// A Config collects the inputs for building a retry Policy. The zero
// value is valid and describes a policy that never retries on status
// code and allows no retries.
type Config struct {
	// RetryStatusCodes lists the HTTP status codes eligible for retry.
	// Order and duplicates are irrelevant. If empty, no response status
	// triggers a retry.
	RetryStatusCodes []int

	// MaxRetries caps the number of retry attempts for a single
	// request. It must not be negative. Zero, the default, disables
	// retries without disabling the rest of the policy.
	MaxRetries int

	// MaxInterval is the ceiling for backoff growth. It must be
	// positive. If zero, DefaultMaxInterval is used.
	MaxInterval time.Duration

	// Multiplier is the backoff growth factor applied after each
	// retry. It must be at least 1. If zero, DefaultMultiplier is
	// used.
	Multiplier float64
}

// An InvalidConfigError reports a Config rejected by NewPolicy. It is
// only ever returned from NewPolicy: a successfully built Policy cannot
// raise configuration errors later.
type InvalidConfigError struct {
	// Err describes which fields were rejected and why.
	Err error
}

func (e *InvalidConfigError) Error() string {
	return "retryhttp/retry: invalid configuration: " + e.Err.Error()
}

func (e *InvalidConfigError) Unwrap() error {
	return e.Err
}

// A Policy is a validated, immutable retry configuration plus a factory
// for per-request backoff generators.
//
// A Policy is safe for concurrent use by multiple goroutines: it has no
// mutable state, and every backoff generator it manufactures is
// independent.
type Policy struct {
	statusCodes map[int]struct{}
	maxRetries  int
	maxInterval time.Duration
	multiplier  float64
}

// NewPolicy validates cfg and returns an immutable Policy.
//
// Zero values for MaxInterval and Multiplier are replaced by
// DefaultMaxInterval and DefaultMultiplier before validation. If
// MaxRetries is negative, MaxInterval is not positive, or Multiplier is
// less than 1, NewPolicy returns a nil Policy and an
// *InvalidConfigError. Validation happens here and only here, so a
// misconfigured policy surfaces immediately rather than on first use.
func NewPolicy(cfg Config) (*Policy, error) {
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = DefaultMaxInterval
	}
	if cfg.Multiplier == 0 {
		cfg.Multiplier = DefaultMultiplier
	}

	err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.MaxRetries, validation.Min(0)),
		validation.Field(&cfg.MaxInterval, validation.Min(time.Duration(1))),
		validation.Field(&cfg.Multiplier, validation.Min(1.0)),
	)
	if err != nil {
		return nil, &InvalidConfigError{Err: err}
	}

	p := &Policy{
		statusCodes: make(map[int]struct{}, len(cfg.RetryStatusCodes)),
		maxRetries:  cfg.MaxRetries,
		maxInterval: cfg.MaxInterval,
		multiplier:  cfg.Multiplier,
	}
	for _, code := range cfg.RetryStatusCodes {
		p.statusCodes[code] = struct{}{}
	}

	// Exercise the generator path once so a bad interaction with the
	// backoff engine surfaces at build time, not on the first retry.
	p.NewBackOff()

	return p, nil
}

// NewBackOff returns a fresh backoff generator for a single request.
//
// Successive calls to the generator's NextBackOff method produce the
// deterministic sequence
//
//	interval[0] = InitialInterval
//	interval[n+1] = min(interval[n] * multiplier, maxInterval)
//
// with no randomization jitter. After MaxRetries values the generator
// produces backoff.Stop, so it enforces the retry cap itself even if
// the transport driving the request does not.
//
// Each call returns a new, independent generator. Generators are
// stateful and must not be shared between concurrent requests.
func (p *Policy) NewBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = InitialInterval
	b.RandomizationFactor = 0
	b.Multiplier = p.multiplier
	b.MaxInterval = p.maxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(p.maxRetries))
}

// RetryStatusCodes returns a copy of the set of HTTP status codes
// eligible for retry. The order of the returned slice is unspecified.
func (p *Policy) RetryStatusCodes() []int {
	codes := make([]int, 0, len(p.statusCodes))
	for code := range p.statusCodes {
		codes = append(codes, code)
	}
	return codes
}

// RetryableStatus reports whether an HTTP response with the given
// status code is eligible for retry under this policy.
func (p *Policy) RetryableStatus(code int) bool {
	_, ok := p.statusCodes[code]
	return ok
}

// MaxRetries returns the maximum number of retry attempts allowed for
// a single request.
func (p *Policy) MaxRetries() int {
	return p.maxRetries
}

// MaxInterval returns the ceiling for backoff growth.
func (p *Policy) MaxInterval() time.Duration {
	return p.maxInterval
}

// Multiplier returns the backoff growth factor.
func (p *Policy) Multiplier() float64 {
	return p.multiplier
}
