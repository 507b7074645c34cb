// Copyright 2026 The retryhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides the validated, immutable retry policy consumed
// by the request initializers in the parent retryhttp package.
//
// A Policy is built from a Config and holds the set of retryable HTTP
// status codes, the retry budget, and the parameters of a deterministic
// exponential backoff sequence. Construct one with NewPolicy:
//
//	policy, err := retry.NewPolicy(retry.Config{
//		RetryStatusCodes: []int{500, 503},
//		MaxRetries:       4,
//	})
//	...
//
// A Policy is a pure value object. One instance is typically shared,
// read-only, by every request made through a given client configuration.
// Per-request backoff state is obtained from the policy on demand via
// NewBackOff, which returns a new, independent generator on every call.
package retry
