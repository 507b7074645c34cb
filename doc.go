// Copyright 2026 The retryhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package retryhttp installs configurable retry behavior on individual
outbound HTTP requests made through a client SDK.

It is not an HTTP client. The transport that sends requests and owns
the attempt loop is supplied by the caller; this package only decides
whether, and how long to wait before, the transport retries a failed
attempt. Decisions flow through two channels: an unsuccessful HTTP
response (status code based retry, preceded by credential-refresh
retry) and an I/O error below the HTTP layer (exponential backoff).

Build a policy with package retry and install it on a request with a
RetryInitializer:

	policy, err := retry.NewPolicy(retry.Config{
		RetryStatusCodes: []int{500, 503},
		MaxRetries:       4,
	})
	...
	init := &retryhttp.RetryInitializer{
		Credentials: creds,
		Policy:      policy,
	}
	r, err := request.New("GET", "https://api.example.com/v1/widgets", nil)
	...
	err = init.Initialize(r)

After initialization the request carries a retry budget, an
unsuccessful-response handler, and an I/O error handler, which the
caller's transport consults after each failed attempt. The credential
handler always runs first on a failing response, so an expired
credential is refreshed before any backoff-based retry is considered.

Several initializers can be composed into one with Chain, for example
a credential initializer from package credentials followed by a
RetryInitializer:

	adapter := credentials.NewAdapter(tokenSource)
	init := retryhttp.Chain(adapter, &retryhttp.RetryInitializer{
		Credentials: adapter,
		Policy:      policy,
	})

A nil Policy is valid and means retries are disabled entirely, except
for credential refresh retry, which is always installed.
*/
package retryhttp
