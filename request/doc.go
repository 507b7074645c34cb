// Copyright 2026 The retryhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the Request type, the configurable outbound
request that retryhttp initializers act on, and the handler interfaces
through which a transport consults retry policy after a failed attempt.

A Request describes how to make a logical HTTP request, potentially
involving repeated attempts if a retry is necessary after a failure. For
those familiar with the Go standard HTTP library, net/http, a Request
looks like a stripped-down http.Request with all server-side fields
removed and the body replaced with a simple []byte, because a request
that may be replayed requires a pre-buffered body. Fields are named and
typed consistently with http.Request wherever possible.

Create a request, let the configured initializers prepare it, and hand
it to whatever transport drives the attempt loop:

	r, err := request.New("GET", "https://example.com", nil)
	...
	err = initializer.Initialize(r)
	...
	resp, err := transport.Do(r.ToHTTP(ctx))

On top of the http.Request-like fields, a Request carries the mutable
retry surface the transport consumes: RetryBudget, the maximum number
of retry attempts; UnsuccessfulResponseHandler, consulted after each
attempt that yields a failing HTTP response; and IOErrorHandler,
consulted after each attempt that fails below the HTTP layer. Package
retryhttp populates these three fields; this package only defines them.

The attempt counter itself belongs to the transport. Both handlers are
pure decision functions invoked once per failed attempt: they report
whether to retry, after performing any waiting they require, and they
never own the retry loop.
*/
package request
