// Copyright 2026 The retryhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
)

// An UnsuccessfulResponseHandler decides whether to retry a request
// attempt that produced an HTTP response indicating failure.
//
// The transport driving the request calls HandleResponse once per
// failing response of the same logical request, with supportsRetry
// false if the request cannot be replayed (for example because its
// body could not be re-read). HandleResponse returns true to direct
// the transport to retry, after performing any waiting the decision
// requires, and false to let the response propagate to the caller
// unchanged. A handler never converts a failing response into an
// error; a non-nil error return reports only the handler's own
// failure, and the transport abandons the request when it sees one.
type UnsuccessfulResponseHandler interface {
	HandleResponse(r *Request, resp *http.Response, supportsRetry bool) (bool, error)
}

// The UnsuccessfulResponseHandlerFunc type is an adapter to allow the
// use of ordinary functions as unsuccessful response handlers.
type UnsuccessfulResponseHandlerFunc func(r *Request, resp *http.Response, supportsRetry bool) (bool, error)

// HandleResponse calls f(r, resp, supportsRetry).
func (f UnsuccessfulResponseHandlerFunc) HandleResponse(r *Request, resp *http.Response, supportsRetry bool) (bool, error) {
	return f(r, resp, supportsRetry)
}

// An IOErrorHandler decides whether to retry a request attempt that
// failed below the HTTP layer, before any response was received.
//
// The transport calls HandleError with the I/O error that ended the
// attempt. HandleError returns true to direct the transport to retry,
// after performing any waiting the decision requires, and false to let
// err propagate to the caller unchanged. The handler must not swallow
// or rewrite err; it owns only the retry decision.
type IOErrorHandler interface {
	HandleError(r *Request, err error, supportsRetry bool) (bool, error)
}

// The IOErrorHandlerFunc type is an adapter to allow the use of
// ordinary functions as I/O error handlers.
type IOErrorHandlerFunc func(r *Request, err error, supportsRetry bool) (bool, error)

// HandleError calls f(r, err, supportsRetry).
func (f IOErrorHandlerFunc) HandleError(r *Request, err error, supportsRetry bool) (bool, error) {
	return f(r, err, supportsRetry)
}
