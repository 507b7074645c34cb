// Copyright 2026 The retryhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

var (
	template, _ = http.NewRequest("GET", "", nil)
)

const (
	nilCtxMsg = "retryhttp/request: nil context"
)

// A Request describes a logical outbound HTTP request to be executed by
// a caller-supplied transport, potentially over multiple attempts.
//
// The http.Request-like fields (Method, URL, Header, Body, Host, Close)
// describe what to send. The retry surface (RetryBudget,
// UnsuccessfulResponseHandler, IOErrorHandler) is set once, at
// initialization time, by the initializers in package retryhttp, and is
// consulted by the transport after each failed attempt.
//
// A Request is mutable and request-scoped: it must not be shared
// between concurrent logical requests. The policy objects the handlers
// close over are safe to share; the handlers themselves are not.
type Request struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	// An empty string means GET.
	Method string

	// URL specifies the URL to access.
	URL *urlpkg.URL

	// Header contains the request header fields to be sent.
	//
	// For further details, see the documentation of Request.Header in
	// the net/http package.
	Header http.Header

	// Body is the pre-buffered request body to be sent. A nil or
	// empty body indicates no request body should be sent, for example
	// on a GET or DELETE request. Pre-buffering is what allows the
	// transport to replay the request on retry.
	Body []byte

	// Host optionally overrides the Host header to send. If empty, the
	// value of URL.Host is sent.
	Host string

	// Close stipulates whether to close the connection after sending
	// the request and reading the response, preventing re-use of TCP
	// connections between attempts as if Transport.DisableKeepAlives
	// were set.
	Close bool

	// ConnectTimeout bounds the time spent establishing a connection
	// for each attempt. Zero means the transport's default applies.
	ConnectTimeout time.Duration

	// ReadTimeout bounds the time spent waiting for response data on
	// each attempt. Zero means the transport's default applies.
	ReadTimeout time.Duration

	// RetryBudget is the maximum number of retry attempts the
	// transport may make for this request, not counting the initial
	// attempt. Initializers set it from the retry policy's MaxRetries;
	// zero means the request is never retried.
	RetryBudget int

	// UnsuccessfulResponseHandler, if non-nil, is consulted by the
	// transport after an attempt produces an HTTP response indicating
	// failure. The transport passes the same handler every failing
	// response of the same logical request.
	UnsuccessfulResponseHandler UnsuccessfulResponseHandler

	// IOErrorHandler, if non-nil, is consulted by the transport after
	// an attempt fails below the HTTP layer, for example due to a
	// network connectivity problem.
	IOErrorHandler IOErrorHandler

	// ctx governs the entire logical request, including every attempt
	// and every retry wait. It should only be modified by copying the
	// whole Request using WithContext.
	ctx context.Context
}

// New wraps NewWithContext using the background context.
//
// Parameter body may be nil (empty body), or it may be a string,
// []byte, io.Reader, or io.ReadCloser. If body is an io.Reader, it is
// read to the end and buffered into a []byte. If body is an
// io.ReadCloser, it is closed after buffering.
func New(method, url string, body interface{}) (*Request, error) {
	return NewWithContext(context.Background(), method, url, body)
}

// NewWithContext returns a new Request given a method, URL, and
// optional body.
//
// Parameter body may be nil (empty body), or it may be a string,
// []byte, io.Reader, or io.ReadCloser. If body is an io.Reader, it is
// read to the end and buffered into a []byte. If body is an
// io.ReadCloser, it is closed after buffering.
func NewWithContext(ctx context.Context, method, url string, body interface{}) (*Request, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("retryhttp/request: invalid method %q", method)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, err
	}
	u.Host = removeEmptyPort(u.Host)
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return &Request{
		ctx:    ctx,
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Body:   b,
		Host:   u.Host,
	}, nil
}

// Context returns the request's context. The context controls
// cancellation of the overall logical request, including any retry
// wait in progress. To change the context, use WithContext.
//
// The returned context is always non-nil; it defaults to the
// background context.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of r with its context changed to
// ctx, which must be non-nil.
//
// The context controls the entire lifetime of the logical request and
// its attempts, including any waiting done by the installed handlers
// before a retry.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	r2 := new(Request)
	*r2 = *r
	r2.ctx = ctx
	return r2
}

// ToHTTP creates an http.Request corresponding to this request, for a
// single attempt. The context of the new request is set to ctx, which
// may not be nil. The transport may call ToHTTP once per attempt; each
// call produces an independent, replayable http.Request backed by the
// same pre-buffered body.
func (r *Request) ToHTTP(ctx context.Context) *http.Request {
	hr := template.WithContext(ctx)
	hr.Method = r.Method
	hr.URL = r.URL
	hr.Header = r.Header
	if len(r.Body) > 0 {
		hr.Body = io.NopCloser(bytes.NewReader(r.Body))
		hr.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(r.Body)), nil
		}
		hr.ContentLength = int64(len(r.Body))
	}
	hr.Close = r.Close
	hr.Host = r.Host
	return hr
}

// validMethod reports whether method is a valid token per RFC 7230
// section 3.2.6, the same grammar net/http applies to methods. The
// empty string is handled by the caller, which interprets it as "GET".
func validMethod(method string) bool {
	return strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
