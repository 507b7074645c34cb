// Copyright 2026 The retryhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package credentials adapts an OAuth2 token source into the two roles
// retryhttp needs from a credential collaborator: a request
// initializer that attaches a bearer Authorization header, and the
// credential-refresh unsuccessful-response handler that runs ahead of
// status code retry.
package credentials

import (
	"net/http"

	"github.com/Bishtashish/retryhttp/request"
	"golang.org/x/oauth2"
)

// An Adapter attaches bearer tokens from an oauth2.TokenSource to
// outbound requests and retries requests rejected for stale
// credentials.
//
// One Adapter is shared by all requests made through a given client
// configuration. Wrap the token source with oauth2.ReuseTokenSource so
// that Token only round-trips to the authorization server when the
// cached token has expired; the Adapter itself does not cache.
type Adapter struct {
	source oauth2.TokenSource
}

// NewAdapter returns an Adapter drawing tokens from ts, which must not
// be nil.
func NewAdapter(ts oauth2.TokenSource) *Adapter {
	if ts == nil {
		panic("retryhttp/credentials: nil token source")
	}
	return &Adapter{source: ts}
}

// Initialize sets the request's Authorization header from the token
// source and installs the Adapter as the request's
// unsuccessful-response handler. A RetryInitializer running later in
// the chain replaces the handler with one that still consults the
// Adapter first.
func (a *Adapter) Initialize(r *request.Request) error {
	if err := a.setAuthHeader(r); err != nil {
		return err
	}
	r.UnsuccessfulResponseHandler = a
	return nil
}

// HandleResponse refreshes the Authorization header and reports a
// retry when the response indicates the request was rejected for bad
// credentials (401 Unauthorized). All other responses are left to the
// rest of the handler chain.
//
// If the token source cannot supply a token, the error is returned and
// the transport abandons the request. A 401 that persists across
// refreshed tokens is bounded by the request's retry budget.
func (a *Adapter) HandleResponse(r *request.Request, resp *http.Response, supportsRetry bool) (bool, error) {
	if !supportsRetry || resp.StatusCode != http.StatusUnauthorized {
		return false, nil
	}
	if err := a.setAuthHeader(r); err != nil {
		return false, err
	}
	return true, nil
}

func (a *Adapter) setAuthHeader(r *request.Request) error {
	tok, err := a.source.Token()
	if err != nil {
		return err
	}
	r.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	return nil
}
