// Copyright 2026 The retryhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retryhttp

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Bishtashish/retryhttp/request"
	"github.com/Bishtashish/retryhttp/retry"
)

func TestRetryInitializer(t *testing.T) {
	t.Run("nil credentials", func(t *testing.T) {
		i := &RetryInitializer{}
		r := newRequest(t)
		assert.PanicsWithValue(t, "retryhttp: nil credentials handler", func() {
			_ = i.Initialize(r)
		})
	})
	t.Run("nil policy", func(t *testing.T) {
		creds := &mockResponseHandler{}
		i := &RetryInitializer{Credentials: creds}
		r := newRequest(t)
		r.RetryBudget = 99
		require.NoError(t, i.Initialize(r))
		assert.Equal(t, 0, r.RetryBudget)
		assert.Same(t, creds, r.UnsuccessfulResponseHandler)
		assert.Nil(t, r.IOErrorHandler)
	})
	t.Run("policy installed", func(t *testing.T) {
		creds := &mockResponseHandler{}
		i := &RetryInitializer{Credentials: creds, Policy: newPolicy(t, retry.Config{
			RetryStatusCodes: []int{500},
			MaxRetries:       5,
		})}
		r := newRequest(t)
		require.NoError(t, i.Initialize(r))
		assert.Equal(t, 5, r.RetryBudget)
		assert.IsType(t, &composedResponseHandler{}, r.UnsuccessfulResponseHandler)
		require.IsType(t, &BackOffIOErrorHandler{}, r.IOErrorHandler)
		assert.NotNil(t, r.IOErrorHandler.(*BackOffIOErrorHandler).BackOff)
	})
	t.Run("handlers are request scoped", func(t *testing.T) {
		creds := &mockResponseHandler{}
		i := &RetryInitializer{Credentials: creds, Policy: newPolicy(t, retry.Config{MaxRetries: 3})}
		r1, r2 := newRequest(t), newRequest(t)
		require.NoError(t, i.Initialize(r1))
		require.NoError(t, i.Initialize(r2))
		assert.NotSame(t, r1.UnsuccessfulResponseHandler, r2.UnsuccessfulResponseHandler)
		assert.NotSame(t, r1.IOErrorHandler, r2.IOErrorHandler)
	})
}

func TestComposedResponseHandler(t *testing.T) {
	policy := newPolicy(t, retry.Config{RetryStatusCodes: []int{500}, MaxRetries: 5})

	t.Run("credential retry short-circuits", func(t *testing.T) {
		// Status 404 is not retryable, but the credential handler's
		// decision comes first and wins.
		creds := &mockResponseHandler{}
		sleep := &sleepRecorder{}
		r, h := installed(t, creds, policy, sleep.Sleep)
		resp := &http.Response{StatusCode: 404, Header: http.Header{}}
		creds.On("HandleResponse", r, resp, true).Return(true, nil).Once()
		doRetry, err := h.HandleResponse(r, resp, true)
		assert.NoError(t, err)
		assert.True(t, doRetry)
		assert.Empty(t, sleep.slept)
		creds.AssertExpectations(t)
	})
	t.Run("credential error short-circuits", func(t *testing.T) {
		creds := &mockResponseHandler{}
		sleep := &sleepRecorder{}
		r, h := installed(t, creds, policy, sleep.Sleep)
		resp := &http.Response{StatusCode: 500, Header: http.Header{}}
		cause := errors.New("refresh failed")
		creds.On("HandleResponse", r, resp, true).Return(false, cause).Once()
		doRetry, err := h.HandleResponse(r, resp, true)
		assert.Same(t, cause, err)
		assert.False(t, doRetry)
		assert.Empty(t, sleep.slept)
	})
	t.Run("retryable status", func(t *testing.T) {
		creds := &mockResponseHandler{}
		sleep := &sleepRecorder{}
		r, h := installed(t, creds, policy, sleep.Sleep)
		resp := &http.Response{StatusCode: 500, Header: http.Header{}}
		creds.On("HandleResponse", r, resp, true).Return(false, nil)
		doRetry, err := h.HandleResponse(r, resp, true)
		assert.NoError(t, err)
		assert.True(t, doRetry)
		assert.Equal(t, []time.Duration{500 * time.Millisecond}, sleep.slept)
	})
	t.Run("non-retryable status", func(t *testing.T) {
		creds := &mockResponseHandler{}
		sleep := &sleepRecorder{}
		r, h := installed(t, creds, policy, sleep.Sleep)
		resp := &http.Response{StatusCode: 404, Header: http.Header{}}
		creds.On("HandleResponse", r, resp, true).Return(false, nil)
		doRetry, err := h.HandleResponse(r, resp, true)
		assert.NoError(t, err)
		assert.False(t, doRetry)
		assert.Empty(t, sleep.slept)
	})
	t.Run("stable across attempts", func(t *testing.T) {
		// The transport holds one handler reference per request and
		// calls it on each subsequent failure; the backoff sequence
		// must progress across those calls.
		creds := &mockResponseHandler{}
		sleep := &sleepRecorder{}
		r, h := installed(t, creds, policy, sleep.Sleep)
		resp := &http.Response{StatusCode: 500, Header: http.Header{}}
		creds.On("HandleResponse", r, resp, true).Return(false, nil)
		for i := 0; i < 3; i++ {
			doRetry, err := h.HandleResponse(r, resp, true)
			require.NoError(t, err)
			require.True(t, doRetry)
		}
		assert.Equal(t, []time.Duration{
			500 * time.Millisecond,
			1 * time.Second,
			2 * time.Second,
		}, sleep.slept)
	})
}

func TestStatusResponseHandler(t *testing.T) {
	policy := newPolicy(t, retry.Config{
		RetryStatusCodes: []int{500, 503},
		MaxRetries:       2,
		MaxInterval:      10 * time.Second,
	})

	t.Run("supports retry false", func(t *testing.T) {
		sleep := &sleepRecorder{}
		h := newStatusHandler(policy, sleep.Sleep)
		doRetry, err := h.HandleResponse(newRequest(t), response(503, nil), false)
		assert.NoError(t, err)
		assert.False(t, doRetry)
		assert.Empty(t, sleep.slept)
	})
	t.Run("exhaustion", func(t *testing.T) {
		sleep := &sleepRecorder{}
		h := newStatusHandler(policy, sleep.Sleep)
		r := newRequest(t)
		resp := response(503, nil)
		for i := 0; i < 2; i++ {
			doRetry, err := h.HandleResponse(r, resp, true)
			require.NoError(t, err)
			require.True(t, doRetry)
		}
		doRetry, err := h.HandleResponse(r, resp, true)
		assert.NoError(t, err)
		assert.False(t, doRetry)
		assert.Equal(t, []time.Duration{500 * time.Millisecond, 1 * time.Second}, sleep.slept)
	})
	t.Run("retry-after seconds", func(t *testing.T) {
		sleep := &sleepRecorder{}
		h := newStatusHandler(policy, sleep.Sleep)
		r := newRequest(t)
		doRetry, err := h.HandleResponse(r, response(503, map[string]string{"Retry-After": "3"}), true)
		require.NoError(t, err)
		assert.True(t, doRetry)
		// The header wait does not consume the backoff generator.
		doRetry, err = h.HandleResponse(r, response(503, nil), true)
		require.NoError(t, err)
		assert.True(t, doRetry)
		assert.Equal(t, []time.Duration{3 * time.Second, 500 * time.Millisecond}, sleep.slept)
	})
	t.Run("retry-after capped at max interval", func(t *testing.T) {
		sleep := &sleepRecorder{}
		h := newStatusHandler(policy, sleep.Sleep)
		doRetry, err := h.HandleResponse(newRequest(t), response(503, map[string]string{"Retry-After": "3600"}), true)
		require.NoError(t, err)
		assert.True(t, doRetry)
		assert.Equal(t, []time.Duration{10 * time.Second}, sleep.slept)
	})
	t.Run("retry-after http-date", func(t *testing.T) {
		sleep := &sleepRecorder{}
		h := newStatusHandler(policy, sleep.Sleep)
		at := h.now().Add(5 * time.Second)
		doRetry, err := h.HandleResponse(newRequest(t), response(503, map[string]string{
			"Retry-After": at.UTC().Format(http.TimeFormat),
		}), true)
		require.NoError(t, err)
		assert.True(t, doRetry)
		require.Len(t, sleep.slept, 1)
		assert.Greater(t, sleep.slept[0], time.Duration(0))
		assert.LessOrEqual(t, sleep.slept[0], 5*time.Second)
	})
	t.Run("retry-after in the past", func(t *testing.T) {
		sleep := &sleepRecorder{}
		h := newStatusHandler(policy, sleep.Sleep)
		doRetry, err := h.HandleResponse(newRequest(t), response(503, map[string]string{"Retry-After": "-1"}), true)
		require.NoError(t, err)
		assert.True(t, doRetry)
		assert.Equal(t, []time.Duration{500 * time.Millisecond}, sleep.slept)
	})
	t.Run("cancelled wait", func(t *testing.T) {
		h := newStatusHandler(policy, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := newRequest(t).WithContext(ctx)
		doRetry, err := h.HandleResponse(r, response(503, nil), true)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, doRetry)
	})
}

func TestChain(t *testing.T) {
	t.Run("order", func(t *testing.T) {
		var order []string
		a := InitializerFunc(func(_ *request.Request) error {
			order = append(order, "a")
			return nil
		})
		b := InitializerFunc(func(_ *request.Request) error {
			order = append(order, "b")
			return nil
		})
		require.NoError(t, Chain(a, b).Initialize(newRequest(t)))
		assert.Equal(t, []string{"a", "b"}, order)
	})
	t.Run("stops at first error", func(t *testing.T) {
		cause := errors.New("boom")
		var reached bool
		a := InitializerFunc(func(_ *request.Request) error { return cause })
		b := InitializerFunc(func(_ *request.Request) error {
			reached = true
			return nil
		})
		assert.Same(t, cause, Chain(a, b).Initialize(newRequest(t)))
		assert.False(t, reached)
	})
	t.Run("empty chain", func(t *testing.T) {
		assert.NoError(t, Chain().Initialize(newRequest(t)))
	})
	t.Run("with timeout initializer", func(t *testing.T) {
		creds := &mockResponseHandler{}
		init := Chain(
			TimeoutInitializer{Connect: 30 * time.Second, Read: time.Minute},
			&RetryInitializer{Credentials: creds, Policy: newPolicy(t, retry.Config{MaxRetries: 4})},
		)
		r := newRequest(t)
		require.NoError(t, init.Initialize(r))
		assert.Equal(t, 30*time.Second, r.ConnectTimeout)
		assert.Equal(t, time.Minute, r.ReadTimeout)
		assert.Equal(t, 4, r.RetryBudget)
	})
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Duration(0), retryAfter(response(503, nil), now))
	assert.Equal(t, 7*time.Second, retryAfter(response(503, map[string]string{"Retry-After": "7"}), now))
	assert.Equal(t, time.Duration(0), retryAfter(response(503, map[string]string{"Retry-After": "0"}), now))
	assert.Equal(t, time.Duration(0), retryAfter(response(503, map[string]string{"Retry-After": "soon"}), now))
	at := now.Add(90 * time.Second)
	assert.Equal(t, 90*time.Second, retryAfter(response(503, map[string]string{
		"Retry-After": at.Format(http.TimeFormat),
	}), now))
	past := now.Add(-time.Minute)
	assert.Equal(t, time.Duration(0), retryAfter(response(503, map[string]string{
		"Retry-After": past.Format(http.TimeFormat),
	}), now))
}

// installed runs a RetryInitializer against a fresh request and hands
// back the composed unsuccessful-response handler it installed.
func installed(t *testing.T, creds request.UnsuccessfulResponseHandler, policy *retry.Policy, sleep Sleeper) (*request.Request, request.UnsuccessfulResponseHandler) {
	t.Helper()
	i := &RetryInitializer{Credentials: creds, Policy: policy, Sleep: sleep}
	r := newRequest(t)
	require.NoError(t, i.Initialize(r))
	require.NotNil(t, r.UnsuccessfulResponseHandler)
	return r, r.UnsuccessfulResponseHandler
}

func newStatusHandler(policy *retry.Policy, sleep Sleeper) *statusResponseHandler {
	return &statusResponseHandler{
		policy:  policy,
		backOff: policy.NewBackOff(),
		sleep:   sleep,
		now:     time.Now,
	}
}

func newPolicy(t *testing.T, cfg retry.Config) *retry.Policy {
	t.Helper()
	p, err := retry.NewPolicy(cfg)
	require.NoError(t, err)
	return p
}

func newRequest(t *testing.T) *request.Request {
	t.Helper()
	r, err := request.New("GET", "https://api.example.com/v1/widgets", nil)
	require.NoError(t, err)
	return r
}

func response(code int, headers map[string]string) *http.Response {
	resp := &http.Response{StatusCode: code, Header: make(http.Header)}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return nil
}

type mockResponseHandler struct {
	mock.Mock
}

func (m *mockResponseHandler) HandleResponse(r *request.Request, resp *http.Response, supportsRetry bool) (bool, error) {
	args := m.Called(r, resp, supportsRetry)
	return args.Bool(0), args.Error(1)
}
