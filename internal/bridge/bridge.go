// Copyright 2026 The Chatbridge Authors
// SPDX-License-Identifier: MIT

// Package bridge turns a line of user text into a chat-completion request,
// sends it to the remote endpoint, and hands back the endpoint's JSON reply
// untouched.
//
// A Bridge holds no per-call state. Every Invoke builds a fresh request,
// performs exactly one round-trip, and never retries. HTTP error statuses are
// not treated as failures: whatever JSON the endpoint returns is passed
// through, and the caller inspects it.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/http/httpguts"
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Compile-time check that the standard client satisfies Doer.
var _ Doer = (*http.Client)(nil)

// Bridge issues chat-completion requests through a Doer.
type Bridge struct {
	doer     Doer
	endpoint string
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithDoer replaces the HTTP client used to dispatch requests.
func WithDoer(d Doer) Option {
	return func(b *Bridge) {
		b.doer = d
	}
}

// WithEndpoint overrides the request URL. Intended for tests and for
// gateways that speak the same wire format.
func WithEndpoint(url string) Option {
	return func(b *Bridge) {
		b.endpoint = url
	}
}

// New creates a Bridge. Without options it posts to Endpoint using
// http.DefaultClient, inheriting that client's timeout behavior.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		doer:     http.DefaultClient,
		endpoint: Endpoint,
	}
	for _, o := range opts {
		o(b)
	}
	if b.doer == nil {
		b.doer = http.DefaultClient
	}
	if b.endpoint == "" {
		b.endpoint = Endpoint
	}
	return b
}

// Endpoint returns the URL this bridge posts to.
func (b *Bridge) Endpoint() string {
	return b.endpoint
}

// Invoke sends userInput to the endpoint authenticated with apiKey and
// returns the decoded JSON body. The returned document is the exact value the
// server sent, with surrounding whitespace removed.
func (b *Bridge) Invoke(ctx context.Context, userInput, apiKey string) (json.RawMessage, error) {
	req, err := b.newRequest(ctx, userInput, apiKey)
	if err != nil {
		return nil, err
	}

	resp, err := b.doer.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	if resp == nil {
		return nil, &Error{Kind: KindTransport, Err: errors.New("no response")}
	}
	if resp.Body == nil {
		return nil, &Error{Kind: KindDecode, Err: io.ErrUnexpectedEOF}
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	return decodeBody(resp.Body)
}

// Result is the outcome of an asynchronous invocation.
type Result struct {
	Response json.RawMessage
	Err      error
}

// Go starts Invoke in a new goroutine and returns a channel that receives
// exactly one Result and is then closed. Abandoning the channel does not stop
// the request; cancel ctx for that.
func (b *Bridge) Go(ctx context.Context, userInput, apiKey string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		resp, err := b.Invoke(ctx, userInput, apiKey)
		ch <- Result{Response: resp, Err: err}
	}()
	return ch
}

// Invoke runs a single invocation with a default Bridge.
func Invoke(ctx context.Context, userInput, apiKey string) (json.RawMessage, error) {
	return New().Invoke(ctx, userInput, apiKey)
}

func (b *Bridge) newRequest(ctx context.Context, userInput, apiKey string) (*http.Request, error) {
	auth := "Bearer " + apiKey
	// The value itself is left out of the error so the credential never
	// reaches a log line.
	if !httpguts.ValidHeaderFieldValue(auth) {
		return nil, &Error{Kind: KindConstruction, Err: errors.New("invalid character in Authorization header value")}
	}

	body, err := NewChatRequest(userInput).Marshal()
	if err != nil {
		return nil, &Error{Kind: KindConstruction, Err: fmt.Errorf("encoding body: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindConstruction, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	return req, nil
}

func decodeBody(r io.Reader) (json.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Err: fmt.Errorf("reading body: %w", err)}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &Error{Kind: KindDecode, Err: io.ErrUnexpectedEOF}
	}

	var probe json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &Error{Kind: KindDecode, Err: err}
	}
	return json.RawMessage(data), nil
}
