// Copyright 2026 The Chatbridge Authors
// SPDX-License-Identifier: MIT

// Package batch runs many independent bridge invocations with bounded
// concurrency.
package batch

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when Run is given a non-positive limit.
const DefaultConcurrency = 4

// Invoker performs one request/response exchange. *bridge.Bridge satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, userInput, apiKey string) (json.RawMessage, error)
}

// Result is the outcome for one input.
type Result struct {
	// Index is the position of Input in the slice passed to Run.
	Index int

	// ID correlates log lines for this item. It is never sent to the endpoint.
	ID string

	Input    string
	Response json.RawMessage
	Err      error
}

// Run invokes inv once per input, at most concurrency at a time, and returns
// results in input order. A failed item does not cancel the others.
func Run(ctx context.Context, inv Invoker, apiKey string, inputs []string, concurrency int) []Result {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	results := make([]Result, len(inputs))

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			id := uuid.NewString()
			slog.Debug("invoking bridge", "id", id, "index", i, "input_len", len(input))

			resp, err := inv.Invoke(ctx, input, apiKey)
			if err != nil {
				slog.Debug("invocation failed", "id", id, "index", i, "error", err)
			}
			results[i] = Result{
				Index:    i,
				ID:       id,
				Input:    input,
				Response: resp,
				Err:      err,
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return an error

	return results
}

// Failed counts results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
