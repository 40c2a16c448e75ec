// Copyright 2026 The Chatbridge Authors
// SPDX-License-Identifier: MIT

package bridge_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/chatbridge/internal/bridge"
)

// capturedRequest holds what the test server saw.
type capturedRequest struct {
	method string
	header http.Header
	body   []byte
}

// newTestServer returns an httptest server that replies with status and body,
// and stores the received request in captured.
func newTestServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			data, err := io.ReadAll(r.Body)
			if err == nil {
				captured.method = r.Method
				captured.header = r.Header.Clone()
				captured.body = data
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInvoke_Scenario(t *testing.T) {
	const wantBody = `{"model":"gpt-4o-mini","messages":[{"role":"system","content":"You are a helpful assistant. Answer concisely."},{"role":"user","content":"You are a helpful assistant. Answer concisely. \n\nUser: What's 2+2?"}],"temperature":0.7}`
	const reply = `{"choices":[{"message":{"content":"4"}}]}`

	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, reply, &captured)

	b := bridge.New(bridge.WithEndpoint(srv.URL))
	got, err := b.Invoke(context.Background(), "What's 2+2?", "sk-test")
	require.NoError(t, err)

	assert.Equal(t, reply, string(got))
	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, wantBody, string(captured.body))
	assert.Equal(t, "application/json", captured.header.Get("Content-Type"))
	assert.Equal(t, "Bearer sk-test", captured.header.Get("Authorization"))
}

func TestInvoke_PromptAssemblyIsVerbatim(t *testing.T) {
	inputs := []string{
		"",
		"hello",
		"  leading and trailing  ",
		"line one\nline two\r\n",
		"<script>alert('x')</script> & more",
		`quotes "double" and \backslash\`,
		"tabs\tand unicode: héllo, 日本語, 🙂",
		"User: nested label",
	}

	for _, in := range inputs {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			m := bridge.NewMockDoer()
			b := bridge.New(bridge.WithDoer(m))

			_, err := b.Invoke(context.Background(), in, "sk-test")
			require.NoError(t, err)

			calls := m.Calls()
			require.Len(t, calls, 1)

			var body bridge.ChatRequest
			require.NoError(t, json.Unmarshal(calls[0].Body, &body))
			require.Len(t, body.Messages, 2)
			assert.Equal(t, bridge.SystemInstruction+" \n\nUser: "+in, body.Messages[1].Content)
			assert.Equal(t, bridge.SystemInstruction, body.Messages[0].Content)
		})
	}
}

func TestInvoke_BodyShape(t *testing.T) {
	m := bridge.NewMockDoer()
	b := bridge.New(bridge.WithDoer(m))

	_, err := b.Invoke(context.Background(), "anything", "sk-test")
	require.NoError(t, err)

	calls := m.Calls()
	require.Len(t, calls, 1)

	var body map[string]any
	require.NoError(t, json.Unmarshal(calls[0].Body, &body))

	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"model", "messages", "temperature"}, keys)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.Equal(t, 0.7, body["temperature"])

	msgs, ok := body["messages"].([]any)
	require.True(t, ok, "messages should be an array")
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestInvoke_Headers(t *testing.T) {
	keys := []string{"sk-test", "", "key with spaces", "sk-ünïcödé"}

	for _, key := range keys {
		t.Run(fmt.Sprintf("%q", key), func(t *testing.T) {
			m := bridge.NewMockDoer()
			b := bridge.New(bridge.WithDoer(m))

			_, err := b.Invoke(context.Background(), "hi", key)
			require.NoError(t, err)

			calls := m.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, http.MethodPost, calls[0].Method)
			assert.Equal(t, bridge.Endpoint, calls[0].URL)
			assert.Equal(t, "application/json", calls[0].Header.Get("Content-Type"))
			assert.Equal(t, "Bearer "+key, calls[0].Header.Get("Authorization"))
		})
	}
}

func TestInvoke_PassThrough(t *testing.T) {
	const doc = `{"id":"chatcmpl-1","n":12345678901234567890,"nested":{"a":[1,2.50,null,true]},"s":"é","extra":{}}`

	m := bridge.NewMockDoer(bridge.MockResponse{Body: "\n  " + doc + "  \n"})
	b := bridge.New(bridge.WithDoer(m))

	for _, in := range []string{"a", "b", ""} {
		got, err := b.Invoke(context.Background(), in, "sk-test")
		require.NoError(t, err)
		assert.Equal(t, doc, string(got))
	}
}

func TestInvoke_NonJSONDocumentsPassThrough(t *testing.T) {
	for _, doc := range []string{`[1,2,3]`, `"just a string"`, `42`, `null`} {
		m := bridge.NewMockDoer(bridge.MockResponse{Body: doc})
		got, err := bridge.New(bridge.WithDoer(m)).Invoke(context.Background(), "x", "k")
		require.NoError(t, err)
		assert.Equal(t, doc, string(got))
	}
}

func TestInvoke_ErrorStatusIsNotAnError(t *testing.T) {
	const doc = `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`

	for _, status := range []int{http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := newTestServer(t, status, doc, nil)

			got, err := bridge.New(bridge.WithEndpoint(srv.URL)).Invoke(context.Background(), "hi", "bad")
			require.NoError(t, err)
			assert.JSONEq(t, doc, string(got))
		})
	}
}

func TestInvoke_TransportFailure(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	m := bridge.NewMockDoer(bridge.MockResponse{Err: cause})
	b := bridge.New(bridge.WithDoer(m))

	got, err := b.Invoke(context.Background(), "hi", "sk-test")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, bridge.ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, bridge.ErrDecode)
	assert.Equal(t, bridge.KindTransport, bridge.KindOf(err))

	// Exactly one attempt, no retry.
	assert.Len(t, m.Calls(), 1)
}

func TestInvoke_TransportFailure_RealServerGone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := bridge.New(bridge.WithEndpoint(url)).Invoke(context.Background(), "hi", "sk-test")
	require.Error(t, err)
	assert.ErrorIs(t, err, bridge.ErrTransport)
}

func TestInvoke_CancelledContext(t *testing.T) {
	m := bridge.NewMockDoer(bridge.MockResponse{Body: `{}`})
	b := bridge.New(bridge.WithDoer(m))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Invoke(ctx, "hi", "sk-test")
	require.Error(t, err)
	assert.ErrorIs(t, err, bridge.ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.Calls())
}

func TestInvoke_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		resp bridge.MockResponse
	}{
		{"html", bridge.MockResponse{Status: http.StatusBadGateway, Body: "<html>Bad Gateway</html>"}},
		{"truncated", bridge.MockResponse{Body: `{"choices":[{"message":`}},
		{"empty", bridge.MockResponse{Body: ""}},
		{"whitespace only", bridge.MockResponse{Body: " \n\t"}},
		{"trailing garbage", bridge.MockResponse{Body: `{"a":1} {"b":2}`}},
		{"stream dropped", bridge.MockResponse{Body: `{"choices":`, BodyErr: io.ErrUnexpectedEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := bridge.NewMockDoer(tt.resp)
			got, err := bridge.New(bridge.WithDoer(m)).Invoke(context.Background(), "hi", "sk-test")
			assert.Nil(t, got)
			require.Error(t, err)
			assert.ErrorIs(t, err, bridge.ErrDecode)
			assert.Equal(t, bridge.KindDecode, bridge.KindOf(err))
			assert.Len(t, m.Calls(), 1)
		})
	}
}

func TestInvoke_BodyReadErrorIsWrapped(t *testing.T) {
	m := bridge.NewMockDoer(bridge.MockResponse{Body: `{"a":`, BodyErr: io.ErrUnexpectedEOF})

	_, err := bridge.New(bridge.WithDoer(m)).Invoke(context.Background(), "hi", "sk-test")
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestInvoke_MalformedCredential(t *testing.T) {
	keys := []string{"sk-test\r\nX-Injected: 1", "sk\ntest", "sk\x00test", "sk\x7ftest"}

	for _, key := range keys {
		t.Run(fmt.Sprintf("%q", key), func(t *testing.T) {
			m := bridge.NewMockDoer()
			got, err := bridge.New(bridge.WithDoer(m)).Invoke(context.Background(), "hi", key)
			assert.Nil(t, got)
			require.Error(t, err)
			assert.ErrorIs(t, err, bridge.ErrConstruction)
			assert.NotContains(t, err.Error(), key)

			// Nothing is dispatched when construction fails.
			assert.Empty(t, m.Calls())
		})
	}
}

func TestInvoke_MalformedEndpoint(t *testing.T) {
	m := bridge.NewMockDoer()
	_, err := bridge.New(bridge.WithDoer(m), bridge.WithEndpoint("http://[::1")).Invoke(context.Background(), "hi", "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, bridge.ErrConstruction)
	assert.Empty(t, m.Calls())
}

func TestGo_DeliversOneResult(t *testing.T) {
	m := bridge.NewMockDoer(bridge.MockResponse{Body: `{"ok":true}`})
	b := bridge.New(bridge.WithDoer(m))

	ch := b.Go(context.Background(), "hi", "sk-test")

	res, ok := <-ch
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Equal(t, `{"ok":true}`, string(res.Response))

	_, ok = <-ch
	assert.False(t, ok, "channel should be closed after the result")
}

func TestGo_DeliversError(t *testing.T) {
	m := bridge.NewMockDoer(bridge.MockResponse{Body: "nope"})

	res := <-bridge.New(bridge.WithDoer(m)).Go(context.Background(), "hi", "sk-test")
	assert.Nil(t, res.Response)
	assert.ErrorIs(t, res.Err, bridge.ErrDecode)
}

func TestInvoke_ConcurrentCallsAreIndependent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req bridge.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 2 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"bad body"}}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"echo": req.Messages[1].Content,
			"auth": r.Header.Get("Authorization"),
		})
	}))
	defer srv.Close()

	b := bridge.New(bridge.WithEndpoint(srv.URL))

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			input := fmt.Sprintf("question %d", i)
			key := fmt.Sprintf("sk-%d", i)

			got, err := b.Invoke(context.Background(), input, key)
			if !assert.NoError(t, err) {
				return
			}
			var out map[string]string
			if assert.NoError(t, json.Unmarshal(got, &out)) {
				assert.Equal(t, bridge.BuildPrompt(input), out["echo"])
				assert.Equal(t, "Bearer "+key, out["auth"])
			}
		}()
	}
	wg.Wait()
}

func TestNew_Defaults(t *testing.T) {
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", bridge.New().Endpoint())
	assert.Equal(t, bridge.Endpoint, bridge.New(bridge.WithEndpoint("")).Endpoint())
	assert.Equal(t, "http://localhost:1234/v1", bridge.New(bridge.WithEndpoint("http://localhost:1234/v1")).Endpoint())
}

func TestNew_NilDoerFallsBack(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"ok":1}`, nil)

	got, err := bridge.New(bridge.WithDoer(nil), bridge.WithEndpoint(srv.URL)).Invoke(context.Background(), "hi", "k")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":1}`, string(got))
}
