package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty working directory with an empty global
// config dir and no credential in the environment.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")

	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	resetAskFlags()
	resetBatchFlags()
	resetConfigFlags()
	return dir
}

// execute runs rootCmd with args and stdin, returning stdout and the error.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	stdout := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), err
}

// requireExitCode asserts err is an exitCodeError with the given code.
func requireExitCode(t *testing.T, err error, code int) *exitCodeError {
	t.Helper()
	var ece *exitCodeError
	require.True(t, errors.As(err, &ece), "expected exitCodeError, got %v", err)
	require.Equal(t, code, ece.code, "exit code (message %q)", ece.msg)
	return ece
}

// echoServer answers each request with a completion whose content is the
// user message, and records the Authorization header of the last request.
type echoServer struct {
	*httptest.Server

	mu       sync.Mutex
	lastAuth string
	calls    int
}

func (es *echoServer) auth() string {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.lastAuth
}

func (es *echoServer) callCount() int {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.calls
}

func newEchoServer(t *testing.T) *echoServer {
	t.Helper()
	es := &echoServer{}
	es.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		es.mu.Lock()
		es.lastAuth = r.Header.Get("Authorization")
		es.calls++
		es.mu.Unlock()

		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 2 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"bad request body"}}`)
			return
		}

		content := req.Messages[1].Content
		if strings.HasSuffix(content, "User: break") {
			_, _ = io.WriteString(w, "<html>upstream exploded</html>")
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(es.Close)
	return es
}

// fixedServer always answers with status and body.
func fixedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
