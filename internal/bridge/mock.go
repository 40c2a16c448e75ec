package bridge

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockResponse defines a canned reply for MockDoer.
type MockResponse struct {
	// Status is the HTTP status code. Zero means 200.
	Status int

	// Body is returned as the response body.
	Body string

	// Err, if set, is returned from Do instead of a response.
	Err error

	// BodyErr, if set, is returned after Body has been read, simulating a
	// connection dropped mid-stream.
	BodyErr error
}

// RecordedRequest is a snapshot of one request seen by MockDoer.
type RecordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// MockDoer is a test double that returns pre-configured responses in
// sequence. After all responses are exhausted, it keeps returning the last one.
// It records every request for later assertion.
type MockDoer struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []RecordedRequest
	idx       int
}

// Compile-time check that MockDoer satisfies the Doer interface.
var _ Doer = (*MockDoer)(nil)

// NewMockDoer creates a mock that returns the given responses in order.
// If no responses are provided, Do returns 200 with an empty JSON object.
func NewMockDoer(responses ...MockResponse) *MockDoer {
	return &MockDoer{
		responses: responses,
	}
}

// Do records the request and returns the next canned response.
// It respects cancellation of the request context.
func (m *MockDoer) Do(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, RecordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   body,
	})

	r := MockResponse{Body: "{}"}
	if len(m.responses) > 0 {
		r = m.responses[m.idx]
		if m.idx < len(m.responses)-1 {
			m.idx++
		}
	}

	if r.Err != nil {
		return nil, r.Err
	}

	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}

	var rc io.ReadCloser = io.NopCloser(strings.NewReader(r.Body))
	if r.BodyErr != nil {
		rc = &failingBody{r: strings.NewReader(r.Body), err: r.BodyErr}
	}

	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       rc,
		Request:    req,
	}, nil
}

// Calls returns a copy of all requests received by this mock.
func (m *MockDoer) Calls() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]RecordedRequest, len(m.calls))
	for i, c := range m.calls {
		out[i] = c
		out[i].Header = c.Header.Clone()
		out[i].Body = bytes.Clone(c.Body)
	}
	return out
}

// Reset clears call history and resets the response index to zero.
func (m *MockDoer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = nil
	m.idx = 0
}

// failingBody yields its data and then err instead of io.EOF.
type failingBody struct {
	r   *strings.Reader
	err error
}

func (b *failingBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err == io.EOF {
		return n, b.err
	}
	return n, err
}

func (b *failingBody) Close() error { return nil }
