package sfs

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
}

// fakeServer answers each path with a fixed JSON document and records every request.
type fakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]any
}

func newFakeServer(t *testing.T, routes map[string]any) *fakeServer {
	t.Helper()
	fs := &fakeServer{routes: routes}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()}
		if r.Body != nil {
			data, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(data))
			if len(data) > 0 {
				_ = json.Unmarshal(data, &rec.Body)
			}
		}
		fs.mu.Lock()
		fs.requests = append(fs.requests, rec)
		resp, ok := fs.routes[r.URL.Path]
		fs.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		if h, ok := resp.(http.HandlerFunc); ok {
			h(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) all() []recordedRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]recordedRequest(nil), fs.requests...)
}

func (fs *fakeServer) last(t *testing.T) recordedRequest {
	t.Helper()
	reqs := fs.all()
	require.NotEmpty(t, reqs, "no request recorded")
	return reqs[len(reqs)-1]
}

func hostPort(t *testing.T, raw string) (string, int) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return u.Hostname(), port
}

func newTestClient(t *testing.T, fs *fakeServer, opts ...Option) *Client {
	t.Helper()
	host, port := hostPort(t, fs.URL)
	opts = append([]Option{WithHost(host), WithPort(port), WithoutWarmup()}, opts...)
	return New(opts...)
}
