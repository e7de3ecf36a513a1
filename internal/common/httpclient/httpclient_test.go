package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snellmaster/snellctl/internal/common/loading"
)

type testConfig struct {
	serverURL string
	token     string
}

func (c *testConfig) GetServerURL() string { return c.serverURL }
func (c *testConfig) GetToken() string     { return c.token }

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Error(msg string) { n.record(msg) }
func (n *recordingNotifier) Warn(msg string)  { n.record(msg) }

func (n *recordingNotifier) record(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type testIndicator struct {
	shows atomic.Int32
	hides atomic.Int32
}

func (i *testIndicator) Show() { i.shows.Add(1) }
func (i *testIndicator) Hide() { i.hides.Add(1) }

type pipelineFixture struct {
	client   *Client
	config   *testConfig
	notifier *recordingNotifier
	loading  *loading.Coordinator
	expiries atomic.Int32
}

func newFixture(serverURL, token string) *pipelineFixture {
	f := &pipelineFixture{
		config:   &testConfig{serverURL: serverURL, token: token},
		notifier: &recordingNotifier{},
		loading:  loading.NewCoordinator(nil),
	}
	f.client = NewClient(f.config, ClientOptions{
		Loading:  f.loading,
		Notifier: f.notifier,
		OnSessionExpiry: func() {
			f.expiries.Add(1)
		},
	})
	return f
}

func TestSuccessEnvelopeResolvesData(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"code":0,"message":"","data":{"id":7,"name":"tokyo-1"}}`))
	}))
	defer srv.Close()

	f := newFixture(srv.URL, "T1")
	data, err := f.client.DoRequest(context.Background(), RequestOptions{
		Method: http.MethodGet,
		Path:   "/admin/nodes/7",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"name":"tokyo-1"}`, string(data))
	assert.Equal(t, "Bearer T1", gotAuth)
	assert.Empty(t, f.notifier.all(), "success must not notify")
	assert.Equal(t, int32(0), f.expiries.Load())
	assert.Equal(t, 0, f.loading.Count())
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"code":0,"message":"","data":null}`))
	}))
	defer srv.Close()

	f := newFixture(srv.URL, "")
	_, err := f.client.DoRequest(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/auth/admin/login"})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestEnvelopeExpiryTearsDownSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":401,"message":"expired","data":null}`))
	}))
	defer srv.Close()

	f := newFixture(srv.URL, "T1")
	_, err := f.client.DoRequest(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/admin/users"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Contains(t, err.Error(), "expired")
	assert.Equal(t, int32(1), f.expiries.Load(), "expiry handling must run exactly once")
	assert.Equal(t, []string{"Login expired, please login again"}, f.notifier.all())
	assert.Equal(t, 0, f.loading.Count())
}

func TestEnvelopeForbiddenIsBusinessError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":403,"message":"not allowed","data":null}`))
	}))
	defer srv.Close()

	f := newFixture(srv.URL, "T1")
	_, err := f.client.DoRequest(context.Background(), RequestOptions{Method: http.MethodDelete, Path: "/admin/nodes/1"})
	require.Error(t, err)

	var berr *BusinessError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, 403, berr.Code)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(0), f.expiries.Load(), "envelope 403 must not touch the session")
	assert.Equal(t, []string{"Permission denied"}, f.notifier.all())
}

func TestBusinessFailureSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":1002,"message":"node name already exists","data":null}`))
	}))
	defer srv.Close()

	f := newFixture(srv.URL, "T1")
	_, err := f.client.DoRequest(context.Background(), RequestOptions{Method: http.MethodPost, Path: "/admin/nodes"})
	require.Error(t, err)

	var berr *BusinessError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, 1002, berr.Code)
	assert.Equal(t, "node name already exists", berr.Message)
	assert.Equal(t, []string{"node name already exists"}, f.notifier.all())
	assert.Equal(t, int32(0), f.expiries.Load())
}

func TestHTTPUnauthorizedWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := newFixture(srv.URL, "stale")
	_, err := f.client.DoRequest(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/admin/profile"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(1), f.expiries.Load(), "HTTP 401 is a parallel expiry trigger")
	assert.Equal(t, []string{"Unauthorized, please login"}, f.notifier.all())
}

func TestHTTPStatusClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		kind    StatusKind
		message string
	}{
		{"forbidden", http.StatusForbidden, StatusForbidden, "Permission denied"},
		{"not found", http.StatusNotFound, StatusNotFound, "Resource not found"},
		{"server error", http.StatusInternalServerError, StatusServerError, "Server error"},
		{"bad gateway", http.StatusBadGateway, StatusServerError, "Server error"},
		{"teapot", http.StatusTeapot, StatusOther, "Network error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, tt.name, tt.status)
			}))
			defer srv.Close()

			f := newFixture(srv.URL, "T1")
			_, err := f.client.DoRequest(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/admin/nodes"})
			require.Error(t, err)

			var herr *HTTPStatusError
			require.ErrorAs(t, err, &herr)
			assert.Equal(t, tt.status, herr.StatusCode)
			assert.Equal(t, tt.kind, herr.Kind)
			assert.Equal(t, int32(0), f.expiries.Load(), "only 401 may touch the session")
			assert.Equal(t, []string{tt.message}, f.notifier.all())
			assert.Equal(t, 0, f.loading.Count())
		})
	}
}

func TestBinaryResponseBypassesEnvelope(t *testing.T) {
	script := []byte("#!/bin/sh\necho install\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(script)
	}))
	defer srv.Close()

	f := newFixture(srv.URL, "T1")
	data, err := f.client.DoRequest(context.Background(), RequestOptions{
		Method: http.MethodGet,
		Path:   "/admin/nodes/7/install-script",
		Binary: true,
	})
	require.NoError(t, err)
	assert.Equal(t, script, data)
	assert.Empty(t, f.notifier.all())
}

func TestBinaryResponseFailureClassifiedByStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	f := newFixture(srv.URL, "T1")
	_, err := f.client.DoRequest(context.Background(), RequestOptions{
		Method: http.MethodGet,
		Path:   "/admin/nodes/99/install-script",
		Binary: true,
	})
	var herr *HTTPStatusError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, StatusNotFound, herr.Kind)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	f := newFixture(srv.URL, "T1")
	_, err := f.client.DoRequest(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/admin/nodes"})
	require.Error(t, err)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, int32(0), f.expiries.Load(), "transport failure must not touch the session")
	assert.Equal(t, []string{"Network connection failed"}, f.notifier.all())
	assert.Equal(t, 0, f.loading.Count(), "loading must clear on transport failure")
}

func TestMalformedReplyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	f := newFixture(srv.URL, "T1")
	_, err := f.client.DoRequest(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/admin/nodes"})
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Len(t, f.notifier.all(), 1)
}

func TestSuppressLoadingSkipsIndicator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"message":"","data":null}`))
	}))
	defer srv.Close()

	ind := &testIndicator{}
	coord := loading.NewCoordinator(ind)
	cfg := &testConfig{serverURL: srv.URL}
	client := NewClient(cfg, ClientOptions{Loading: coord})

	_, err := client.DoRequest(context.Background(), RequestOptions{
		Method:          http.MethodGet,
		Path:            "/admin/traffic/summary",
		SuppressLoading: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(0), ind.shows.Load())
	assert.Equal(t, int32(0), ind.hides.Load())
}

func TestConcurrentRequestsBalanceIndicator(t *testing.T) {
	release := make(chan struct{})
	coord := loading.NewCoordinator(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"code":0,"message":"","data":null}`))
	}))
	defer srv.Close()

	cfg := &testConfig{serverURL: srv.URL, token: "T1"}
	client := NewClient(cfg, ClientOptions{Loading: coord})

	const inflight = 8
	var wg sync.WaitGroup
	for i := 0; i < inflight; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client.DoRequest(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/admin/nodes"})
		}()
	}

	// Wait for all requests to be registered in flight.
	assert.Eventually(t, func() bool { return coord.Count() == inflight }, RequestTimeout, 10*time.Millisecond)
	assert.True(t, coord.Visible())

	close(release)
	wg.Wait()
	assert.Equal(t, 0, coord.Count())
	assert.False(t, coord.Visible())
}

func TestInvalidServerURL(t *testing.T) {
	f := newFixture("not a url", "")
	_, err := f.client.DoRequest(context.Background(), RequestOptions{Method: http.MethodGet, Path: "/admin/nodes"})
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 0, f.loading.Count())
}

func TestErrSessionExpiredIsTerminal(t *testing.T) {
	err := errors.New("wrapped")
	assert.False(t, errors.Is(err, ErrSessionExpired))
	assert.True(t, errors.Is(ErrSessionExpired, ErrSessionExpired))
}
