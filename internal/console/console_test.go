package console

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snellmaster/snellctl/internal/common/httpclient"
	"github.com/snellmaster/snellctl/internal/common/session"
	"github.com/snellmaster/snellctl/pkg/api"
)

type recordingNotifier struct {
	mu       sync.Mutex
	errors   []string
	warnings []string
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recordingNotifier) Warn(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, msg)
}

// fakeBackend simulates the Snell Master REST backend for one admin console.
type fakeBackend struct {
	mu        sync.Mutex
	token     string
	lastAuth  string
	expireAll bool
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.Username != "admin" || req.Password != "x" {
			w.Write([]byte(`{"code":1001,"message":"invalid credentials","data":null}`))
			return
		}
		w.Write([]byte(`{"code":0,"message":"","data":{"token":"T1","admin":{"id":1,"username":"admin","email":"admin@example.com","role":2}}}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.lastAuth = r.Header.Get("Authorization")
		expired := b.expireAll
		b.mu.Unlock()
		if expired {
			w.Write([]byte(`{"code":401,"message":"expired","data":null}`))
			return
		}
		switch r.URL.Path {
		case "/admin/profile":
			w.Write([]byte(`{"code":0,"message":"","data":{"id":1,"username":"admin","email":"admin@example.com","role":2}}`))
		case "/admin/nodes":
			w.Write([]byte(`{"code":0,"message":"","data":[{"id":7,"name":"tokyo-1","status":"online"}]}`))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	})
	return mux
}

func (b *fakeBackend) authHeader() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth
}

func newTestConsole(t *testing.T, serverURL string) (*Console, *recordingNotifier, string) {
	t.Helper()
	stateDir := t.TempDir()
	notifier := &recordingNotifier{}
	c, err := New(AdminProfile(), Options{
		ServerURL: serverURL,
		StateDir:  stateDir,
		Notifier:  notifier,
	})
	require.NoError(t, err)
	return c, notifier, stateDir
}

func TestLoginStoresAndCarriesCredential(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	c, _, stateDir := newTestConsole(t, srv.URL)
	assert.False(t, c.Session().Authenticated())

	resp, err := c.Login(context.Background(), "admin", "x")
	require.NoError(t, err)
	assert.Equal(t, "T1", resp.Token)
	require.NotNil(t, resp.Admin)
	assert.True(t, c.Session().Authenticated())

	// The credential must be durable.
	data, err := os.ReadFile(filepath.Join(stateDir, "admin", session.TokenFileName))
	require.NoError(t, err)
	assert.Equal(t, "T1", string(data))

	// Subsequent calls carry the bearer credential.
	nodes, err := c.ListNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "tokyo-1", nodes[0].Name)
	assert.Equal(t, "Bearer T1", backend.authHeader())
}

func TestLoginBusinessFailure(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	c, notifier, _ := newTestConsole(t, srv.URL)
	_, err := c.Login(context.Background(), "admin", "wrong")
	require.Error(t, err)

	var berr *httpclient.BusinessError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "invalid credentials", berr.Message)
	assert.False(t, c.Session().Authenticated())
	assert.Equal(t, []string{"invalid credentials"}, notifier.errors)
}

func TestLoginInputValidated(t *testing.T) {
	c, _, _ := newTestConsole(t, "http://localhost:1")
	_, err := c.Login(context.Background(), "admin", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid login request")
}

func TestSessionExpiryTearsDownAndRedirects(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	c, notifier, stateDir := newTestConsole(t, srv.URL)
	_, err := c.Login(context.Background(), "admin", "x")
	require.NoError(t, err)

	c.Guard().Navigate("/nodes")
	assert.Equal(t, "/nodes", c.Guard().Current())

	backend.mu.Lock()
	backend.expireAll = true
	backend.mu.Unlock()

	_, err = c.ListNodes(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, httpclient.ErrSessionExpired)

	// Session torn down, durable credential removed.
	assert.False(t, c.Session().Authenticated())
	_, statErr := os.Stat(filepath.Join(stateDir, "admin", session.TokenFileName))
	assert.True(t, os.IsNotExist(statErr))

	// Involuntary redirect to login, with no preserved destination.
	assert.Equal(t, "/login", c.Guard().Current())
	assert.Equal(t, []string{"Login expired, please login again"}, notifier.warnings)
}

func TestFetchPrincipalSuccess(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	c, _, _ := newTestConsole(t, srv.URL)
	_, err := c.Login(context.Background(), "admin", "x")
	require.NoError(t, err)

	principal, err := c.FetchPrincipal(context.Background())
	require.NoError(t, err)
	info, ok := principal.(*api.AdminInfo)
	require.True(t, ok)
	assert.Equal(t, "admin", info.Username)
	assert.Equal(t, principal, c.Session().Principal())
}

func TestFetchPrincipalFailureLogsOut(t *testing.T) {
	// Backend rejects the profile fetch outright: a held credential that
	// cannot fetch its principal is presumptively invalid.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":1500,"message":"profile unavailable","data":null}`))
	}))
	defer srv.Close()

	c, _, _ := newTestConsole(t, srv.URL)
	require.NoError(t, c.Session().SetCredential("stale", nil))

	_, err := c.FetchPrincipal(context.Background())
	require.Error(t, err)
	assert.False(t, c.Session().Authenticated(), "profile failure must clear the session")
}

func TestLogoutIsIdempotent(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	c, _, _ := newTestConsole(t, srv.URL)
	_, err := c.Login(context.Background(), "admin", "x")
	require.NoError(t, err)

	require.NoError(t, c.Logout())
	assert.False(t, c.Session().Authenticated())
	require.NoError(t, c.Logout())
	assert.False(t, c.Session().Authenticated())
}

func TestSessionHydratesAcrossInstances(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	stateDir := t.TempDir()
	c1, err := New(AdminProfile(), Options{ServerURL: srv.URL, StateDir: stateDir})
	require.NoError(t, err)
	_, err = c1.Login(context.Background(), "admin", "x")
	require.NoError(t, err)

	// A new console over the same state directory starts authenticated.
	c2, err := New(AdminProfile(), Options{ServerURL: srv.URL, StateDir: stateDir})
	require.NoError(t, err)
	assert.True(t, c2.Session().Authenticated())
	assert.Nil(t, c2.Session().Principal(), "principal is fetched lazily")

	_, err = c2.ListNodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer T1", backend.authHeader())
}

func TestGuardBouncesAuthenticatedFromLogin(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	c, _, _ := newTestConsole(t, srv.URL)
	_, err := c.Login(context.Background(), "admin", "x")
	require.NoError(t, err)

	assert.Equal(t, "/dashboard", c.Guard().Navigate("/login"))
}

func TestAdminAndUserConsolesAreIsolated(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	stateDir := t.TempDir()
	admin, err := New(AdminProfile(), Options{ServerURL: srv.URL, StateDir: stateDir})
	require.NoError(t, err)
	user, err := New(UserProfile(), Options{ServerURL: srv.URL, StateDir: stateDir})
	require.NoError(t, err)

	_, err = admin.Login(context.Background(), "admin", "x")
	require.NoError(t, err)

	assert.True(t, admin.Session().Authenticated())
	assert.False(t, user.Session().Authenticated(), "consoles must not share credentials")
}
