// Package console assembles the client runtime for one front-end: session
// store, loading coordinator, request pipeline, and navigation guard, wired
// together and parameterized by a console profile. The admin and user
// consoles are two instances of the same machinery pointed at different
// endpoint prefixes and principal types.
package console

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/snellmaster/snellctl/internal/common/httpclient"
	"github.com/snellmaster/snellctl/internal/common/loading"
	"github.com/snellmaster/snellctl/internal/common/navigate"
	"github.com/snellmaster/snellctl/internal/common/session"
	"github.com/snellmaster/snellctl/pkg/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Notifier receives transient user-facing messages from the runtime: error
// notifications from the pipeline and warnings from the navigation guard.
type Notifier interface {
	Error(msg string)
	Warn(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Error(string) {}
func (nopNotifier) Warn(string)  {}

// Profile parameterizes a console instance: which endpoints it talks to,
// which routes it navigates, and which principal type it authenticates.
type Profile struct {
	Name        string // console identifier, also the state subdirectory
	LoginPath   string // credential exchange endpoint
	ProfilePath string // principal fetch endpoint
	LoginRoute  string
	HomeRoute   string
	Routes      []navigate.Route

	// PrincipalFromLogin extracts the principal bundled with a login
	// response, or nil when the server defers it to the profile endpoint.
	PrincipalFromLogin func(resp *api.LoginResponse) any
	// DecodePrincipal parses the profile endpoint payload.
	DecodePrincipal func(data []byte) (any, error)
}

// AdminProfile is the administrator console configuration.
func AdminProfile() Profile {
	return Profile{
		Name:        "admin",
		LoginPath:   "/auth/admin/login",
		ProfilePath: "/admin/profile",
		LoginRoute:  "/login",
		HomeRoute:   "/dashboard",
		Routes: []navigate.Route{
			{Path: "/login", RequiresAuth: false},
			{Path: "/dashboard", RequiresAuth: true},
			{Path: "/users", RequiresAuth: true},
			{Path: "/nodes", RequiresAuth: true},
			{Path: "/instances", RequiresAuth: true},
			{Path: "/traffic", RequiresAuth: true},
			{Path: "/subscriptions", RequiresAuth: true},
			{Path: "/templates", RequiresAuth: true},
			{Path: "/logs", RequiresAuth: true},
			{Path: "/system/config", RequiresAuth: true},
		},
		PrincipalFromLogin: func(resp *api.LoginResponse) any {
			if resp.Admin == nil {
				return nil
			}
			return resp.Admin
		},
		DecodePrincipal: func(data []byte) (any, error) {
			var info api.AdminInfo
			if err := json.Unmarshal(data, &info); err != nil {
				return nil, fmt.Errorf("failed to parse admin profile: %w", err)
			}
			return &info, nil
		},
	}
}

// UserProfile is the end-user self-service console configuration.
func UserProfile() Profile {
	return Profile{
		Name:        "user",
		LoginPath:   "/auth/user/login",
		ProfilePath: "/user/profile",
		LoginRoute:  "/login",
		HomeRoute:   "/",
		Routes: []navigate.Route{
			{Path: "/login", RequiresAuth: false},
			{Path: "/", RequiresAuth: true},
			{Path: "/profile", RequiresAuth: true},
			{Path: "/subscription", RequiresAuth: true},
		},
		PrincipalFromLogin: func(resp *api.LoginResponse) any {
			if resp.User == nil {
				return nil
			}
			return resp.User
		},
		DecodePrincipal: func(data []byte) (any, error) {
			var info api.UserInfo
			if err := json.Unmarshal(data, &info); err != nil {
				return nil, fmt.Errorf("failed to parse user profile: %w", err)
			}
			return &info, nil
		},
	}
}

// Options configures a console instance.
type Options struct {
	// ServerURL is the backend base URL.
	ServerURL string
	// StateDir is the root directory for durable client state. The console
	// keeps its token file under <StateDir>/<profile name>/.
	StateDir string
	// Indicator drives the shared busy display. Nil disables it.
	Indicator loading.Indicator
	// Notifier receives transient user messages. Nil discards them.
	Notifier Notifier
	// DisableCertValidation skips TLS certificate verification.
	DisableCertValidation bool
}

// Console is one assembled front-end runtime.
type Console struct {
	profile   Profile
	serverURL string
	session   *session.Store
	loading   *loading.Coordinator
	guard     *navigate.Guard
	client    httpclient.Requester
	notifier  Notifier
	validate  *validator.Validate
}

// New assembles a console from its profile, hydrating any persisted session.
func New(profile Profile, opts Options) (*Console, error) {
	if opts.ServerURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}

	store, err := session.NewStore(filepath.Join(opts.StateDir, profile.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	c := &Console{
		profile:   profile,
		serverURL: opts.ServerURL,
		session:   store,
		loading:   loading.NewCoordinator(opts.Indicator),
		notifier:  opts.Notifier,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	c.guard = navigate.NewGuard(store, opts.Notifier, profile.LoginRoute, profile.HomeRoute, profile.Routes)
	c.client = httpclient.NewClient(c, httpclient.ClientOptions{
		Loading:               c.loading,
		Notifier:              opts.Notifier,
		OnSessionExpiry:       c.handleExpiry,
		DisableCertValidation: opts.DisableCertValidation,
	})
	return c, nil
}

// GetServerURL implements httpclient.Configurator.
func (c *Console) GetServerURL() string {
	return c.serverURL
}

// GetToken implements httpclient.Configurator. Read per request, so login
// and logout take effect on the next call.
func (c *Console) GetToken() string {
	return c.session.Token()
}

// Session exposes the session store (authentication status, principal).
func (c *Console) Session() *session.Store {
	return c.session
}

// Guard exposes the navigation guard.
func (c *Console) Guard() *navigate.Guard {
	return c.guard
}

// Loading exposes the busy indicator coordinator.
func (c *Console) Loading() *loading.Coordinator {
	return c.loading
}

// Name returns the console identifier ("admin" or "user").
func (c *Console) Name() string {
	return c.profile.Name
}

// handleExpiry is the pipeline's session-expiry hook: tear down the session
// and force navigation to the login route with no preserved destination.
// Idempotent, so a burst of concurrently expiring requests is harmless.
func (c *Console) handleExpiry() {
	if err := c.session.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear session on expiry")
	}
	c.guard.ForceLogin()
}

// Login exchanges credentials for a token, stores it, and persists it. The
// principal is stored too when the server bundles it with the response.
func (c *Console) Login(ctx context.Context, username, password string) (*api.LoginResponse, error) {
	req := api.LoginRequest{Username: username, Password: password}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid login request: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	data, err := c.client.DoRequest(ctx, httpclient.RequestOptions{
		Method: http.MethodPost,
		Path:   c.profile.LoginPath,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	var resp api.LoginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse login response: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}

	if err := c.session.SetCredential(resp.Token, c.profile.PrincipalFromLogin(&resp)); err != nil {
		return nil, fmt.Errorf("failed to persist credential: %w", err)
	}
	return &resp, nil
}

// Logout clears the session and removes the persisted credential.
// Idempotent: logging out twice leaves the same state as once.
func (c *Console) Logout() error {
	return c.session.Clear()
}

// FetchPrincipal retrieves the authenticated identity from the profile
// endpoint and caches it. A failure while a credential is held means the
// credential is presumptively invalid, so the session is cleared before the
// error is re-raised.
func (c *Console) FetchPrincipal(ctx context.Context) (any, error) {
	data, err := c.client.DoRequest(ctx, httpclient.RequestOptions{
		Method: http.MethodGet,
		Path:   c.profile.ProfilePath,
	})
	if err != nil {
		if clearErr := c.Logout(); clearErr != nil {
			log.Error().Err(clearErr).Msg("failed to clear session after profile failure")
		}
		return nil, err
	}

	principal, err := c.profile.DecodePrincipal(data)
	if err != nil {
		if clearErr := c.Logout(); clearErr != nil {
			log.Error().Err(clearErr).Msg("failed to clear session after profile failure")
		}
		return nil, err
	}
	c.session.SetPrincipal(principal)
	return principal, nil
}

// doJSON runs a request and decodes the envelope payload into T.
func doJSON[T any](c *Console, ctx context.Context, method, path string, query map[string]string, in any) (T, error) {
	var out T

	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return out, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = b
	}

	data, err := c.client.DoRequest(ctx, httpclient.RequestOptions{
		Method:      method,
		Path:        path,
		QueryParams: query,
		Body:        body,
	})
	if err != nil {
		return out, err
	}
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to parse response payload: %w", err)
	}
	return out, nil
}

// doVoid runs a request whose payload is irrelevant to the caller.
func doVoid(c *Console, ctx context.Context, method, path string, query map[string]string, in any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = b
	}
	_, err := c.client.DoRequest(ctx, httpclient.RequestOptions{
		Method:      method,
		Path:        path,
		QueryParams: query,
		Body:        body,
	})
	return err
}
