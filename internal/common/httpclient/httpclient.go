// Package httpclient implements the authenticated request pipeline shared by
// the admin and user consoles. Every outgoing call is wrapped with credential
// injection and busy-indicator accounting; every reply is unwrapped from the
// two-level response envelope and classified into the client error taxonomy.
// A session-expiry signal from the server tears the session down through the
// configured expiry handler before the error is surfaced to the caller.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/snellmaster/snellctl/internal/common/loading"
	"github.com/snellmaster/snellctl/internal/common/logtrace"
	"github.com/snellmaster/snellctl/pkg/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RequestTimeout bounds every call. A request exceeding it surfaces as a
// TransportError; there is no caller-facing cancellation beyond this.
const RequestTimeout = 15 * time.Second

// Configurator provides the server location and the current credential.
// The credential is read per request, so a login or logout between two calls
// takes effect on the next call without rebuilding the client.
type Configurator interface {
	GetServerURL() string
	GetToken() string
}

// Notifier receives the single transient user-facing message emitted for
// every classified error. Successful requests emit nothing.
type Notifier interface {
	Error(msg string)
	Warn(msg string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Error(string) {}
func (NopNotifier) Warn(string)  {}

// ClientOptions configures the pipeline's collaborators.
type ClientOptions struct {
	// Loading receives Begin/End for every request not opting out of the
	// shared busy indicator. Nil means no indicator accounting.
	Loading *loading.Coordinator
	// Notifier receives user-facing error messages. Nil discards them.
	Notifier Notifier
	// OnSessionExpiry is invoked at most once per failing request when the
	// server signals that the held credential is no longer valid. It is
	// expected to be idempotent; a burst of concurrently expiring requests
	// will each invoke it independently.
	OnSessionExpiry func()
	// DisableCertValidation skips TLS certificate verification.
	DisableCertValidation bool
}

// Client is the request pipeline. Safe for concurrent use; multiple requests
// may be in flight at once and resolve in any order.
type Client struct {
	config     Configurator
	loading    *loading.Coordinator
	notifier   Notifier
	onExpiry   func()
	httpClient *http.Client
}

// NewClient creates a pipeline client over the given configuration.
func NewClient(config Configurator, opts ClientOptions) *Client {
	if opts.Loading == nil {
		opts.Loading = loading.NewCoordinator(nil)
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}

	httpClient := &http.Client{Timeout: RequestTimeout}
	if opts.DisableCertValidation {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}

	return &Client{
		config:     config,
		loading:    opts.Loading,
		notifier:   opts.Notifier,
		onExpiry:   opts.OnSessionExpiry,
		httpClient: httpClient,
	}
}

// RequestOptions describes one call. It is immutable input: the pipeline
// never mutates it and keeps no reference past the call.
type RequestOptions struct {
	Method      string            // HTTP method (GET, POST, PUT, DELETE)
	Path        string            // API endpoint path
	QueryParams map[string]string // optional query parameters
	Body        []byte            // optional request body, JSON encoded
	// Binary returns the raw response bytes and skips envelope unwrapping.
	// Used for file downloads.
	Binary bool
	// SuppressLoading keeps this request invisible to the shared busy
	// indicator.
	SuppressLoading bool
}

// DoRequest runs one request through the pipeline and returns the envelope
// payload, or the raw body for binary requests. Errors are one of
// *TransportError, *HTTPStatusError, *BusinessError, or an error matching
// ErrSessionExpired; see the package error taxonomy.
func (c *Client) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error) {
	ctx = logtrace.WithRequestID(ctx)
	slog := log.With().
		Str("request_id", logtrace.RequestIDFromContext(ctx)).
		Str("method", opts.Method).
		Str("path", opts.Path).
		Logger()

	u, err := c.buildURL(opts)
	if err != nil {
		c.notifier.Error("Request configuration error")
		return nil, &TransportError{Err: err}
	}

	// Pair Begin with exactly one End on every exit path below.
	if !opts.SuppressLoading {
		c.loading.Begin()
		defer c.loading.End()
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, u, bytes.NewBuffer(opts.Body))
	if err != nil {
		c.notifier.Error("Request configuration error")
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.config.GetToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	slog.Debug().Msg("dispatching request")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error().Err(err).Msg("transport failure")
		c.notifier.Error("Network connection failed")
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error().Err(err).Msg("failed to read response body")
		c.notifier.Error("Network connection failed")
		return nil, &TransportError{Err: err}
	}

	if opts.Binary {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}
		return nil, c.failStatus(slog, resp.StatusCode)
	}

	var env api.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		// No usable envelope. Classify by transport status when it
		// indicates failure, otherwise the reply itself is broken.
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, c.failStatus(slog, resp.StatusCode)
		}
		slog.Error().Err(err).Msg("malformed response body")
		c.notifier.Error("Network connection failed")
		return nil, &TransportError{Err: fmt.Errorf("malformed reply: %w", err)}
	}

	switch {
	case env.Code == api.CodeOK:
		// A failing transport status with a success envelope carries no
		// usable payload; classify by status.
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, c.failStatus(slog, resp.StatusCode)
		}
		return env.Data, nil

	case env.Code == api.CodeSessionExpired:
		slog.Warn().Str("message", env.Message).Msg("session expired by server")
		c.notifier.Warn("Login expired, please login again")
		c.expireSession(slog)
		return nil, fmt.Errorf("%w: %s", ErrSessionExpired, messageOr(env.Message, "login expired"))

	case env.Code == api.CodeForbidden:
		slog.Warn().Str("message", env.Message).Msg("permission denied by server")
		berr := &BusinessError{Code: env.Code, Message: messageOr(env.Message, "Permission denied")}
		c.notifier.Error("Permission denied")
		return nil, berr

	default:
		slog.Warn().Int("code", env.Code).Str("message", env.Message).Msg("business failure")
		berr := &BusinessError{Code: env.Code, Message: env.Message}
		c.notifier.Error(berr.Error())
		return nil, berr
	}
}

// failStatus classifies a non-2xx status lacking a usable envelope, emits the
// kind's notification, and performs expiry handling for HTTP 401.
func (c *Client) failStatus(slog zerolog.Logger, status int) error {
	kind := KindForStatus(status)
	slog.Warn().Int("status", status).Msg("http status failure")
	c.notifier.Error(kind.UserMessage())

	if kind == StatusUnauthorized {
		c.expireSession(slog)
		return fmt.Errorf("%w: HTTP %d", ErrSessionExpired, status)
	}
	return &HTTPStatusError{StatusCode: status, Kind: kind}
}

// expireSession invokes the configured expiry handler. Called at most once
// per failing request; the handler is idempotent so concurrent expiring
// requests cause no duplicate side effects beyond redundant storage removals.
func (c *Client) expireSession(slog zerolog.Logger) {
	if c.onExpiry == nil {
		return
	}
	slog.Debug().Msg("tearing down session")
	c.onExpiry()
}

func (c *Client) buildURL(opts RequestOptions) (string, error) {
	u, err := url.Parse(c.config.GetServerURL())
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid server URL: %q", c.config.GetServerURL())
	}
	u.Path = path.Join(u.Path, opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
