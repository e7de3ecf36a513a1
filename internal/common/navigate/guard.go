// Package navigate gates console route transitions on authentication state.
// The guard is a small deterministic state machine: it either allows a
// transition, redirects an unauthenticated visitor to the login route while
// preserving the intended destination, or bounces an authenticated visitor
// away from the login route.
package navigate

import (
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Route is one entry of a console's route table.
type Route struct {
	Path         string
	RequiresAuth bool
}

// AuthReader is the guard's only external input.
type AuthReader interface {
	Authenticated() bool
}

// Notifier receives the user-visible warning emitted when a transition is
// cancelled for lack of authentication.
type Notifier interface {
	Warn(msg string)
}

// RedirectParam is the query parameter carrying the originally intended
// destination through a login redirect.
const RedirectParam = "redirect"

// Action is the guard's verdict on a transition request.
type Action int

const (
	// ActionAllow lets the transition proceed to its target.
	ActionAllow Action = iota
	// ActionRedirectLogin cancels the transition and sends the visitor to
	// the login route, recording the intended destination.
	ActionRedirectLogin
	// ActionRedirectHome bounces an already authenticated visitor from the
	// login route to the default landing route.
	ActionRedirectHome
)

// Decision is the resolved outcome of one transition request. Location is the
// route the visitor lands on, including the redirect query when applicable.
type Decision struct {
	Action   Action
	Location string
}

// Guard evaluates route transitions for one console instance.
type Guard struct {
	mu         sync.Mutex
	auth       AuthReader
	notifier   Notifier
	loginRoute string
	homeRoute  string
	routes     map[string]Route
	current    string
}

// NewGuard builds a guard over the given route table. Routes not present in
// the table are treated as public, matching the catch-all not-found route of
// the consoles.
func NewGuard(auth AuthReader, notifier Notifier, loginRoute, homeRoute string, routes []Route) *Guard {
	table := make(map[string]Route, len(routes))
	for _, r := range routes {
		table[r.Path] = r
	}
	return &Guard{
		auth:       auth,
		notifier:   notifier,
		loginRoute: loginRoute,
		homeRoute:  homeRoute,
		routes:     table,
		current:    loginRoute,
	}
}

// Resolve evaluates a transition request without applying it. Pure decision
// logic; no state change and no notification.
func (g *Guard) Resolve(target string) Decision {
	targetPath := target
	if i := strings.IndexByte(targetPath, '?'); i >= 0 {
		targetPath = targetPath[:i]
	}

	requiresAuth := false
	if route, ok := g.routes[targetPath]; ok {
		requiresAuth = route.RequiresAuth
	}

	authenticated := g.auth.Authenticated()

	switch {
	case requiresAuth && !authenticated:
		q := url.Values{RedirectParam: []string{target}}
		return Decision{
			Action:   ActionRedirectLogin,
			Location: g.loginRoute + "?" + q.Encode(),
		}
	case targetPath == g.loginRoute && authenticated:
		return Decision{Action: ActionRedirectHome, Location: g.homeRoute}
	default:
		return Decision{Action: ActionAllow, Location: target}
	}
}

// Navigate applies the decision for a transition request: warns on a
// cancelled transition, updates the current route, and returns the route the
// visitor landed on.
func (g *Guard) Navigate(target string) string {
	decision := g.Resolve(target)
	if decision.Action == ActionRedirectLogin && g.notifier != nil {
		g.notifier.Warn("Please login first")
	}
	log.Debug().
		Str("target", target).
		Str("location", decision.Location).
		Int("action", int(decision.Action)).
		Msg("route transition")

	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = decision.Location
	return g.current
}

// ForceLogin transitions to the login route after an involuntary
// deauthentication. Unlike a guarded redirect it carries no intended
// destination: the session was torn down, not the navigation attempt denied.
func (g *Guard) ForceLogin() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = g.loginRoute
	return g.current
}

// Current returns the route the visitor currently occupies.
func (g *Guard) Current() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}
