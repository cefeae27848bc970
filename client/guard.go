package client

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Sumit07M/bg-verification-project/auth"
	"github.com/Sumit07M/bg-verification-project/models"
)

// UI paths
const (
	RootPath              = "/"
	LoginPath             = "/login"
	EmployeeDashboardPath = "/employee/dashboard"
	ManagerDashboardPath  = "/manager/dashboard"
)

// ErrUnknownRoute is returned by Navigate for a path missing from the route table
var ErrUnknownRoute = errors.New("unknown route")

// Action is the guard's advice for a navigation
type Action int

const (
	// ActionPermit lets the navigation proceed
	ActionPermit Action = iota
	// ActionRedirectLogin sends the user to the login page
	ActionRedirectLogin
	// ActionRedirectDashboard sends the user to their role's own dashboard
	ActionRedirectDashboard
)

func (a Action) String() string {
	switch a {
	case ActionPermit:
		return "permit"
	case ActionRedirectLogin:
		return "redirect_login"
	case ActionRedirectDashboard:
		return "redirect_dashboard"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Decision is the outcome of a guard check.
// From carries the requested path on a login redirect so the UI can return there.
type Decision struct {
	Action      Action
	Destination string
	From        string
}

// Route is one entry of the UI route table.
// A nil Allowed marks a public route; a non-empty RedirectTo is an unconditional redirect.
type Route struct {
	Path       string
	Allowed    *auth.RoleSet
	RedirectTo string
}

// DefaultRoutes returns the onboarding UI's route table
func DefaultRoutes() []Route {
	employee := auth.Allow(models.RoleEmployee)
	manager := auth.Allow(models.RoleManager)

	return []Route{
		{Path: RootPath, RedirectTo: LoginPath},
		{Path: LoginPath},
		{Path: EmployeeDashboardPath, Allowed: &employee},
		{Path: ManagerDashboardPath, Allowed: &manager},
	}
}

// DefaultDestination maps each role to its landing page
func DefaultDestination(role models.Role) string {
	switch role {
	case models.RoleEmployee:
		return EmployeeDashboardPath
	case models.RoleManager:
		return ManagerDashboardPath
	default:
		return LoginPath
	}
}

// Check decides a navigation to from, guarded by allowed, given the cached session.
//
// The result is advice for the UI only. A session can be forged or stale, and
// the API enforces roles again from the verified token regardless of what
// Check returns.
func Check(session *Session, allowed auth.RoleSet, from string) Decision {
	if session == nil || session.Token == "" || !session.User.Role.Valid() {
		return Decision{Action: ActionRedirectLogin, Destination: LoginPath, From: from}
	}
	if !allowed.Permits(session.User.Role) {
		return Decision{Action: ActionRedirectDashboard, Destination: DefaultDestination(session.User.Role)}
	}
	return Decision{Action: ActionPermit, Destination: from}
}

// Guard applies Check to the route table using the session cached in a store
type Guard struct {
	routes map[string]Route
	store  SessionStore
	logger *zap.Logger
}

// NewGuard creates a Guard over routes; nil routes selects DefaultRoutes
func NewGuard(store SessionStore, routes []Route, logger *zap.Logger) *Guard {
	if routes == nil {
		routes = DefaultRoutes()
	}
	table := make(map[string]Route, len(routes))
	for _, r := range routes {
		table[r.Path] = r
	}
	return &Guard{routes: table, store: store, logger: logger}
}

// Navigate advises on a navigation to path
func (g *Guard) Navigate(ctx context.Context, path string) (Decision, error) {
	route, ok := g.routes[path]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}

	switch {
	case route.RedirectTo != "":
		return Decision{Action: ActionRedirectLogin, Destination: route.RedirectTo}, nil
	case route.Allowed == nil:
		return Decision{Action: ActionPermit, Destination: path}, nil
	}

	session, err := LoadSession(ctx, g.store)
	if errors.Is(err, ErrCorruptSession) {
		g.logger.Warn("discarding unreadable cached session", zap.Error(err))
		session, err = nil, ClearSession(ctx, g.store)
	}
	if err != nil {
		return Decision{}, err
	}

	d := Check(session, *route.Allowed, path)
	g.logger.Debug("navigation checked",
		zap.String("path", path),
		zap.Stringer("action", d.Action),
		zap.String("destination", d.Destination))
	return d, nil
}
