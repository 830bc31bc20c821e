package flow

import (
	"fmt"
	"strings"
)

// Route enumerates the closed set of application routes.
type Route string

const (
	RouteHome              Route = "/"
	RouteDashboard         Route = "/dashboard"
	RouteWallet            Route = "/wallet"
	RoutePlans             Route = "/plans"
	RouteProfile           Route = "/profile"
	RouteAdminWalletCredit Route = "/admin/wallet-credit"
)

// Routes lists every known route.
func Routes() []Route {
	return []Route{
		RouteHome,
		RouteDashboard,
		RouteWallet,
		RoutePlans,
		RouteProfile,
		RouteAdminWalletCredit,
	}
}

// ParseRoute validates an exact route path.
func ParseRoute(raw string) (Route, error) {
	candidate := Route(raw)
	for _, route := range Routes() {
		if candidate == route {
			return route, nil
		}
	}
	return RouteHome, fmt.Errorf("%w: %q", ErrInvalidRoute, raw)
}

// ResolveHash maps a URL hash fragment to a Route. The fragment may
// carry a leading '#' and an embedded query string; anything that does
// not name a known route resolves to the home route.
func ResolveHash(rawHash string) Route {
	path := hashPath(rawHash)
	route, err := ParseRoute(path)
	if err != nil {
		return RouteHome
	}
	return route
}

// Hash returns the hash fragment that addresses the route.
func (route Route) Hash() string {
	return "#" + string(route)
}

// String returns the route path.
func (route Route) String() string {
	return string(route)
}

// IsDashboardFamily reports whether the route is gated behind the
// protected-route guard.
func (route Route) IsDashboardFamily() bool {
	switch route {
	case RouteDashboard, RouteWallet, RouteProfile, RouteAdminWalletCredit:
		return true
	}
	return false
}

// hashPath strips the leading '#' and any embedded query string,
// normalizing the empty fragment to the home path.
func hashPath(rawHash string) string {
	content := strings.TrimPrefix(rawHash, "#")
	if queryIndex := strings.Index(content, "?"); queryIndex != -1 {
		content = content[:queryIndex]
	}
	if content == "" {
		return string(RouteHome)
	}
	return content
}
