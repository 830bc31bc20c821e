package flow

import (
	"context"
	"sync"
	"time"
)

// DefaultInactivityTimeout is the idle duration after which a forced
// navigation fires on non-exempt routes.
const DefaultInactivityTimeout = 15 * time.Minute

// WatcherConfig configures an InactivityWatcher.
type WatcherConfig struct {
	Timeout      time.Duration
	ExemptRoutes []Route
	OnTimeout    func()
	Logger       OperationLogger
}

// InactivityWatcher arms a single timer whenever the active route is
// outside the exemption set. Any activity signal cancels and re-arms
// the timer; route changes re-evaluate arming; Stop tears everything
// down. Home and dashboard are exempt by default and the policy is
// fixed at construction.
type InactivityWatcher struct {
	mu         sync.Mutex
	timeout    time.Duration
	exempt     map[Route]struct{}
	onTimeout  func()
	logger     OperationLogger
	route      Route
	timer      *time.Timer
	generation uint64
	stopped    bool
}

// NewInactivityWatcher wires a watcher. A zero timeout falls back to
// the default; a nil exemption list falls back to {home, dashboard}.
func NewInactivityWatcher(cfg WatcherConfig) (*InactivityWatcher, error) {
	if cfg.OnTimeout == nil {
		return nil, WrapError("inactivity", "callback", "nil_dependency", ErrInvalidWatcherConfig)
	}
	if cfg.Timeout < 0 {
		return nil, WrapError("inactivity", "timeout", "negative", ErrInvalidWatcherConfig)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultInactivityTimeout
	}
	exemptRoutes := cfg.ExemptRoutes
	if exemptRoutes == nil {
		exemptRoutes = []Route{RouteHome, RouteDashboard}
	}
	exempt := make(map[Route]struct{}, len(exemptRoutes))
	for _, route := range exemptRoutes {
		exempt[route] = struct{}{}
	}
	return &InactivityWatcher{
		timeout:   timeout,
		exempt:    exempt,
		onTimeout: cfg.OnTimeout,
		logger:    cfg.Logger,
		route:     RouteHome,
	}, nil
}

// SetRoute records a route change and re-evaluates arming: exempt
// routes disarm the timer, all other routes start a fresh countdown.
func (watcher *InactivityWatcher) SetRoute(route Route) {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.stopped {
		return
	}
	watcher.route = route
	if _, isExempt := watcher.exempt[route]; isExempt {
		watcher.disarmLocked()
		return
	}
	watcher.armLocked()
}

// Activity records an activity signal, cancelling and re-arming the
// countdown when the current route is subject to the timeout.
func (watcher *InactivityWatcher) Activity() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.stopped {
		return
	}
	if _, isExempt := watcher.exempt[watcher.route]; isExempt {
		return
	}
	watcher.armLocked()
}

// Armed reports whether a countdown is pending.
func (watcher *InactivityWatcher) Armed() bool {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	return watcher.timer != nil
}

// Route returns the route the watcher currently observes.
func (watcher *InactivityWatcher) Route() Route {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	return watcher.route
}

// Stop cancels any pending countdown and ignores further signals.
func (watcher *InactivityWatcher) Stop() {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	watcher.stopped = true
	watcher.disarmLocked()
}

func (watcher *InactivityWatcher) armLocked() {
	watcher.disarmLocked()
	watcher.generation++
	generation := watcher.generation
	watcher.timer = time.AfterFunc(watcher.timeout, func() {
		watcher.fire(generation)
	})
}

func (watcher *InactivityWatcher) disarmLocked() {
	if watcher.timer != nil {
		watcher.timer.Stop()
		watcher.timer = nil
	}
}

func (watcher *InactivityWatcher) fire(generation uint64) {
	watcher.mu.Lock()
	if watcher.stopped || generation != watcher.generation || watcher.timer == nil {
		watcher.mu.Unlock()
		return
	}
	watcher.timer = nil
	route := watcher.route
	logger := watcher.logger
	watcher.mu.Unlock()

	logOperation(context.Background(), logger, OperationLog{
		Operation: operationTimeout,
		Route:     route,
	})
	watcher.onTimeout()
}
