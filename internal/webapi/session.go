package webapi

import (
	"sync"
	"time"

	"github.com/NexaProfitLabs/platform/pkg/flow"
)

// sessionState holds the per-session runtime pieces that never leave
// the gateway: the active route, the inactivity watcher, and an open
// purchase wizard.
type sessionState struct {
	mu          sync.Mutex
	route       flow.Route
	watcher     *flow.InactivityWatcher
	wizard      *flow.PurchaseWizard
	settleTimer *time.Timer
}

// ensureWatcher lazily creates the inactivity watcher. The timeout
// forces navigation back home.
func (state *sessionState) ensureWatcher(timeout time.Duration, logger flow.OperationLogger) error {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.watcher != nil {
		return nil
	}
	watcher, err := flow.NewInactivityWatcher(flow.WatcherConfig{
		Timeout: timeout,
		Logger:  logger,
		OnTimeout: func() {
			state.setRoute(flow.RouteHome)
		},
	})
	if err != nil {
		return err
	}
	state.watcher = watcher
	return nil
}

func (state *sessionState) setRoute(route flow.Route) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.route = route
	if state.watcher != nil {
		state.watcher.SetRoute(route)
	}
}

func (state *sessionState) currentRoute() flow.Route {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.route == "" {
		return flow.RouteHome
	}
	return state.route
}

func (state *sessionState) activity() {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.watcher != nil {
		state.watcher.Activity()
	}
}

func (state *sessionState) openWizard(wizard *flow.PurchaseWizard) {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.settleTimer != nil {
		state.settleTimer.Stop()
		state.settleTimer = nil
	}
	state.wizard = wizard
}

func (state *sessionState) currentWizard() *flow.PurchaseWizard {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.wizard
}

// closeWizard discards the wizard. A successful purchase keeps the
// success view visible for the settle delay before the state clears.
func (state *sessionState) closeWizard(settleDelay time.Duration) {
	state.mu.Lock()
	defer state.mu.Unlock()
	wizard := state.wizard
	if wizard == nil {
		return
	}
	if wizard.Step() != flow.StepSuccess || settleDelay <= 0 {
		wizard.Reset()
		state.wizard = nil
		return
	}
	state.settleTimer = time.AfterFunc(settleDelay, func() {
		state.mu.Lock()
		defer state.mu.Unlock()
		if state.wizard == wizard {
			wizard.Reset()
			state.wizard = nil
			state.settleTimer = nil
		}
	})
}

func (state *sessionState) stop() {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.watcher != nil {
		state.watcher.Stop()
	}
	if state.settleTimer != nil {
		state.settleTimer.Stop()
		state.settleTimer = nil
	}
	state.wizard = nil
}

// sessionRegistry maps session keys to their runtime state.
type sessionRegistry struct {
	mu     sync.Mutex
	states map[string]*sessionState
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{states: make(map[string]*sessionState)}
}

func (registry *sessionRegistry) get(key string) *sessionState {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	state, ok := registry.states[key]
	if !ok {
		state = &sessionState{route: flow.RouteHome}
		registry.states[key] = state
	}
	return state
}

func (registry *sessionRegistry) stopAll() {
	registry.mu.Lock()
	states := make([]*sessionState, 0, len(registry.states))
	for _, state := range registry.states {
		states = append(states, state)
	}
	registry.mu.Unlock()
	for _, state := range states {
		state.stop()
	}
}
