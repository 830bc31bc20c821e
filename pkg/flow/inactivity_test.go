package flow

import (
	"errors"
	"testing"
	"time"
)

func TestWatcherRequiresCallback(t *testing.T) {
	if _, err := NewInactivityWatcher(WatcherConfig{}); !errors.Is(err, ErrInvalidWatcherConfig) {
		t.Fatalf("expected ErrInvalidWatcherConfig, got %v", err)
	}
	if _, err := NewInactivityWatcher(WatcherConfig{Timeout: -time.Second, OnTimeout: func() {}}); !errors.Is(err, ErrInvalidWatcherConfig) {
		t.Fatalf("expected rejection of negative timeout, got %v", err)
	}
}

func TestWatcherDefaultsTimeoutAndExemptions(t *testing.T) {
	watcher, err := NewInactivityWatcher(WatcherConfig{OnTimeout: func() {}})
	if err != nil {
		t.Fatalf("watcher init failed: %v", err)
	}
	defer watcher.Stop()

	if watcher.timeout != DefaultInactivityTimeout {
		t.Fatalf("unexpected default timeout %v", watcher.timeout)
	}
	if watcher.Route() != RouteHome || watcher.Armed() {
		t.Fatalf("expected disarmed watcher on home, armed=%v route=%q", watcher.Armed(), watcher.Route())
	}

	watcher.SetRoute(RouteDashboard)
	if watcher.Armed() {
		t.Fatalf("dashboard must stay exempt")
	}
	watcher.SetRoute(RouteWallet)
	if !watcher.Armed() {
		t.Fatalf("wallet must arm the countdown")
	}
}

func TestWatcherFiresAfterIdlePeriod(t *testing.T) {
	fired := make(chan struct{}, 1)
	watcher, err := NewInactivityWatcher(WatcherConfig{
		Timeout:   10 * time.Millisecond,
		OnTimeout: func() { fired <- struct{}{} },
	})
	if err != nil {
		t.Fatalf("watcher init failed: %v", err)
	}
	defer watcher.Stop()

	watcher.SetRoute(RouteWallet)
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout never fired on non-exempt route")
	}
	if watcher.Armed() {
		t.Fatalf("expected disarmed watcher after firing")
	}
}

func TestWatcherActivityRearmsCountdown(t *testing.T) {
	fired := make(chan struct{}, 1)
	watcher, err := NewInactivityWatcher(WatcherConfig{
		Timeout:   50 * time.Millisecond,
		OnTimeout: func() { fired <- struct{}{} },
	})
	if err != nil {
		t.Fatalf("watcher init failed: %v", err)
	}
	defer watcher.Stop()

	watcher.SetRoute(RouteWallet)
	for i := 0; i < 5; i++ {
		time.Sleep(10 * time.Millisecond)
		watcher.Activity()
	}
	select {
	case <-fired:
		t.Fatalf("countdown fired despite activity signals")
	default:
	}
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown never fired after activity stopped")
	}
}

func TestWatcherActivityIgnoredOnExemptRoute(t *testing.T) {
	watcher, err := NewInactivityWatcher(WatcherConfig{
		Timeout:   10 * time.Millisecond,
		OnTimeout: func() { t.Errorf("timeout fired on exempt route") },
	})
	if err != nil {
		t.Fatalf("watcher init failed: %v", err)
	}
	defer watcher.Stop()

	watcher.SetRoute(RouteHome)
	watcher.Activity()
	if watcher.Armed() {
		t.Fatalf("activity armed the countdown on an exempt route")
	}
	time.Sleep(30 * time.Millisecond)
}

func TestWatcherExemptRouteDisarmsPendingCountdown(t *testing.T) {
	fired := make(chan struct{}, 1)
	watcher, err := NewInactivityWatcher(WatcherConfig{
		Timeout:   20 * time.Millisecond,
		OnTimeout: func() { fired <- struct{}{} },
	})
	if err != nil {
		t.Fatalf("watcher init failed: %v", err)
	}
	defer watcher.Stop()

	watcher.SetRoute(RoutePlans)
	if !watcher.Armed() {
		t.Fatalf("expected armed watcher on plans route")
	}
	watcher.SetRoute(RouteDashboard)
	if watcher.Armed() {
		t.Fatalf("expected disarmed watcher back on dashboard")
	}
	select {
	case <-fired:
		t.Fatalf("countdown fired after navigating to an exempt route")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestWatcherCustomExemptions(t *testing.T) {
	watcher, err := NewInactivityWatcher(WatcherConfig{
		Timeout:      time.Hour,
		ExemptRoutes: []Route{RouteWallet},
		OnTimeout:    func() {},
	})
	if err != nil {
		t.Fatalf("watcher init failed: %v", err)
	}
	defer watcher.Stop()

	watcher.SetRoute(RouteWallet)
	if watcher.Armed() {
		t.Fatalf("custom exemption ignored")
	}
	watcher.SetRoute(RouteDashboard)
	if !watcher.Armed() {
		t.Fatalf("dashboard should arm when not in the exemption list")
	}
}

func TestWatcherStopSilencesSignals(t *testing.T) {
	watcher, err := NewInactivityWatcher(WatcherConfig{
		Timeout:   10 * time.Millisecond,
		OnTimeout: func() { t.Errorf("timeout fired after stop") },
	})
	if err != nil {
		t.Fatalf("watcher init failed: %v", err)
	}

	watcher.SetRoute(RouteWallet)
	watcher.Stop()
	if watcher.Armed() {
		t.Fatalf("expected disarmed watcher after stop")
	}
	watcher.SetRoute(RoutePlans)
	watcher.Activity()
	if watcher.Armed() {
		t.Fatalf("watcher re-armed after stop")
	}
	time.Sleep(30 * time.Millisecond)
}
