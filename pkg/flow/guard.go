package flow

import (
	"context"
	"sync"
)

// GuardState enumerates the protected-route guard states.
type GuardState string

const (
	GuardInitializing    GuardState = "initializing"
	GuardUnauthenticated GuardState = "unauthenticated"
	GuardRegistering     GuardState = "registering"
	GuardReady           GuardState = "ready"
)

// GuardStatus is the guard's verdict for one admission check. A failed
// registration still admits with RegistrationErr set; there is no retry
// path.
type GuardStatus struct {
	State           GuardState
	RegistrationErr error
}

// Registrar performs the idempotent ensure-registered call against the
// remote backend.
type Registrar interface {
	RegisterAuthenticatedUser(ctx context.Context, principal Principal) error
}

// Guard gates dashboard-family routes behind authentication and a
// once-per-identity registration call whose result is cached for the
// lifetime of the process.
type Guard struct {
	mu        sync.Mutex
	registrar Registrar
	records   map[string]*registrationRecord
	logger    OperationLogger
}

type registrationRecord struct {
	inFlight bool
	done     bool
	err      error
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithGuardLogger wires a logger that receives registration outcomes.
func WithGuardLogger(logger OperationLogger) GuardOption {
	return func(guard *Guard) {
		guard.logger = logger
	}
}

// NewGuard wires a Guard over a registrar.
func NewGuard(registrar Registrar, options ...GuardOption) (*Guard, error) {
	if registrar == nil {
		return nil, WrapError("guard", "registrar", "nil_dependency", ErrInvalidGuardConfig)
	}
	guard := &Guard{
		registrar: registrar,
		records:   make(map[string]*registrationRecord),
	}
	for _, option := range options {
		if option != nil {
			option(guard)
		}
	}
	return guard, nil
}

// Admit evaluates the guard for the given identity. A zero principal is
// unauthenticated. The first admission for an identity performs the
// registration call synchronously; admissions that arrive while it is
// in flight report the registering state; later admissions reuse the
// cached result.
func (guard *Guard) Admit(ctx context.Context, principal Principal) GuardStatus {
	if principal.IsZero() {
		return GuardStatus{State: GuardUnauthenticated}
	}

	guard.mu.Lock()
	record, exists := guard.records[principal.String()]
	if !exists {
		record = &registrationRecord{}
		guard.records[principal.String()] = record
	}
	if record.done {
		status := GuardStatus{State: GuardReady, RegistrationErr: record.err}
		guard.mu.Unlock()
		return status
	}
	if record.inFlight {
		guard.mu.Unlock()
		return GuardStatus{State: GuardRegistering}
	}
	record.inFlight = true
	guard.mu.Unlock()

	registrationErr := guard.registrar.RegisterAuthenticatedUser(ctx, principal)

	guard.mu.Lock()
	record.inFlight = false
	record.done = true
	record.err = registrationErr
	guard.mu.Unlock()

	logOperation(ctx, guard.logger, OperationLog{
		Operation: operationRegister,
		Principal: principal,
		Error:     registrationErr,
	})
	return GuardStatus{State: GuardReady, RegistrationErr: registrationErr}
}

// Status reports the guard state for an identity without triggering
// registration.
func (guard *Guard) Status(principal Principal) GuardStatus {
	if principal.IsZero() {
		return GuardStatus{State: GuardUnauthenticated}
	}
	guard.mu.Lock()
	defer guard.mu.Unlock()
	record, exists := guard.records[principal.String()]
	if !exists {
		return GuardStatus{State: GuardInitializing}
	}
	if record.inFlight {
		return GuardStatus{State: GuardRegistering}
	}
	if record.done {
		return GuardStatus{State: GuardReady, RegistrationErr: record.err}
	}
	return GuardStatus{State: GuardInitializing}
}
