package invest

import (
	"context"
	"fmt"
)

// Service contains the platform domain logic over a Store.
type Service struct {
	store           Store
	nowFn           func() int64
	logger          OperationLogger
	notifier        LeadNotifier
	bootstrapAdmins map[string]struct{}
}

// NewService wires a Service.
func NewService(store Store, now func() int64, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{
		store:           store,
		nowFn:           now,
		bootstrapAdmins: make(map[string]struct{}),
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// RegisterAuthenticatedUser creates the caller's account and wallet on
// first sight. Repeat calls for a registered caller are no-ops.
func (service *Service) RegisterAuthenticatedUser(ctx context.Context, caller Principal) error {
	operationError := service.requireCaller(caller)
	if operationError == nil {
		operationError = service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			_, exists, err := transactionStore.GetAccount(ctx, caller)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
			role := RoleUser
			if _, isBootstrapAdmin := service.bootstrapAdmins[caller.String()]; isBootstrapAdmin {
				role = RoleAdmin
			}
			if err := transactionStore.CreateAccount(ctx, Account{Principal: caller.String(), Role: role}); err != nil {
				return err
			}
			return transactionStore.SaveWallet(ctx, caller, Wallet{BalanceCents: initialWalletBalanceCents})
		})
	}
	service.logOperation(ctx, OperationLog{
		Operation: operationRegister,
		Principal: caller,
		Error:     operationError,
	})
	return operationError
}

// RegisterNumber records the caller's unique number. A caller may
// register at most one number and every number belongs to at most one
// caller.
func (service *Service) RegisterNumber(ctx context.Context, caller Principal, number int64) error {
	operationError := func() error {
		if err := service.requireCaller(caller); err != nil {
			return err
		}
		if number <= 0 {
			return fmt.Errorf("%w: must be positive", ErrInvalidNumber)
		}
		return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			account, exists, err := transactionStore.GetAccount(ctx, caller)
			if err != nil {
				return err
			}
			if !exists {
				return ErrUnknownUser
			}
			if account.Number != nil {
				return ErrNumberRegistered
			}
			return transactionStore.SetAccountNumber(ctx, caller, number)
		})
	}()
	service.logOperation(ctx, OperationLog{
		Operation: operationRegisterNum,
		Principal: caller,
		Error:     operationError,
	})
	return operationError
}

// CallerNumber returns the caller's registered number, nil when none
// has been registered yet.
func (service *Service) CallerNumber(ctx context.Context, caller Principal) (*int64, error) {
	if err := service.requireCaller(caller); err != nil {
		return nil, err
	}
	account, exists, err := service.store.GetAccount(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return account.Number, nil
}

// CallerProfile returns the caller's profile, nil until one is saved.
func (service *Service) CallerProfile(ctx context.Context, caller Principal) (*UserProfile, error) {
	if err := service.requireCaller(caller); err != nil {
		return nil, err
	}
	return service.profileOf(ctx, caller)
}

// SaveCallerProfile validates and stores the caller's profile.
func (service *Service) SaveCallerProfile(ctx context.Context, caller Principal, profile UserProfile) error {
	operationError := func() error {
		if err := service.requireCaller(caller); err != nil {
			return err
		}
		if err := profile.Validate(); err != nil {
			return err
		}
		if _, exists, err := service.store.GetAccount(ctx, caller); err != nil {
			return err
		} else if !exists {
			return ErrUnknownUser
		}
		return service.store.SaveProfile(ctx, caller, profile)
	}()
	service.logOperation(ctx, OperationLog{
		Operation: operationSaveProfile,
		Principal: caller,
		Error:     operationError,
	})
	return operationError
}

// UserProfileOf returns another user's profile. Admin only.
func (service *Service) UserProfileOf(ctx context.Context, caller Principal, target Principal) (*UserProfile, error) {
	if err := service.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if target.IsZero() {
		return nil, ErrInvalidPrincipal
	}
	return service.profileOf(ctx, target)
}

// CallerRole reports the caller's role; unauthenticated and
// unregistered callers are guests.
func (service *Service) CallerRole(ctx context.Context, caller Principal) (Role, error) {
	if caller.IsZero() {
		return RoleGuest, nil
	}
	account, exists, err := service.store.GetAccount(ctx, caller)
	if err != nil {
		return "", err
	}
	if !exists {
		return RoleGuest, nil
	}
	return account.Role, nil
}

// IsCallerAdmin reports whether the caller holds the admin role.
func (service *Service) IsCallerAdmin(ctx context.Context, caller Principal) (bool, error) {
	role, err := service.CallerRole(ctx, caller)
	if err != nil {
		return false, err
	}
	return role == RoleAdmin, nil
}

// AssignRole sets a user's role. Admin only.
func (service *Service) AssignRole(ctx context.Context, caller Principal, target Principal, role Role) error {
	operationError := func() error {
		if err := service.requireAdmin(ctx, caller); err != nil {
			return err
		}
		if target.IsZero() {
			return ErrInvalidPrincipal
		}
		if _, err := ParseRole(role.String()); err != nil {
			return err
		}
		if _, exists, err := service.store.GetAccount(ctx, target); err != nil {
			return err
		} else if !exists {
			return ErrUnknownUser
		}
		return service.store.UpdateAccountRole(ctx, target, role)
	}()
	service.logOperation(ctx, OperationLog{
		Operation: operationAssignRole,
		Principal: caller,
		Subject:   target.String(),
		Error:     operationError,
	})
	return operationError
}

func (service *Service) profileOf(ctx context.Context, principal Principal) (*UserProfile, error) {
	profile, exists, err := service.store.GetProfile(ctx, principal)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return &profile, nil
}

func (service *Service) requireCaller(caller Principal) error {
	if caller.IsZero() {
		return ErrNotAuthenticated
	}
	return nil
}

func (service *Service) requireAdmin(ctx context.Context, caller Principal) error {
	if caller.IsZero() {
		return ErrNotAuthenticated
	}
	account, exists, err := service.store.GetAccount(ctx, caller)
	if err != nil {
		return err
	}
	if !exists || account.Role != RoleAdmin {
		return ErrNotAdmin
	}
	return nil
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}
