package invest

import "context"

// CallerWalletBalance returns the caller's balance in dollars, nil
// until the wallet is initialized.
func (service *Service) CallerWalletBalance(ctx context.Context, caller Principal) (*float64, error) {
	if err := service.requireCaller(caller); err != nil {
		return nil, err
	}
	return service.walletBalanceOf(ctx, caller)
}

// CallerWeeklyReturn returns the caller's accumulated weekly return in
// dollars, nil until the wallet is initialized.
func (service *Service) CallerWeeklyReturn(ctx context.Context, caller Principal) (*float64, error) {
	if err := service.requireCaller(caller); err != nil {
		return nil, err
	}
	return service.weeklyReturnOf(ctx, caller)
}

// UserWalletBalance returns another user's balance. Admin only.
func (service *Service) UserWalletBalance(ctx context.Context, caller Principal, target Principal) (*float64, error) {
	if err := service.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if target.IsZero() {
		return nil, ErrInvalidPrincipal
	}
	return service.walletBalanceOf(ctx, target)
}

// UserWeeklyReturn returns another user's weekly return. Admin only.
func (service *Service) UserWeeklyReturn(ctx context.Context, caller Principal, target Principal) (*float64, error) {
	if err := service.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if target.IsZero() {
		return nil, ErrInvalidPrincipal
	}
	return service.weeklyReturnOf(ctx, target)
}

// InitializeCallerWallet creates the caller's wallet when missing.
// Initializing an existing wallet is a no-op that keeps the balance.
func (service *Service) InitializeCallerWallet(ctx context.Context, caller Principal) error {
	operationError := func() error {
		if err := service.requireCaller(caller); err != nil {
			return err
		}
		return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			if _, exists, err := transactionStore.GetAccount(ctx, caller); err != nil {
				return err
			} else if !exists {
				return ErrUnknownUser
			}
			_, exists, err := transactionStore.GetWallet(ctx, caller)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
			return transactionStore.SaveWallet(ctx, caller, Wallet{BalanceCents: initialWalletBalanceCents})
		})
	}()
	service.logOperation(ctx, OperationLog{
		Operation: operationInitWallet,
		Principal: caller,
		Error:     operationError,
	})
	return operationError
}

// CreditUserWallet adds amount dollars to a user's balance. Admin only.
func (service *Service) CreditUserWallet(ctx context.Context, caller Principal, target Principal, amount float64) error {
	operationError := func() error {
		if err := service.requireAdmin(ctx, caller); err != nil {
			return err
		}
		if target.IsZero() {
			return ErrInvalidPrincipal
		}
		amountCents, err := DollarsToCents(amount)
		if err != nil {
			return err
		}
		return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			wallet, exists, err := transactionStore.GetWallet(ctx, target)
			if err != nil {
				return err
			}
			if !exists {
				return ErrWalletNotInitialized
			}
			wallet.BalanceCents += amountCents
			return transactionStore.SaveWallet(ctx, target, wallet)
		})
	}()
	service.logOperation(ctx, OperationLog{
		Operation: operationCreditWallet,
		Principal: caller,
		Subject:   target.String(),
		Amount:    amount,
		Error:     operationError,
	})
	return operationError
}

// SetWalletBalance overwrites a user's balance. Admin only.
func (service *Service) SetWalletBalance(ctx context.Context, caller Principal, target Principal, balance float64) error {
	operationError := func() error {
		if err := service.requireAdmin(ctx, caller); err != nil {
			return err
		}
		if target.IsZero() {
			return ErrInvalidPrincipal
		}
		return service.setBalance(ctx, target, balance)
	}()
	service.logOperation(ctx, OperationLog{
		Operation: operationSetBalance,
		Principal: caller,
		Subject:   target.String(),
		Amount:    balance,
		Error:     operationError,
	})
	return operationError
}

// SetWalletBalanceByEmail overwrites the balance of the user whose
// profile carries the given email and reports the principal the email
// resolved to. Admin only.
func (service *Service) SetWalletBalanceByEmail(ctx context.Context, caller Principal, email string, balance float64) (Principal, error) {
	var target Principal
	operationError := func() error {
		if err := service.requireAdmin(ctx, caller); err != nil {
			return err
		}
		if err := validateEmail(email); err != nil {
			return err
		}
		resolved, exists, err := service.store.FindPrincipalByEmail(ctx, email)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUnknownUser
		}
		target = resolved
		return service.setBalance(ctx, target, balance)
	}()
	service.logOperation(ctx, OperationLog{
		Operation: operationSetBalance,
		Principal: caller,
		Subject:   email,
		Amount:    balance,
		Error:     operationError,
	})
	return target, operationError
}

func (service *Service) setBalance(ctx context.Context, target Principal, balance float64) error {
	balanceCents, err := DollarsToCents(balance)
	if err != nil {
		return err
	}
	return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		wallet, exists, err := transactionStore.GetWallet(ctx, target)
		if err != nil {
			return err
		}
		if !exists {
			return ErrWalletNotInitialized
		}
		wallet.BalanceCents = balanceCents
		return transactionStore.SaveWallet(ctx, target, wallet)
	})
}

func (service *Service) walletBalanceOf(ctx context.Context, principal Principal) (*float64, error) {
	wallet, exists, err := service.store.GetWallet(ctx, principal)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	balance := CentsToDollars(wallet.BalanceCents)
	return &balance, nil
}

func (service *Service) weeklyReturnOf(ctx context.Context, principal Principal) (*float64, error) {
	wallet, exists, err := service.store.GetWallet(ctx, principal)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	weeklyReturn := CentsToDollars(wallet.WeeklyReturnCents)
	return &weeklyReturn, nil
}
