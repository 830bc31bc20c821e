package invest

import "context"

// Eligibility-chain messages rendered by the deposit dialog.
const (
	messageDepositRequiresAuth    = "Sign in to make a deposit"
	messageDepositRequiresNumber  = "Register your unique number before making a deposit"
	messageDepositRequiresProfile = "Complete your profile before making a deposit"
	messageDepositEligible        = "You are eligible to make a deposit"
	messageDepositReceived        = "Deposit request received"
)

// CheckDepositEligibility walks the deposit prerequisites chain:
// authentication, then a registered number, then a complete profile.
// The first unmet requirement determines the message.
func (service *Service) CheckDepositEligibility(ctx context.Context, caller Principal) (DepositEligibility, error) {
	if caller.IsZero() {
		return DepositEligibility{
			RequiresAuthentication: true,
			Message:                messageDepositRequiresAuth,
		}, nil
	}
	account, exists, err := service.store.GetAccount(ctx, caller)
	if err != nil {
		return DepositEligibility{}, err
	}
	if !exists || account.Number == nil {
		return DepositEligibility{
			RequiresNumber: true,
			Message:        messageDepositRequiresNumber,
		}, nil
	}
	profile, hasProfile, err := service.store.GetProfile(ctx, caller)
	if err != nil {
		return DepositEligibility{}, err
	}
	if !hasProfile || !profile.IsComplete() {
		return DepositEligibility{
			RequiresProfile: true,
			Message:         messageDepositRequiresProfile,
		}, nil
	}
	return DepositEligibility{
		IsEligible: true,
		Message:    messageDepositEligible,
	}, nil
}

// SubmitDeposit stores a deposit request with its proof screenshot and
// returns a confirmation message. The caller must pass the eligibility
// chain.
func (service *Service) SubmitDeposit(ctx context.Context, caller Principal, screenshot []byte) (string, error) {
	confirmation, operationError := func() (string, error) {
		if err := service.requireCaller(caller); err != nil {
			return "", err
		}
		if len(screenshot) == 0 {
			return "", ErrEmptyScreenshot
		}
		eligibility, err := service.CheckDepositEligibility(ctx, caller)
		if err != nil {
			return "", err
		}
		if !eligibility.IsEligible {
			return "", ErrNotEligible
		}
		profile, _, err := service.store.GetProfile(ctx, caller)
		if err != nil {
			return "", err
		}
		deposit := DepositRequest{
			Principal:  caller.String(),
			UserID:     caller.String(),
			Profile:    &profile,
			Screenshot: screenshot,
		}
		if err := service.store.InsertDeposit(ctx, deposit); err != nil {
			return "", err
		}
		return messageDepositReceived, nil
	}()
	service.logOperation(ctx, OperationLog{
		Operation: operationSubmitDeposit,
		Principal: caller,
		Error:     operationError,
	})
	return confirmation, operationError
}

// DepositRequests lists every submitted deposit. Admin only.
func (service *Service) DepositRequests(ctx context.Context, caller Principal) ([]DepositRequest, error) {
	if err := service.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	return service.store.ListDeposits(ctx)
}
