package invest

import "context"

// LeadNotifier posts a notification for a new lead when the telegram
// bot config is active. Failures are logged and never block the
// submission.
type LeadNotifier interface {
	NotifyLead(ctx context.Context, config TelegramBotConfig, lead Lead) error
}

// SubmitLead validates and stores a contact-form submission. The lead
// form is public, no authentication is required.
func (service *Service) SubmitLead(ctx context.Context, lead Lead) error {
	operationError := func() error {
		if err := lead.Validate(); err != nil {
			return err
		}
		if err := service.store.InsertLead(ctx, lead); err != nil {
			return err
		}
		service.notifyLead(ctx, lead)
		return nil
	}()
	service.logOperation(ctx, OperationLog{
		Operation: operationSubmitLead,
		Subject:   lead.Email,
		Error:     operationError,
	})
	return operationError
}

// Leads lists every submitted lead. Admin only.
func (service *Service) Leads(ctx context.Context, caller Principal) ([]Lead, error) {
	if err := service.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	return service.store.ListLeads(ctx)
}

// TelegramConfig returns the bot config. Admin only. A zero config is
// returned before the first update.
func (service *Service) TelegramConfig(ctx context.Context, caller Principal) (TelegramBotConfig, error) {
	if err := service.requireAdmin(ctx, caller); err != nil {
		return TelegramBotConfig{}, err
	}
	config, _, err := service.store.GetBotConfig(ctx)
	return config, err
}

// UpdateTelegramConfig validates and stores the bot config. Admin only.
func (service *Service) UpdateTelegramConfig(ctx context.Context, caller Principal, config TelegramBotConfig) error {
	operationError := func() error {
		if err := service.requireAdmin(ctx, caller); err != nil {
			return err
		}
		if err := config.Validate(); err != nil {
			return err
		}
		return service.store.SaveBotConfig(ctx, config)
	}()
	service.logOperation(ctx, OperationLog{
		Operation: operationUpdateBot,
		Principal: caller,
		Error:     operationError,
	})
	return operationError
}

func (service *Service) notifyLead(ctx context.Context, lead Lead) {
	if service.notifier == nil {
		return
	}
	config, exists, err := service.store.GetBotConfig(ctx)
	if err != nil || !exists || !config.Active {
		return
	}
	if notifyErr := service.notifier.NotifyLead(ctx, config, lead); notifyErr != nil {
		service.logOperation(ctx, OperationLog{
			Operation: operationSubmitLead,
			Subject:   lead.Email,
			Status:    operationStatusError,
			Error:     notifyErr,
		})
	}
}
