package invest

import "context"

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// OperationLogger records domain-level events emitted by Service operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a state-changing invest operation.
type OperationLog struct {
	Operation string
	Principal Principal
	Subject   string
	Amount    float64
	Status    string
	Error     error
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) ServiceOption {
	return func(service *Service) {
		service.logger = logger
	}
}

// WithLeadNotifier wires the notifier used when the telegram bot
// config is active.
func WithLeadNotifier(notifier LeadNotifier) ServiceOption {
	return func(service *Service) {
		service.notifier = notifier
	}
}

// WithAdminBootstrap marks principals that are granted the admin role
// on registration.
func WithAdminBootstrap(principals ...string) ServiceOption {
	return func(service *Service) {
		for _, principal := range principals {
			service.bootstrapAdmins[principal] = struct{}{}
		}
	}
}
