package flow

import "context"

// OperationLogger records flow-level events emitted by the guard, the
// purchase wizard, and the inactivity watcher.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes one flow operation and its outcome.
type OperationLog struct {
	Operation string
	Session   SessionID
	Principal Principal
	Route     Route
	Step      WizardStep
	Amount    float64
	Status    string
	Error     error
}

func logOperation(ctx context.Context, logger OperationLogger, entry OperationLog) {
	if logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	logger.LogOperation(ctx, entry)
}
