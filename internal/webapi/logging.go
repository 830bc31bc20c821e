package webapi

import (
	"context"

	"github.com/NexaProfitLabs/platform/pkg/flow"
	"go.uber.org/zap"
)

// zapFlowLogger forwards flow operation logs to zap.
type zapFlowLogger struct {
	logger *zap.Logger
}

func newZapFlowLogger(logger *zap.Logger) *zapFlowLogger {
	return &zapFlowLogger{logger: logger}
}

func (adapter *zapFlowLogger) LogOperation(_ context.Context, entry flow.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("status", entry.Status),
	}
	if entry.Principal.String() != "" {
		fields = append(fields, zap.String("principal", entry.Principal.String()))
	}
	if entry.Route != "" {
		fields = append(fields, zap.String("route", entry.Route.String()))
	}
	if entry.Step != "" {
		fields = append(fields, zap.String("step", string(entry.Step)))
	}
	if entry.Amount != 0 {
		fields = append(fields, zap.Float64("amount", entry.Amount))
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
		adapter.logger.Warn("flow operation", fields...)
		return
	}
	adapter.logger.Info("flow operation", fields...)
}
