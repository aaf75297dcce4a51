package oplog

import (
	"context"

	"github.com/fitmatlabs/campus-arena/pkg/campus"
	"go.uber.org/zap"
)

// ZapLogger emits structured operation logs through zap.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps a zap logger as a campus.OperationLogger.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger}
}

// LogOperation writes one line per domain operation.
func (zapLogger *ZapLogger) LogOperation(_ context.Context, entry campus.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("status", entry.Status),
		zap.String("user_id", entry.UserID.String()),
		zap.String("subject_id", entry.SubjectID),
	}
	if entry.Amount != 0 {
		fields = append(fields, zap.Int64("amount", entry.Amount))
	}
	if entry.IdempotencyKey.String() != "" {
		fields = append(fields, zap.String("idempotency_key", entry.IdempotencyKey.String()))
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
		zapLogger.logger.Warn("operation failed", fields...)
		return
	}
	zapLogger.logger.Info("operation", fields...)
}
