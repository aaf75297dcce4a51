package campus

import "context"

// OperationLogger records domain-level events emitted by service operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a state-changing campus operation.
type OperationLog struct {
	Operation      string
	UserID         UserID
	SubjectID      string
	Amount         int64
	IdempotencyKey IdempotencyKey
	Metadata       MetadataJSON
	Status         string
	Error          error
}

// CombineOperationLoggers fans one operation log out to several sinks.
func CombineOperationLoggers(loggers ...OperationLogger) OperationLogger {
	combined := make(multiOperationLogger, 0, len(loggers))
	for _, logger := range loggers {
		if logger != nil {
			combined = append(combined, logger)
		}
	}
	return combined
}

type multiOperationLogger []OperationLogger

func (loggers multiOperationLogger) LogOperation(ctx context.Context, entry OperationLog) {
	for _, logger := range loggers {
		logger.LogOperation(ctx, entry)
	}
}

func emitOperation(ctx context.Context, logger OperationLogger, entry OperationLog) {
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
