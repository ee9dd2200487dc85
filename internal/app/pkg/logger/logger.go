package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

// Context keys for fields attached to every log line produced under that context.
const (
	KeyOperationID ctxKey = "operation_id"
	KeyAccount     ctxKey = "account"
	KeySyncSession ctxKey = "sync_session"
)

// Logger is the logging interface used across the application.
type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
	Sync() error
}

// ZapLogger is the zap-backed implementation.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger creates a JSON zap logger at the given level ("debug", "info",
// "warn", "error"; anything else falls back to info).
func NewZapLogger(level string) (Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &ZapLogger{logger: l}, nil
}

// WithOperationID returns a context whose log lines carry the operation id.
func WithOperationID(ctx context.Context, operationID string) context.Context {
	return context.WithValue(ctx, KeyOperationID, operationID)
}

// WithAccount returns a context whose log lines carry the account name.
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, KeyAccount, account)
}

// WithSyncSession returns a context whose log lines carry the sync session id.
func WithSyncSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, KeySyncSession, session)
}

func (l *ZapLogger) extractFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if v, ok := ctx.Value(KeyOperationID).(string); ok && v != "" {
		fields = append(fields, zap.String(string(KeyOperationID), v))
	}
	if v, ok := ctx.Value(KeyAccount).(string); ok && v != "" {
		fields = append(fields, zap.String(string(KeyAccount), v))
	}
	if v, ok := ctx.Value(KeySyncSession).(string); ok && v != "" {
		fields = append(fields, zap.String(string(KeySyncSession), v))
	}
	return fields
}

func (l *ZapLogger) Debugf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

func (l *ZapLogger) Infof(ctx context.Context, format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

func (l *ZapLogger) Warnf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

func (l *ZapLogger) Errorf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() Logger {
	return &ZapLogger{logger: zap.NewNop()}
}
