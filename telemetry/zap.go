package telemetry

import (
	"context"

	"go.uber.org/zap"
)

// ZapLogger adapts a *zap.SugaredLogger to the Logger interface.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps an existing zap logger. Pass zap.NewProduction() or
// zap.NewDevelopment() results from the caller's bootstrap code.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: l.Sugar()}
}

func (z *ZapLogger) Debug(_ context.Context, msg string, kv ...any) { z.sugar.Debugw(msg, kv...) }
func (z *ZapLogger) Info(_ context.Context, msg string, kv ...any)  { z.sugar.Infow(msg, kv...) }
func (z *ZapLogger) Warn(_ context.Context, msg string, kv ...any)  { z.sugar.Warnw(msg, kv...) }
func (z *ZapLogger) Error(_ context.Context, msg string, kv ...any) { z.sugar.Errorw(msg, kv...) }
