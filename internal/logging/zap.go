package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the zap configuration.
type Options struct {
	Level       string
	Development bool
	Output      io.Writer
}

type ZapLogger struct {
	l *zap.SugaredLogger
}

// NewZapLogger builds a JSON logger (or a console logger in development mode)
// writing to opts.Output, or stdout when it is nil.
func NewZapLogger(opts Options) *ZapLogger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var encoder zapcore.Encoder
	if opts.Development {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), levelFromString(opts.Level))
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))

	return &ZapLogger{l: l.Sugar()}
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return &ZapLogger{l: zap.NewNop().Sugar()}
}

func levelFromString(l string) zapcore.Level {
	switch strings.ToLower(l) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (z *ZapLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.l.Debugw(msg, withContext(ctx, args)...)
}

func (z *ZapLogger) Info(ctx context.Context, msg string, args ...any) {
	z.l.Infow(msg, withContext(ctx, args)...)
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.l.Warnw(msg, withContext(ctx, args)...)
}

func (z *ZapLogger) Error(ctx context.Context, msg string, args ...any) {
	z.l.Errorw(msg, withContext(ctx, args)...)
}

func (z *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{l: z.l.With(args...)}
}

// Sync flushes buffered entries. Call it once before the process exits.
func (z *ZapLogger) Sync() error {
	return z.l.Sync()
}

func withContext(ctx context.Context, args []any) []any {
	fields := fieldsFromContext(ctx)
	if len(fields) == 0 {
		return args
	}
	return append(append(make([]any, 0, len(fields)+len(args)), fields...), args...)
}
