package redlock

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"
)

// Logger is the interface that wraps the basic logging methods.
type Logger interface {
	// Debug logs a debug message.
	Debug(ctx context.Context, msg string, args ...any)
	// Info logs an info message.
	Info(ctx context.Context, msg string, args ...any)
	// Warn logs a warning message.
	Warn(ctx context.Context, msg string, args ...any)
	// Error logs an error message.
	Error(ctx context.Context, msg string, args ...any)
}

// defaultLogger is the default implementation of Logger interface.
// Debug output is discarded.
type defaultLogger struct {
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
}

// newDefaultLogger creates a new default logger.
func newDefaultLogger() *defaultLogger {
	return &defaultLogger{
		debug: log.New(io.Discard, "[DEBUG] ", log.LstdFlags),
		info:  log.New(os.Stdout, "[INFO] ", log.LstdFlags),
		warn:  log.New(os.Stdout, "[WARN] ", log.LstdFlags),
		error: log.New(os.Stderr, "[ERROR] ", log.LstdFlags),
	}
}

func (l *defaultLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.debug.Println(format(msg, args))
}

func (l *defaultLogger) Info(ctx context.Context, msg string, args ...any) {
	l.info.Println(format(msg, args))
}

func (l *defaultLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.warn.Println(format(msg, args))
}

func (l *defaultLogger) Error(ctx context.Context, msg string, args ...any) {
	l.error.Println(format(msg, args))
}

func format(msg string, args []any) string {
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// NoopLogger is a logger that does nothing.
type NoopLogger struct{}

func (l *NoopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (l *NoopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (l *NoopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (l *NoopLogger) Error(ctx context.Context, msg string, args ...any) {}

// zapLogger adapts a zap logger to Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger returns a Logger writing through z.
func NewZapLogger(z *zap.Logger) Logger {
	return &zapLogger{s: z.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *zapLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.s.Debugf(msg, args...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, args ...any) {
	l.s.Infof(msg, args...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.s.Warnf(msg, args...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, args ...any) {
	l.s.Errorf(msg, args...)
}
