// Package logger builds the service's slog logger and carries a
// request-scoped copy through context.Context.
//
//	log := logger.FromCtx(c.UserContext())
//	log.Info("payment processed", "payment_id", p.ID)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey struct{}

// New returns a JSON logger in production and a text logger otherwise.
func New(production bool) *slog.Logger {
	return NewWithWriter(os.Stdout, production)
}

func NewWithWriter(w io.Writer, production bool) *slog.Logger {
	if production {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Inject stores log in ctx.
func Inject(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromCtx returns the logger stored by Inject, or slog.Default.
func FromCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return slog.Default()
}
