// Package observability carries per-evaluation logging context.
package observability

import (
	"context"
	"crypto/rand"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type loggerContextKey struct{}

type evaluationIDContextKey struct{}

// ContextWithLogger attaches a non-nil logger to the context.
func ContextWithLogger(ctx context.Context, lg *slog.Logger) context.Context {
	if ctx == nil || lg == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, lg)
}

// LoggerFromContext returns the logger stored in the context or the default
// slog logger when none is present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if v := ctx.Value(loggerContextKey{}); v != nil {
		if lg, ok := v.(*slog.Logger); ok && lg != nil {
			return lg
		}
	}
	return slog.Default()
}

// ContextWithEvaluationID stores a non-empty evaluation id so that backend
// warnings can be correlated with the evaluation that triggered them.
func ContextWithEvaluationID(ctx context.Context, id string) context.Context {
	if ctx == nil || id == "" {
		return ctx
	}
	return context.WithValue(ctx, evaluationIDContextKey{}, id)
}

// EvaluationIDFromContext retrieves the evaluation id, or "" when none is present.
func EvaluationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(evaluationIDContextKey{}); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithEvaluation stores id and a logger carrying an evaluation_id attribute.
func WithEvaluation(ctx context.Context, base *slog.Logger, id string) context.Context {
	if base == nil {
		base = LoggerFromContext(ctx)
	}
	ctx = ContextWithEvaluationID(ctx, id)
	if id != "" {
		base = base.With(slog.String("evaluation_id", id))
	}
	return ContextWithLogger(ctx, base)
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewEvaluationID returns a ULID, so ids sort by creation time.
func NewEvaluationID() string {
	idMu.Lock()
	defer idMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), idEntropy)
	if err != nil {
		return time.Now().UTC().Format("20060102150405.000000000")
	}
	return id.String()
}
