package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// correlationKey is the context key used to bind request-scoped metadata.
type correlationKey struct{}

// RequestContext is the value bound into a context by WithCorrelationID.
type RequestContext struct {
	ID       string
	ToolName string
	StartedAt time.Time
}

var (
	structuredOnce sync.Once
	structured     *zap.Logger
)

// mcpSafe reports whether stdout must be kept clear of log output because a
// JSON-RPC transport owns it (the MCP_SERVER env var, per SPEC_FULL.md §1.1).
func mcpSafe() bool {
	v := os.Getenv("MCP_SERVER")
	return v == "1" || v == "true" || v == "TRUE" || v == "True"
}

// Structured returns the process-wide structured zap logger, building it on
// first use. In MCP-server mode all output is pinned to stderr so stdout
// remains reserved for the tool-server's line-delimited JSON-RPC frames.
func Structured() *zap.Logger {
	structuredOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		var core zapcore.Core
		encoder := zapcore.NewJSONEncoder(cfg.EncoderConfig)
		if mcpSafe() {
			core = zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapcore.DebugLevel)
		} else {
			lvl := zap.NewAtomicLevelAt(zapcore.InfoLevel)
			core = zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), lvl)
		}
		structured = zap.New(core)
	})
	return structured
}

// GenerateRequestID returns a collision-resistant, time-ordered request id
// of the form "req_<unixmillis>_<hex>".
func GenerateRequestID() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("req_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}

// WithCorrelationID returns a derived context carrying a request-scoped
// correlation id. Nested calls restore the outer binding once the derived
// context (and everything spawned from it) goes out of scope — this is
// implemented by context.Context value immutability itself, so scopes never
// leak across unrelated goroutines the way a goroutine-local would.
func WithCorrelationID(ctx context.Context, id string, toolName string) context.Context {
	if id == "" {
		id = GenerateRequestID()
	}
	return context.WithValue(ctx, correlationKey{}, &RequestContext{
		ID:        id,
		ToolName:  toolName,
		StartedAt: time.Now(),
	})
}

// CorrelationIDFromContext returns the bound correlation id, or "" if none
// is bound.
func CorrelationIDFromContext(ctx context.Context) string {
	if rc, ok := ctx.Value(correlationKey{}).(*RequestContext); ok {
		return rc.ID
	}
	return ""
}

// RequestContextFromContext returns the bound request context, or nil.
func RequestContextFromContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(correlationKey{}).(*RequestContext)
	return rc
}

// RunWithRequestContext runs fn inside a context carrying a fresh or
// supplied correlation id, guaranteeing the bound zap fields are attached to
// any logging fn performs and that no partial state survives a panic: the
// panic is logged and re-raised.
func RunWithRequestContext(ctx context.Context, id, toolName string, fn func(context.Context) error) (err error) {
	scoped := WithCorrelationID(ctx, id, toolName)
	defer func() {
		if r := recover(); r != nil {
			Structured().Error("panic during request",
				zap.String("request_id", CorrelationIDFromContext(scoped)),
				zap.Any("panic", r))
			panic(r)
		}
	}()
	return fn(scoped)
}

// WithRequestFields returns a zap logger pre-populated with the
// correlation id and tool name bound to ctx, suitable for per-call logging.
func WithRequestFields(ctx context.Context) *zap.Logger {
	rc := RequestContextFromContext(ctx)
	if rc == nil {
		return Structured()
	}
	return Structured().With(
		zap.String("request_id", rc.ID),
		zap.String("tool", rc.ToolName),
	)
}
