// Package logger provides a context-carrying structured logging facade
// around logrus, so every log line picks up the request id and any fields
// attached earlier in the call chain without threading a logger value
// through every signature.
package logger

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const (
	fieldsKey    ctxKey = "logger_fields"
	requestIDKey ctxKey = "request_id"
)

var base = logrus.New()

func init() {
	base.SetFormatter(&logrus.JSONFormatter{})
}

// SetOutput configures the underlying logrus output, used by main() for
// non-JSON console logging during local development.
func SetOutput(formatter logrus.Formatter) {
	base.SetFormatter(formatter)
}

// WithRequestID returns a context carrying the given request id, surfaced
// as a field on every subsequent log line derived from it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return WithField(ctx, "request_id", requestID)
}

// WithField attaches a field to the context's logger state.
func WithField(ctx context.Context, key string, value interface{}) context.Context {
	fields := fieldsFromContext(ctx)
	next := make(logrus.Fields, len(fields)+1)
	for k, v := range fields {
		next[k] = v
	}
	next[key] = value
	return context.WithValue(ctx, fieldsKey, next)
}

// CloneContext detaches logger fields from a request context so they survive
// into a new context (e.g. a background goroutine) whose cancellation is not
// tied to the original request.
func CloneContext(ctx context.Context) context.Context {
	return context.WithValue(context.Background(), fieldsKey, fieldsFromContext(ctx))
}

func fieldsFromContext(ctx context.Context) logrus.Fields {
	if ctx == nil {
		return logrus.Fields{}
	}
	if v, ok := ctx.Value(fieldsKey).(logrus.Fields); ok {
		return v
	}
	return logrus.Fields{}
}

// GetLogger returns a logrus entry carrying the context's accumulated fields.
func GetLogger(ctx context.Context) *logrus.Entry {
	return base.WithFields(fieldsFromContext(ctx))
}

// kvEntry attaches alternating key/value pairs (e.g. "error", err) to a log
// line, the way the teacher's handlers call logger.Error(ctx, msg, "k", v).
func kvEntry(ctx context.Context, kv []interface{}) *logrus.Entry {
	entry := GetLogger(ctx)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		entry = entry.WithField(key, kv[i+1])
	}
	return entry
}

func Info(ctx context.Context, msg string, kv ...interface{})  { kvEntry(ctx, kv).Info(msg) }
func Warn(ctx context.Context, msg string, kv ...interface{})  { kvEntry(ctx, kv).Warn(msg) }
func Error(ctx context.Context, msg string, kv ...interface{}) { kvEntry(ctx, kv).Error(msg) }
func Debug(ctx context.Context, msg string, kv ...interface{}) { kvEntry(ctx, kv).Debug(msg) }

func Infof(ctx context.Context, format string, args ...interface{})  { GetLogger(ctx).Infof(format, args...) }
func Warnf(ctx context.Context, format string, args ...interface{})  { GetLogger(ctx).Warnf(format, args...) }
func Errorf(ctx context.Context, format string, args ...interface{}) { GetLogger(ctx).Errorf(format, args...) }
func Debugf(ctx context.Context, format string, args ...interface{}) { GetLogger(ctx).Debugf(format, args...) }
