package logger

import (
	"context"
)

// Record is a log line carrying metric fields (duration_ms, count, size, status).
// The context supplies the tracing fields.
//
//	logger.With(logger.Fields{logger.FieldCount: n}).Info(ctx, "Listed entries")
type Record struct {
	fields Fields
}

// With creates a new Record with the given metric fields.
func With(fields Fields) *Record {
	return &Record{fields: fields}
}

// With returns a Record with fields merged over the existing ones.
func (r *Record) With(fields Fields) *Record {
	merged := make(Fields, len(r.fields)+len(fields))
	for k, v := range r.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Record{fields: merged}
}

// WithDuration adds a duration_ms field.
func (r *Record) WithDuration(ms int64) *Record {
	return r.With(Fields{FieldDurationMs: ms})
}

// WithCount adds a count field.
func (r *Record) WithCount(count int) *Record {
	return r.With(Fields{FieldCount: count})
}

// WithSize adds a size field.
func (r *Record) WithSize(size int) *Record {
	return r.With(Fields{FieldSize: size})
}

func (r *Record) Debug(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).WithFields(r.fields).Debugf(format, args...)
}

func (r *Record) Info(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).WithFields(r.fields).Infof(format, args...)
}

func (r *Record) Warn(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).WithFields(r.fields).Warnf(format, args...)
}

func (r *Record) Error(ctx context.Context, format string, args ...interface{}) {
	FromContext(ctx).WithFields(r.fields).Errorf(format, args...)
}
