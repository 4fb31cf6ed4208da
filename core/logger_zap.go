package core

import "go.uber.org/zap"

// ZapLogger adapts a zap logger to the Logger interface.
// Fields become zap's loosely typed key/value pairs.
type ZapLogger struct {
	s *zap.SugaredLogger
}

var _ Logger = (*ZapLogger)(nil)

// NewZapLogger wraps l, or the global zap logger when l is nil, under the
// "jobpool" name.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.L()
	}
	return &ZapLogger{s: l.Sugar().Named("jobpool")}
}

// Named returns a child logger, e.g. one per worker.
func (l *ZapLogger) Named(name string) *ZapLogger {
	return &ZapLogger{s: l.s.Named(name)}
}

func (l *ZapLogger) Debug(msg string, fields ...Field) { l.s.Debugw(msg, keysAndValues(fields)...) }
func (l *ZapLogger) Info(msg string, fields ...Field)  { l.s.Infow(msg, keysAndValues(fields)...) }
func (l *ZapLogger) Warn(msg string, fields ...Field)  { l.s.Warnw(msg, keysAndValues(fields)...) }
func (l *ZapLogger) Error(msg string, fields ...Field) { l.s.Errorw(msg, keysAndValues(fields)...) }

func keysAndValues(fields []Field) []any {
	if len(fields) == 0 {
		return nil
	}
	kv := make([]any, 0, 2*len(fields))
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}
