package logging

import (
	"context"
	"log/slog"
)

// redactingHandler wraps another slog.Handler. It redacts string attributes
// and adds the request ID carried by the context.
type redactingHandler struct {
	next     slog.Handler
	redactor *Redactor
}

// NewRedactingHandler wraps next so that every record passes through r.
func NewRedactingHandler(next slog.Handler, r *Redactor) slog.Handler {
	if r == nil {
		r = NewRedactor()
	}
	return &redactingHandler{next: next, redactor: r}
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, h.redactor.RedactString(rec.Message), rec.PC)

	if id := GetRequestID(ctx); id != "" {
		out.AddAttrs(slog.String("request_id", id))
	}

	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})

	return h.next.Handle(ctx, out)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redact(a)
	}
	return &redactingHandler{next: h.next.WithAttrs(redacted), redactor: h.redactor}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{next: h.next.WithGroup(name), redactor: h.redactor}
}

func (h *redactingHandler) redact(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		redacted := make([]any, len(group))
		for i, ga := range group {
			redacted[i] = h.redact(ga)
		}
		return slog.Group(a.Key, redacted...)

	case slog.KindString:
		if h.redactor.isSensitiveKey(a.Key) {
			return slog.String(a.Key, h.redactor.redactValue(v.String()))
		}
		return slog.String(a.Key, h.redactor.RedactString(v.String()))

	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.String(a.Key, h.redactor.RedactString(err.Error()))
		}
		if h.redactor.isSensitiveKey(a.Key) {
			return slog.String(a.Key, "***")
		}
		return slog.Attr{Key: a.Key, Value: v}

	default:
		return slog.Attr{Key: a.Key, Value: v}
	}
}
