package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/banco/internal/account"
	"github.com/congo-pay/banco/internal/logging"
)

const defaultSinkTimeout = 2 * time.Second

// Auditor wraps operations so that every invocation produces one Record.
type Auditor struct {
	sink    Sink
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration
}

// Option customizes an Auditor.
type Option func(*Auditor)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Auditor) { a.now = now }
}

// WithSinkTimeout bounds the time spent in a single sink append.
func WithSinkTimeout(d time.Duration) Option {
	return func(a *Auditor) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// New constructs an Auditor writing to sink. A nil logger discards diagnostics.
func New(sink Sink, logger *slog.Logger, opts ...Option) *Auditor {
	if logger == nil {
		logger = logging.Discard()
	}
	a := &Auditor{sink: sink, logger: logger, now: time.Now, timeout: defaultSinkTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Intercept satisfies account.Interceptor. The result of call is returned
// unchanged whatever happens to the record.
func (a *Auditor) Intercept(op string, args []any, call func() account.Result) account.Result {
	return a.InterceptContext(context.Background(), op, args, call)
}

// InterceptContext is Intercept for callers holding a request context. The
// context only annotates diagnostics; cancelling it does not drop the record.
func (a *Auditor) InterceptContext(ctx context.Context, op string, args []any, call func() account.Result) account.Result {
	if a == nil {
		return call()
	}
	started := a.now()
	res := call()
	a.emit(ctx, Record{Timestamp: started, Operation: op, Args: RenderArgs(args), Success: res.OK, Message: res.Message})
	return res
}

// Call runs fn under a. Success is err == nil and the message is the rendered
// value or the error text.
func Call[T any](ctx context.Context, a *Auditor, op string, args []any, fn func() (T, error)) (T, error) {
	if a == nil {
		return fn()
	}
	started := a.now()
	value, err := fn()
	rec := Record{Timestamp: started, Operation: op, Args: RenderArgs(args), Success: err == nil}
	if err != nil {
		rec.Message = err.Error()
	} else {
		rec.Message = renderArg(value)
	}
	a.emit(ctx, rec)
	return value, err
}

func (a *Auditor) emit(ctx context.Context, rec Record) {
	if a.sink == nil {
		return
	}
	rec.ID = uuid.NewString()
	logger := logging.FromContext(ctx, a.logger)

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("audit sink panicked", slog.String("operation", rec.Operation), slog.Any("panic", r))
		}
	}()

	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()
	if err := a.sink.Append(sinkCtx, rec); err != nil {
		logger.Warn("failed to record audit entry", slog.String("operation", rec.Operation), slog.String("error", err.Error()))
	}
}

// RenderArgs formats call arguments the way they appear in the log. Strings
// are Go-quoted; any other value is quoted too when its text could be
// mistaken for log structure.
func RenderArgs(args []any) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		out = append(out, renderArg(arg))
	}
	return out
}

func renderArg(v any) string {
	var text string
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return strconv.Quote(x)
	case fmt.Stringer:
		text = x.String()
	default:
		text = fmt.Sprintf("%v", x)
	}
	if text == "" || strings.ContainsAny(text, "\r\n\"") || strings.Contains(text, ", ") {
		return strconv.Quote(text)
	}
	return text
}
