package notification

import (
    "context"
    "log/slog"
    "sync"

    "github.com/congo-pay/banco/internal/logging"
)

const (
    // KindTransactionCompleted indicates a deposit or withdrawal went through.
    KindTransactionCompleted = "transaction_completed"
)

// Message describes a notification payload.
type Message struct {
    Kind        string
    Destination string
    Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
    Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
    logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
    return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(ctx context.Context, message Message) error {
    if n == nil || n.logger == nil {
        return nil
    }
    logging.FromContext(ctx, n.logger).Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
    return nil
}

// Recorder keeps every message in memory.
type Recorder struct {
    mu       sync.Mutex
    messages []Message
}

// Send stores the message.
func (r *Recorder) Send(_ context.Context, message Message) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.messages = append(r.messages, message)
    return nil
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
    r.mu.Lock()
    defer r.mu.Unlock()
    return append([]Message(nil), r.messages...)
}
