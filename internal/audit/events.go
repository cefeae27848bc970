package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Sumit07M/bg-verification-project/internal/observability"
)

// Outcomes
const (
	OutcomeSuccess = "success"
	OutcomeDenied  = "denied"
)

// Actions
const (
	ActionRegister         = "auth.register"
	ActionLogin            = "auth.login"
	ActionSubmissionRead   = "submission.read"
	ActionSubmissionReview = "submission.review"
)

// Event captures an auditable action.
// Never put passwords, tokens or submission contents in Metadata.
type Event struct {
	Time     time.Time
	Actor    string
	Role     string
	Action   string
	Target   string
	Outcome  string
	Reason   string
	Metadata map[string]string
}

// Recorder persists audit events
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// LogRecorder writes events as structured log lines on the "audit" logger
type LogRecorder struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewLogRecorder creates a LogRecorder on top of logger
func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	return &LogRecorder{
		logger: logger.Named("audit"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Record logs e, denials at warn level
func (r *LogRecorder) Record(ctx context.Context, e Event) {
	if e.Time.IsZero() {
		e.Time = r.now()
	}

	fields := []zap.Field{
		zap.String("action", e.Action),
		zap.String("outcome", e.Outcome),
		zap.Time("at", e.Time),
	}
	if e.Actor != "" {
		fields = append(fields, zap.String("actor", e.Actor))
	}
	if e.Role != "" {
		fields = append(fields, zap.String("role", e.Role))
	}
	if e.Target != "" {
		fields = append(fields, zap.String("target", e.Target))
	}
	if e.Reason != "" {
		fields = append(fields, zap.String("reason", e.Reason))
	}
	for k, v := range e.Metadata {
		fields = append(fields, zap.String("meta."+k, v))
	}

	logger := observability.WithRequest(ctx, r.logger)
	if e.Outcome == OutcomeDenied {
		logger.Warn("audit event", fields...)
		return
	}
	logger.Info("audit event", fields...)
}
