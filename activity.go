package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventLoginSuccess ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure ActivityEventType = "auth.login.failure"
	ActivityEventOTPVerified  ActivityEventType = "auth.otp.verified"
	ActivityEventLogout       ActivityEventType = "auth.logout"
)

// activityLabels maps the events that are persisted to their log label
var activityLabels = map[ActivityEventType]string{
	ActivityEventLoginSuccess: ActivityLogin,
	ActivityEventOTPVerified:  ActivityVerifyOTP,
}

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     int64
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// ActivityLogger persists activity labels to the logs table. Writes are
// scheduled on a Scheduler and failures only reach the logger.
type ActivityLogger struct {
	logs      ActivityLogs
	scheduler Scheduler
	now       Clock
	logger    Logger
}

var _ ActivitySink = (*ActivityLogger)(nil)

// NewActivityLogger creates an ActivityLogger writing to logs on scheduler
func NewActivityLogger(logs ActivityLogs, scheduler Scheduler) *ActivityLogger {
	return &ActivityLogger{
		logs:      logs,
		scheduler: scheduler,
		now:       time.Now,
		logger:    defLogger{},
	}
}

func (a *ActivityLogger) WithLogger(l Logger) *ActivityLogger {
	if l != nil {
		a.logger = l
	}
	return a
}

func (a *ActivityLogger) WithClock(now Clock) *ActivityLogger {
	if now != nil {
		a.now = now
	}
	return a
}

// Log appends an entry for userID with label, timestamped now
func (a *ActivityLogger) Log(ctx context.Context, userID int64, label string) error {
	return a.logs.Append(ctx, &ActivityLog{
		DateTime: a.now().UTC(),
		UserID:   userID,
		Activity: label,
	})
}

// Dispatch schedules Log without waiting for it. The timestamp is taken at
// dispatch time.
func (a *ActivityLogger) Dispatch(userID int64, label string) {
	entry := &ActivityLog{
		DateTime: a.now().UTC(),
		UserID:   userID,
		Activity: label,
	}

	ok := a.scheduler.Go("activity."+label, func(ctx context.Context) error {
		if err := a.logs.Append(ctx, entry); err != nil {
			a.logger.Error("activity log write failed", "user_id", userID, "activity", label, "error", err)
		}
		return nil
	})
	if !ok {
		a.logger.Error("activity log dropped", "user_id", userID, "activity", label)
	}
}

// Record implements ActivitySink. Events without a log label are ignored.
func (a *ActivityLogger) Record(_ context.Context, event ActivityEvent) error {
	label, ok := activityLabels[event.EventType]
	if !ok || event.UserID == 0 {
		return nil
	}
	a.Dispatch(event.UserID, label)
	return nil
}
