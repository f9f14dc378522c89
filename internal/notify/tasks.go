package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-jewelry/internal/obs"
	"github.com/noah-isme/backend-jewelry/internal/tenant"
)

// TypeMaturityReminder is the asynq task type for scheme maturity reminders.
const TypeMaturityReminder = "reminder:maturity"

// QueueReminders is the asynq queue reminders are routed to.
const QueueReminders = "reminders"

// MaturityReminderPayload is the task body. Amounts travel as strings so no
// precision is lost in transit.
type MaturityReminderPayload struct {
	TenantID       string `json:"tenant_id"`
	EnrollmentID   string `json:"enrollment_id"`
	CustomerName   string `json:"customer_name"`
	CustomerPhone  string `json:"customer_phone"`
	SchemeName     string `json:"scheme_name"`
	MaturityDate   string `json:"maturity_date"`
	ExpectedPayout string `json:"expected_payout"`
}

// TaskID is unique per enrollment and run day, so a second scheduler run on
// the same day cannot queue a duplicate reminder.
func (p MaturityReminderPayload) TaskID(day time.Time) string {
	return fmt.Sprintf("maturity:%s:%s:%s", p.TenantID, p.EnrollmentID, day.UTC().Format("20060102"))
}

// NewMaturityReminderTask builds the task and its enqueue options.
func NewMaturityReminderTask(p MaturityReminderPayload, day time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeMaturityReminder, data,
		asynq.TaskID(p.TaskID(day)),
		asynq.Queue(QueueReminders),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.Retention(36*time.Hour),
	), nil
}

// Enqueuer is the subset of *asynq.Client used to publish tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueueMaturityReminder publishes a reminder. It reports false without an
// error when the same reminder is already queued for day.
func EnqueueMaturityReminder(ctx context.Context, q Enqueuer, p MaturityReminderPayload, day time.Time) (bool, error) {
	task, err := NewMaturityReminderTask(p, day)
	if err != nil {
		return false, err
	}
	if _, err := q.EnqueueContext(ctx, task); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type replayGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// ReminderHandler sends maturity reminders picked up by the worker.
type ReminderHandler struct {
	Messenger Messenger
	Template  string
	Language  string
	Replay    replayGuard
	Logger    zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h ReminderHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p MaturityReminderPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		obs.CountReminder("invalid")
		return fmt.Errorf("decode reminder payload: %w: %w", err, asynq.SkipRetry)
	}
	ctx = tenant.With(ctx, p.TenantID)
	logger := h.Logger.With().Str("tenant_id", p.TenantID).Str("enrollment_id", p.EnrollmentID).Logger()

	key := p.TenantID + ":" + p.EnrollmentID + ":" + p.MaturityDate
	if h.Replay != nil {
		ok, err := h.Replay.Acquire(ctx, key)
		if err != nil {
			return fmt.Errorf("reminder replay guard: %w", err)
		}
		if !ok {
			obs.CountReminder("duplicate")
			logger.Info().Msg("maturity_reminder_already_sent")
			return nil
		}
	}

	id, err := h.Messenger.SendTemplate(ctx, TemplateMessage{
		To:       p.CustomerPhone,
		Template: h.Template,
		Language: h.Language,
		Params:   []string{p.CustomerName, p.SchemeName, p.MaturityDate, p.ExpectedPayout},
	})
	if err != nil {
		if h.Replay != nil {
			_ = h.Replay.Release(context.WithoutCancel(ctx), key)
		}
		if errors.Is(err, ErrRejected) {
			obs.CountReminder("rejected")
			logger.Warn().Err(err).Msg("maturity_reminder_rejected")
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		obs.CountReminder("failed")
		logger.Error().Err(err).Msg("maturity_reminder_failed")
		return err
	}
	obs.CountReminder("sent")
	logger.Info().Str("message_id", id).Msg("maturity_reminder_sent")
	return nil
}
