package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/crm-notifier/internal/metrics"
	"github.com/aliskhannn/crm-notifier/internal/model"
	"github.com/aliskhannn/crm-notifier/internal/queue"
)

//go:generate mockgen -source=service.go -destination=../../mocks/service/notification/mock.go -package=mocks

type emailSender interface {
	SendReminderToClient(r model.ClientReminder) error
	SendReminderToUser(r model.UserReminder) error
}

type pusher interface {
	SendToUser(userID int64, v any) error
}

type jobQueue interface {
	Enqueue(ctx context.Context, channel, jobType string, payload any) (uuid.UUID, error)
}

type cache interface {
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
	GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error)
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

var (
	ErrNoRecipients   = errors.New("reminder has no recipients")
	ErrDeliveryFailed = errors.New("reminder delivery failed")
	ErrUnknownPolicy  = errors.New("unknown notified policy")
)

// Recipient roles.
const (
	RoleClient = "client"
	RoleStaff  = "staff"
	RoleAdmin  = "admin"
)

const (
	deliveredMark = "sent"
	ledgerTTL     = 24 * time.Hour
	eventReminder = "reminder"
	telegramTime  = "Mon, Jan 2 15:04 MST"
)

// Policy decides when a reminder counts as notified.
type Policy string

const (
	// PolicyAttempted marks a reminder notified once every recipient was tried.
	PolicyAttempted Policy = "attempted"
	// PolicyDelivered marks a reminder notified only if every delivery succeeded.
	PolicyDelivered Policy = "delivered"
)

// ParsePolicy returns the policy named s, PolicyAttempted for "".
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyAttempted:
		return PolicyAttempted, nil
	case PolicyDelivered:
		return PolicyDelivered, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// DeliveryError is a failed delivery to one recipient of a reminder.
type DeliveryError struct {
	ReminderID int64
	Kind       model.ReminderKind
	Role       string
	Recipient  string
	Err        error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s reminder %d to %s %s: %v", e.Kind, e.ReminderID, e.Role, e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Report is the outcome of one dispatch.
type Report struct {
	ReminderID int64
	Kind       model.ReminderKind
	Attempted  int
	Delivered  int
	Skipped    int // already delivered by an earlier dispatch
	Failures   []*DeliveryError
}

// Config holds the dispatcher settings.
type Config struct {
	NotifiedWhen    Policy
	DefaultTimezone string
	Retry           retry.Strategy
}

// Service turns due reminders into notifications.
type Service struct {
	email    emailSender
	push     pusher   // optional
	queue    jobQueue // optional
	cache    cache    // optional
	policy   Policy
	fallback *time.Location
	strategy retry.Strategy
}

func NewService(email emailSender, push pusher, q jobQueue, c cache, cfg Config) (*Service, error) {
	policy, err := ParsePolicy(string(cfg.NotifiedWhen))
	if err != nil {
		return nil, err
	}

	tz := cfg.DefaultTimezone
	if tz == "" {
		tz = "UTC"
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load default timezone: %w", err)
	}

	return &Service{
		email:    email,
		push:     push,
		queue:    q,
		cache:    c,
		policy:   policy,
		fallback: loc,
		strategy: cfg.Retry,
	}, nil
}

type delivery struct {
	role    string
	contact *model.Contact
	send    func() error
}

// Dispatch notifies every recipient of r concurrently. Failed deliveries are
// collected in the report. Under PolicyDelivered any failure also makes
// Dispatch return ErrDeliveryFailed.
func (s *Service) Dispatch(ctx context.Context, r model.Reminder) (Report, error) {
	report := Report{ReminderID: r.ID, Kind: r.Kind}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	loc := s.location(r)
	deliveries := s.deliveries(ctx, r, loc)
	if len(deliveries) == 0 {
		return report, fmt.Errorf("%w: %s %d", ErrNoRecipients, r.Kind, r.ID)
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)

	for _, d := range deliveries {
		d := d
		g.Go(func() error {
			key := ledgerKey(r, d)

			if s.alreadyDelivered(ctx, key) {
				mu.Lock()
				report.Skipped++
				mu.Unlock()
				return nil
			}

			// a dispatch past its deadline starts no new sends
			err := ctx.Err()
			if err == nil {
				err = d.send()
			}

			if err == nil {
				s.markDelivered(context.WithoutCancel(ctx), key)
			} else {
				metrics.DeliveryFailures.WithLabelValues(d.role).Inc()
				zlog.Logger.Error().
					Err(err).
					Int64("reminder_id", r.ID).
					Str("kind", string(r.Kind)).
					Str("role", d.role).
					Int64("recipient_id", d.contact.ID).
					Msg("reminder delivery failed")
			}

			mu.Lock()
			defer mu.Unlock()

			report.Attempted++
			if err != nil {
				report.Failures = append(report.Failures, &DeliveryError{
					ReminderID: r.ID,
					Kind:       r.Kind,
					Role:       d.role,
					Recipient:  d.contact.Email,
					Err:        err,
				})
				return nil
			}

			report.Delivered++
			return nil
		})
	}

	_ = g.Wait()

	if s.policy == PolicyDelivered && len(report.Failures) > 0 {
		return report, fmt.Errorf("%w: %d of %d deliveries failed", ErrDeliveryFailed, len(report.Failures), report.Attempted)
	}

	return report, nil
}

func (s *Service) location(r model.Reminder) *time.Location {
	if r.UserTimezone == "" {
		return s.fallback
	}

	loc, err := time.LoadLocation(r.UserTimezone)
	if err != nil {
		zlog.Logger.Warn().
			Err(err).
			Int64("reminder_id", r.ID).
			Str("timezone", r.UserTimezone).
			Msg("invalid reminder timezone, using default")
		return s.fallback
	}

	return loc
}

// deliveries resolves the recipients of r: a meeting goes to the client and
// to the admin or the assigned staff member, a call to the staff member only.
func (s *Service) deliveries(ctx context.Context, r model.Reminder, loc *time.Location) []delivery {
	var out []delivery

	if r.Kind == model.ReminderMeeting && r.Client != nil {
		client := r.Client
		out = append(out, delivery{
			role:    RoleClient,
			contact: client,
			send: func() error {
				return s.email.SendReminderToClient(model.ClientReminder{
					ReminderID:   r.ID,
					ClientEmail:  client.Email,
					ClientName:   client.Name,
					Time:         r.Time,
					UserTimezone: loc.String(),
					Type:         r.Kind,
				})
			},
		})
	}

	role, user := RoleStaff, r.AssignedTo
	if r.Kind == model.ReminderMeeting && r.IsAdmin {
		role, user = RoleAdmin, r.Admin
	}

	if user != nil {
		out = append(out, delivery{
			role:    role,
			contact: user,
			send: func() error {
				return s.notifyUser(ctx, r, user, loc)
			},
		})
	}

	return out
}

// notifyUser emails a staff member or admin. The in-app push and the
// Telegram message are best effort and never fail the delivery.
func (s *Service) notifyUser(ctx context.Context, r model.Reminder, user *model.Contact, loc *time.Location) error {
	err := s.email.SendReminderToUser(model.UserReminder{
		ReminderID:     r.ID,
		UserID:         user.ID,
		UserEmail:      user.Email,
		UserName:       user.Name,
		TelegramChatID: user.TelegramChatID,
		Time:           r.Time,
		UserTimezone:   loc.String(),
		Type:           r.Kind,
		ClientLeadID:   r.ClientLeadID,
		Reason:         r.Reason,
	})

	if s.push != nil {
		event := model.ReminderEvent{
			Type:         eventReminder,
			ReminderID:   r.ID,
			Kind:         r.Kind,
			Time:         r.Time,
			Timezone:     loc.String(),
			Reason:       r.Reason,
			ClientLeadID: r.ClientLeadID,
		}
		if pushErr := s.push.SendToUser(user.ID, event); pushErr != nil {
			zlog.Logger.Warn().Err(pushErr).Int64("reminder_id", r.ID).Int64("user_id", user.ID).Msg("failed to push reminder")
		}
	}

	if s.queue != nil && user.TelegramChatID != "" {
		payload := model.MessagePayload{ChatID: user.TelegramChatID, Text: telegramText(r, loc)}
		if _, qErr := s.queue.Enqueue(ctx, queue.TelegramCronQueue, model.JobSendMessage, payload); qErr != nil {
			zlog.Logger.Warn().Err(qErr).Int64("reminder_id", r.ID).Int64("user_id", user.ID).Msg("failed to enqueue telegram reminder")
		}
	}

	return err
}

func telegramText(r model.Reminder, loc *time.Location) string {
	noun := "Meeting"
	if r.Kind == model.ReminderCall {
		noun = "Call"
	}

	text := fmt.Sprintf("%s at %s", noun, r.Time.In(loc).Format(telegramTime))
	if r.Reason != "" {
		text += ": " + r.Reason
	}
	if r.ClientLeadID != nil {
		text += fmt.Sprintf(" (lead #%d)", *r.ClientLeadID)
	}

	return text
}

func ledgerKey(r model.Reminder, d delivery) string {
	return fmt.Sprintf("reminder:%s:%d:%s:%d", r.Kind, r.ID, d.role, d.contact.ID)
}

// alreadyDelivered reports whether an earlier dispatch of the same reminder
// reached this recipient. Cache errors count as not delivered.
func (s *Service) alreadyDelivered(ctx context.Context, key string) bool {
	if s.cache == nil {
		return false
	}

	v, err := s.cache.GetWithRetry(ctx, s.strategy, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zlog.Logger.Error().Err(err).Str("key", key).Msg("failed to read delivery ledger")
		}
		return false
	}

	return v == deliveredMark
}

func (s *Service) markDelivered(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.SetWithRetry(ctx, s.strategy, key, deliveredMark); err != nil {
		zlog.Logger.Error().Err(err).Str("key", key).Msg("failed to write delivery ledger")
		return
	}

	if err := s.cache.Expire(ctx, key, ledgerTTL).Err(); err != nil {
		zlog.Logger.Error().Err(err).Str("key", key).Msg("failed to expire delivery ledger")
	}
}
