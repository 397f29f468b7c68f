package reminder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/crm-notifier/internal/model"
)

var (
	ErrClaimLost   = errors.New("reminder claim lost")
	ErrUnknownKind = errors.New("unknown reminder kind")
)

const (
	meetingTable = "meeting_reminders"
	callTable    = "call_reminders"
)

// claimMeetingQuery claims due meeting reminders for one owner and resolves
// their recipients. Rows locked by a concurrent claimer are skipped.
const claimMeetingQuery = `
		WITH claimed AS (
		    UPDATE meeting_reminders r
		    SET claimed_by = $3, claimed_at = $4
		    WHERE r.id IN (
		        SELECT id FROM meeting_reminders
		        WHERE notified = false
		          AND time BETWEEN $1 AND $2
		          AND (claimed_by IS NULL OR claimed_at < $5)
		        FOR UPDATE SKIP LOCKED
		    )
		    RETURNING r.id, r.time, r.reminder_reason, r.is_admin, r.user_timezone, r.client_lead_id, r.admin_id
		)
		SELECT c.id, c.time, c.reminder_reason, c.is_admin, c.user_timezone, c.client_lead_id,
		       cl.id, cl.name, cl.email,
		       u.id, u.name, u.email, u.telegram_chat_id,
		       a.id, a.name, a.email, a.telegram_chat_id
		FROM claimed c
		LEFT JOIN client_leads l ON l.id = c.client_lead_id
		LEFT JOIN clients cl ON cl.id = l.client_id
		LEFT JOIN users u ON u.id = l.assigned_to_id
		LEFT JOIN users a ON a.id = c.admin_id
		ORDER BY c.time;
    `

const claimCallQuery = `
		WITH claimed AS (
		    UPDATE call_reminders r
		    SET claimed_by = $3, claimed_at = $4
		    WHERE r.id IN (
		        SELECT id FROM call_reminders
		        WHERE notified = false
		          AND time BETWEEN $1 AND $2
		          AND (claimed_by IS NULL OR claimed_at < $5)
		        FOR UPDATE SKIP LOCKED
		    )
		    RETURNING r.id, r.time, r.reminder_reason, false AS is_admin, r.user_timezone, r.client_lead_id, NULL::bigint AS admin_id
		)
		SELECT c.id, c.time, c.reminder_reason, c.is_admin, c.user_timezone, c.client_lead_id,
		       cl.id, cl.name, cl.email,
		       u.id, u.name, u.email, u.telegram_chat_id,
		       a.id, a.name, a.email, a.telegram_chat_id
		FROM claimed c
		LEFT JOIN client_leads l ON l.id = c.client_lead_id
		LEFT JOIN clients cl ON cl.id = l.client_id
		LEFT JOIN users u ON u.id = l.assigned_to_id
		LEFT JOIN users a ON a.id = c.admin_id
		ORDER BY c.time;
    `

const markNotifiedQuery = `
		UPDATE %s
		SET notified = true, claimed_by = NULL, claimed_at = NULL
		WHERE id = $1 AND notified = false AND claimed_by = $2;
    `

const releaseQuery = `
		UPDATE %s
		SET claimed_by = NULL, claimed_at = NULL
		WHERE id = $1 AND notified = false AND claimed_by = $2;
    `

// Claim describes one claim of due reminders.
type Claim struct {
	From        time.Time // window start, inclusive
	To          time.Time // window end, inclusive
	Owner       string    // claimer identity, unique per tick
	At          time.Time // stored as claimed_at
	StaleBefore time.Time // claims older than this are taken over
}

// Repository provides methods to claim and flip reminders.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new reminder repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

func table(kind model.ReminderKind) (string, error) {
	switch kind {
	case model.ReminderMeeting:
		return meetingTable, nil
	case model.ReminderCall:
		return callTable, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

func claimQuery(kind model.ReminderKind) (string, error) {
	switch kind {
	case model.ReminderMeeting:
		return claimMeetingQuery, nil
	case model.ReminderCall:
		return claimCallQuery, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

// ClaimDue atomically claims not yet notified reminders of kind whose time
// falls within [c.From, c.To] and returns them with resolved recipients.
// Only rows claimed by this call are returned.
func (r *Repository) ClaimDue(ctx context.Context, kind model.ReminderKind, c Claim) ([]model.Reminder, error) {
	query, err := claimQuery(kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Master.QueryContext(ctx, query, c.From, c.To, c.Owner, c.At, c.StaleBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to claim %s reminders: %w", kind, err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s reminder: %w", kind, err)
		}

		rem.Kind = kind
		reminders = append(reminders, rem)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s reminders: %w", kind, err)
	}

	return reminders, nil
}

// MarkNotified flips notified to true for a reminder still claimed by owner.
func (r *Repository) MarkNotified(ctx context.Context, kind model.ReminderKind, id int64, owner string) error {
	return r.execClaimed(ctx, markNotifiedQuery, kind, id, owner)
}

// Release gives up the claim of owner so a later tick can retry the reminder.
func (r *Repository) Release(ctx context.Context, kind model.ReminderKind, id int64, owner string) error {
	return r.execClaimed(ctx, releaseQuery, kind, id, owner)
}

func (r *Repository) execClaimed(ctx context.Context, query string, kind model.ReminderKind, id int64, owner string) error {
	t, err := table(kind)
	if err != nil {
		return err
	}

	res, err := r.db.Master.ExecContext(ctx, fmt.Sprintf(query, t), id, owner)
	if err != nil {
		return fmt.Errorf("failed to update %s reminder %d: %w", kind, id, err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrClaimLost
	}

	return nil
}

func scanReminder(rows *sql.Rows) (model.Reminder, error) {
	var (
		rem      model.Reminder
		reason   sql.NullString
		timezone sql.NullString
		leadID   sql.NullInt64
		client   nullContact
		assigned nullContact
		admin    nullContact
	)

	err := rows.Scan(
		&rem.ID, &rem.Time, &reason, &rem.IsAdmin, &timezone, &leadID,
		&client.id, &client.name, &client.email,
		&assigned.id, &assigned.name, &assigned.email, &assigned.chatID,
		&admin.id, &admin.name, &admin.email, &admin.chatID,
	)
	if err != nil {
		return model.Reminder{}, err
	}

	rem.Reason = reason.String
	rem.UserTimezone = timezone.String
	if leadID.Valid {
		rem.ClientLeadID = &leadID.Int64
	}

	rem.Client = client.contact()
	rem.AssignedTo = assigned.contact()
	rem.Admin = admin.contact()

	return rem, nil
}

type nullContact struct {
	id     sql.NullInt64
	name   sql.NullString
	email  sql.NullString
	chatID sql.NullString
}

func (n nullContact) contact() *model.Contact {
	if !n.id.Valid {
		return nil
	}

	return &model.Contact{
		ID:             n.id.Int64,
		Name:           n.name.String,
		Email:          n.email.String,
		TelegramChatID: n.chatID.String,
	}
}
