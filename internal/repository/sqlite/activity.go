package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/tiktik/tiktik/internal/apperror"
	"github.com/tiktik/tiktik/internal/model"
	"github.com/tiktik/tiktik/internal/repository"
)

var _ repository.ActivityRepository = (*ActivityDB)(nil)

func (r *ActivityDB) CreateNotification(ctx context.Context, n *model.Notification) error {
	n.ID = xid.New().String()
	n.CreatedAt = time.Now().UTC()

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, link, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Link, n.CreatedAt)
	if err != nil {
		if isForeignKeyErr(err) {
			return apperror.NotFound("user", n.UserID)
		}
		return fmt.Errorf("sqlite: creating notification: %w", err)
	}
	return nil
}

func (r *ActivityDB) ListNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, user_id, type, title, message, link, is_read, created_at
		 FROM notifications
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT 50`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]model.Notification, 0, 16)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notifications: %w", err)
	}
	return notifications, nil
}

func (r *ActivityDB) MarkNotificationRead(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: marking notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking notification update: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("notification", id)
	}
	return nil
}

func (r *ActivityDB) CreateReport(ctx context.Context, report *model.Report) error {
	report.ID = xid.New().String()
	report.Status = "pending"
	report.CreatedAt = time.Now().UTC()

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO reports (id, reporter_id, video_id, comment_id, reason, description, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, nullIfEmpty(report.ReporterID), nullIfEmpty(report.VideoID),
		nullIfEmpty(report.CommentID), report.Reason, report.Description,
		report.Status, report.CreatedAt)
	if err != nil {
		if isForeignKeyErr(err) {
			return apperror.NotFound("report target", report.VideoID+report.CommentID)
		}
		return fmt.Errorf("sqlite: creating report: %w", err)
	}
	return nil
}

func (r *ActivityDB) RevenueByUser(ctx context.Context, userID string) ([]model.Revenue, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, user_id, video_id, amount, source, transaction_id, status, created_at
		 FROM revenue
		 WHERE user_id = ?
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing revenue: %w", err)
	}
	defer rows.Close()

	entries := make([]model.Revenue, 0, 16)
	for rows.Next() {
		var entry model.Revenue
		var videoID sql.NullString
		if err := rows.Scan(&entry.ID, &entry.UserID, &videoID, &entry.Amount,
			&entry.Source, &entry.TransactionID, &entry.Status, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning revenue row: %w", err)
		}
		entry.VideoID = videoID.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating revenue: %w", err)
	}
	return entries, nil
}

func (r *ActivityDB) MembershipsByUser(ctx context.Context, userID string) ([]model.Membership, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, user_id, channel_id, tier, amount, status, started_at, expires_at
		 FROM memberships
		 WHERE user_id = ?
		 ORDER BY started_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing memberships: %w", err)
	}
	defer rows.Close()

	memberships := make([]model.Membership, 0, 8)
	for rows.Next() {
		var m model.Membership
		var expiresAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.UserID, &m.ChannelID, &m.Tier, &m.Amount,
			&m.Status, &m.StartedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning membership row: %w", err)
		}
		if expiresAt.Valid {
			m.ExpiresAt = &expiresAt.Time
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating memberships: %w", err)
	}
	return memberships, nil
}

// nullIfEmpty maps "" to NULL for optional foreign key columns.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
