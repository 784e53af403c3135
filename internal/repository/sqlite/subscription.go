package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/tiktik/tiktik/internal/apperror"
	"github.com/tiktik/tiktik/internal/model"
)

// ToggleSubscription flips the (follower, channel) edge. The row change and
// the channel's subscriber_count adjustment commit together or not at all;
// a crash between them would leave the counter permanently wrong, which is
// exactly what the transaction exists to rule out. The UNIQUE constraint on
// (follower_id, channel_id) backs the toggle against concurrent inserts.
func (e *EngagementDB) ToggleSubscription(ctx context.Context, followerID, channelID string) (model.SubscribeAction, error) {
	if followerID == channelID {
		return "", apperror.ValidationFailed("channelId", "cannot subscribe to yourself")
	}

	var action model.SubscribeAction
	err := e.db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE id = ?`, channelID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("sqlite: checking channel %s: %w", channelID, err)
		}
		if exists == 0 {
			return apperror.NotFound("channel", channelID)
		}

		var subID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM subscriptions WHERE follower_id = ? AND channel_id = ?`,
			followerID, channelID,
		).Scan(&subID)

		switch {
		case err == sql.ErrNoRows:
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO subscriptions (id, follower_id, channel_id, created_at)
				 VALUES (?, ?, ?, ?)`,
				xid.New().String(), followerID, channelID, time.Now(),
			); err != nil {
				if isForeignKeyErr(err) {
					return apperror.NotFound("user", followerID)
				}
				return fmt.Errorf("sqlite: inserting subscription: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE users SET subscriber_count = subscriber_count + 1 WHERE id = ?`,
				channelID,
			); err != nil {
				return fmt.Errorf("sqlite: incrementing subscriber count: %w", err)
			}
			action = model.Subscribed

		case err != nil:
			return fmt.Errorf("sqlite: reading existing subscription: %w", err)

		default:
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM subscriptions WHERE id = ?`, subID,
			); err != nil {
				return fmt.Errorf("sqlite: deleting subscription: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE users SET subscriber_count = subscriber_count - 1 WHERE id = ?`,
				channelID,
			); err != nil {
				return fmt.Errorf("sqlite: decrementing subscriber count: %w", err)
			}
			action = model.Unsubscribed
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// ListSubscriptions returns every channel the user follows, joined with the
// channel's display name and avatar.
func (e *EngagementDB) ListSubscriptions(ctx context.Context, followerID string) ([]model.SubscriptionView, error) {
	rows, err := e.db.conn.QueryContext(ctx,
		`SELECT s.id, s.follower_id, s.channel_id, s.notification_enabled, s.created_at,
		        u.name AS channel_name, u.avatar AS channel_avatar
		 FROM subscriptions s
		 JOIN users u ON s.channel_id = u.id
		 WHERE s.follower_id = ?`, followerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]model.SubscriptionView, 0, 16)
	for rows.Next() {
		var s model.SubscriptionView
		if err := rows.Scan(&s.ID, &s.FollowerID, &s.ChannelID, &s.NotificationEnabled,
			&s.CreatedAt, &s.ChannelName, &s.ChannelAvatar); err != nil {
			return nil, fmt.Errorf("sqlite: scanning subscription row: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating subscriptions: %w", err)
	}
	return subs, nil
}
