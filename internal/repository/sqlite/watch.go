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

// ToggleWatchLater flips the existence of the (user, video) watch-later
// row. No counters are involved; the UNIQUE constraint keeps the pair a
// singleton under concurrent toggles.
func (e *EngagementDB) ToggleWatchLater(ctx context.Context, userID, videoID string) (model.ToggleAction, error) {
	var action model.ToggleAction
	err := e.db.withTx(ctx, func(tx *sql.Tx) error {
		var rowID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM watch_later WHERE user_id = ? AND video_id = ?`,
			userID, videoID,
		).Scan(&rowID)

		switch {
		case err == sql.ErrNoRows:
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO watch_later (id, user_id, video_id, created_at)
				 VALUES (?, ?, ?, ?)`,
				xid.New().String(), userID, videoID, time.Now(),
			); err != nil {
				if isForeignKeyErr(err) {
					return apperror.NotFound("video", videoID)
				}
				return fmt.Errorf("sqlite: inserting watch-later row: %w", err)
			}
			action = model.ToggleAdded

		case err != nil:
			return fmt.Errorf("sqlite: reading watch-later row: %w", err)

		default:
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM watch_later WHERE id = ?`, rowID,
			); err != nil {
				return fmt.Errorf("sqlite: deleting watch-later row: %w", err)
			}
			action = model.ToggleRemoved
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// WatchLaterVideos lists the user's saved videos, newest-first.
func (e *EngagementDB) WatchLaterVideos(ctx context.Context, userID string) ([]model.VideoView, error) {
	rows, err := e.db.conn.QueryContext(ctx, viewSelect+`
		WHERE v.id IN (SELECT video_id FROM watch_later WHERE user_id = ?)
		ORDER BY v.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing watch-later videos: %w", err)
	}
	return collectVideoViews(rows, 16)
}

// UpsertWatchHistory records how far the user got through a video. One row
// per (user, video): the first report inserts, every later report
// overwrites watch_time and bumps updated_at. Last write wins — there is no
// accumulation. The single ON CONFLICT statement makes concurrent reports
// race-free.
func (e *EngagementDB) UpsertWatchHistory(ctx context.Context, userID, videoID string, watchTime int) error {
	now := time.Now()
	_, err := e.db.conn.ExecContext(ctx,
		`INSERT INTO watch_history (id, user_id, video_id, watch_time, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, video_id) DO UPDATE SET
		     watch_time = excluded.watch_time,
		     updated_at = excluded.updated_at`,
		xid.New().String(), userID, videoID, watchTime, now, now,
	)
	if err != nil {
		if isForeignKeyErr(err) {
			return apperror.NotFound("video", videoID)
		}
		return fmt.Errorf("sqlite: upserting watch history: %w", err)
	}
	return nil
}

// WatchHistoryVideos lists the user's watched videos with their progress,
// most recently watched first.
func (e *EngagementDB) WatchHistoryVideos(ctx context.Context, userID string) ([]model.HistoryVideoView, error) {
	rows, err := e.db.conn.QueryContext(ctx, `
		SELECT v.id, v.user_id, v.title, v.description, v.video_path, v.video_url,
		       v.status, v.duration, v.views, v.likes_count, v.dislikes_count,
		       v.category, v.tags, v.privacy, v.created_at, v.published_at, v.updated_at,
		       u.name AS channel, u.avatar,
		       (SELECT COUNT(*) FROM likes WHERE video_id = v.id AND type = 'like') AS likes,
		       (SELECT COUNT(*) FROM likes WHERE video_id = v.id AND type = 'dislike') AS dislikes,
		       wh.watch_time, wh.updated_at AS last_watched
		FROM videos v
		JOIN users u ON v.user_id = u.id
		JOIN watch_history wh ON v.id = wh.video_id
		WHERE wh.user_id = ?
		ORDER BY wh.updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing watch history: %w", err)
	}
	defer rows.Close()

	videos := make([]model.HistoryVideoView, 0, 16)
	for rows.Next() {
		var h model.HistoryVideoView
		var publishedAt sql.NullTime
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.Title, &h.Description, &h.VideoPath, &h.VideoURL,
			&h.Status, &h.Duration, &h.Views, &h.LikesCount, &h.DislikesCount,
			&h.Category, &h.Tags, &h.Privacy, &h.CreatedAt, &publishedAt, &h.UpdatedAt,
			&h.Channel, &h.Avatar, &h.Likes, &h.Dislikes,
			&h.WatchTime, &h.LastWatched,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning watch-history row: %w", err)
		}
		if publishedAt.Valid {
			h.PublishedAt = &publishedAt.Time
		}
		videos = append(videos, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating watch history: %w", err)
	}
	return videos, nil
}
