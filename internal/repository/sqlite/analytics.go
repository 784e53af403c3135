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

// RecordView bumps the video's view counter and appends one analytics
// event, in one transaction. It never deduplicates: the caller decides what
// counts as a view (the client reports once per playback start). userID is
// empty for anonymous views.
func (e *EngagementDB) RecordView(ctx context.Context, videoID, userID string, watchTime int) error {
	return e.db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE videos SET views = views + 1 WHERE id = ?`, videoID)
		if err != nil {
			return fmt.Errorf("sqlite: incrementing views: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("video", videoID)
		}

		var user any
		if userID != "" {
			user = userID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO analytics (id, video_id, user_id, watch_time, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			xid.New().String(), videoID, user, watchTime, time.Now(),
		); err != nil {
			return fmt.Errorf("sqlite: appending analytics event: %w", err)
		}
		return nil
	})
}

// AnalyticsByVideo aggregates the append-only event log for one video:
// total views is the row count, unique viewers counts distinct signed-in
// users, watch time is summed over all events.
func (e *EngagementDB) AnalyticsByVideo(ctx context.Context, videoID string) (*model.AnalyticsSummary, error) {
	rows, err := e.db.conn.QueryContext(ctx,
		`SELECT id, video_id, user_id, session_id, watch_time, completed,
		        unique_visitor, device_type, location, created_at
		 FROM analytics WHERE video_id = ?
		 ORDER BY created_at ASC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing analytics: %w", err)
	}
	defer rows.Close()

	summary := &model.AnalyticsSummary{Events: make([]model.AnalyticsEvent, 0, 64)}
	viewers := make(map[string]struct{})
	for rows.Next() {
		var ev model.AnalyticsEvent
		var user sql.NullString
		if err := rows.Scan(&ev.ID, &ev.VideoID, &user, &ev.SessionID, &ev.WatchTime,
			&ev.Completed, &ev.UniqueVisitor, &ev.DeviceType, &ev.Location, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning analytics row: %w", err)
		}
		if user.Valid {
			ev.UserID = user.String
			viewers[user.String] = struct{}{}
		}
		summary.Events = append(summary.Events, ev)
		summary.TotalViews++
		summary.TotalWatchTime += ev.WatchTime
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating analytics: %w", err)
	}
	summary.UniqueViewers = len(viewers)
	return summary, nil
}
