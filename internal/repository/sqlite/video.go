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

// compile-time check that *DB implements repository.VideoRepository
var _ repository.VideoRepository = (*VideoDB)(nil)

// viewSelect is the shared projection for every video read: the row joined
// with the uploader's name/avatar, plus like/dislike counts computed live
// over the likes table. The stored likes_count/dislikes_count columns come
// along too but are advisory; the live counts are what responses carry.
const viewSelect = `
	SELECT v.id, v.user_id, v.title, v.description, v.video_path, v.video_url,
	       v.status, v.duration, v.views, v.likes_count, v.dislikes_count,
	       v.category, v.tags, v.privacy, v.created_at, v.published_at, v.updated_at,
	       u.name AS channel, u.avatar,
	       (SELECT COUNT(*) FROM likes WHERE video_id = v.id AND type = 'like') AS likes,
	       (SELECT COUNT(*) FROM likes WHERE video_id = v.id AND type = 'dislike') AS dislikes
	FROM videos v
	JOIN users u ON v.user_id = u.id`

func scanVideoView(row interface{ Scan(...any) error }) (*model.VideoView, error) {
	var v model.VideoView
	var publishedAt sql.NullTime
	err := row.Scan(
		&v.ID, &v.UserID, &v.Title, &v.Description, &v.VideoPath, &v.VideoURL,
		&v.Status, &v.Duration, &v.Views, &v.LikesCount, &v.DislikesCount,
		&v.Category, &v.Tags, &v.Privacy, &v.CreatedAt, &publishedAt, &v.UpdatedAt,
		&v.Channel, &v.Avatar,
		&v.Likes, &v.Dislikes,
	)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		v.PublishedAt = &publishedAt.Time
	}
	return &v, nil
}

func collectVideoViews(rows *sql.Rows, capacity int) ([]model.VideoView, error) {
	defer rows.Close()
	videos := make([]model.VideoView, 0, capacity)
	for rows.Next() {
		v, err := scanVideoView(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning video row: %w", err)
		}
		videos = append(videos, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating videos: %w", err)
	}
	return videos, nil
}

// Create inserts a new video. The caller decides the lifecycle status:
// model.StatusLive for the direct-URL path, model.StatusPending for the
// moderated upload path.
func (r *VideoDB) Create(ctx context.Context, video *model.Video) error {
	video.ID = xid.New().String()
	now := time.Now()
	video.CreatedAt = now
	video.UpdatedAt = now
	if video.Privacy == "" {
		video.Privacy = "public"
	}
	if video.Status == model.StatusLive {
		video.PublishedAt = &now
	}

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO videos (id, user_id, title, description, video_path, video_url,
		                     status, duration, category, tags, privacy,
		                     created_at, published_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID, video.UserID, video.Title, video.Description,
		video.VideoPath, video.VideoURL, video.Status, video.Duration,
		video.Category, video.Tags, video.Privacy,
		video.CreatedAt, video.PublishedAt, video.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting video %q: %w", video.Title, err)
	}
	return nil
}

// GetByID returns the bare stored row, without channel data or live counts.
func (r *VideoDB) GetByID(ctx context.Context, id string) (*model.Video, error) {
	var v model.Video
	var publishedAt sql.NullTime
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, video_path, video_url, status,
		        duration, views, likes_count, dislikes_count, category, tags,
		        privacy, created_at, published_at, updated_at
		 FROM videos WHERE id = ?`, id,
	).Scan(
		&v.ID, &v.UserID, &v.Title, &v.Description, &v.VideoPath, &v.VideoURL,
		&v.Status, &v.Duration, &v.Views, &v.LikesCount, &v.DislikesCount,
		&v.Category, &v.Tags, &v.Privacy, &v.CreatedAt, &publishedAt, &v.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("video", id)
		}
		return nil, fmt.Errorf("sqlite: getting video %s: %w", id, err)
	}
	if publishedAt.Valid {
		v.PublishedAt = &publishedAt.Time
	}
	return &v, nil
}

// GetView returns the full read projection for a single video.
func (r *VideoDB) GetView(ctx context.Context, id string) (*model.VideoView, error) {
	row := r.db.conn.QueryRowContext(ctx, viewSelect+` WHERE v.id = ?`, id)
	v, err := scanVideoView(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("video", id)
		}
		return nil, fmt.Errorf("sqlite: getting video view %s: %w", id, err)
	}
	return v, nil
}

// List returns live videos newest-first, capped at 100. Search is a
// case-insensitive substring match over title and description; there is no
// ranking beyond recency.
func (r *VideoDB) List(ctx context.Context, filter repository.VideoFilter) ([]model.VideoView, error) {
	query := viewSelect + ` WHERE v.status = 'live'`
	args := []any{}

	if filter.UserID != "" {
		query += ` AND v.user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.Category != "" && filter.Category != "all" {
		query += ` AND v.category = ?`
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		query += ` AND (v.title LIKE ? OR v.description LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	query += ` ORDER BY v.created_at DESC LIMIT 100`

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing videos: %w", err)
	}
	return collectVideoViews(rows, 100)
}

// SubscriptionFeed returns live videos from every channel the user follows,
// newest-first, capped at 50.
func (r *VideoDB) SubscriptionFeed(ctx context.Context, userID string) ([]model.VideoView, error) {
	rows, err := r.db.conn.QueryContext(ctx, viewSelect+`
		WHERE v.user_id IN (SELECT channel_id FROM subscriptions WHERE follower_id = ?)
		  AND v.status = 'live'
		ORDER BY v.created_at DESC
		LIMIT 50`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing subscription feed: %w", err)
	}
	return collectVideoViews(rows, 50)
}

// ListPending returns the moderation queue, newest-first.
func (r *VideoDB) ListPending(ctx context.Context) ([]model.VideoView, error) {
	rows, err := r.db.conn.QueryContext(ctx, viewSelect+`
		WHERE v.status = 'pending'
		ORDER BY v.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing pending videos: %w", err)
	}
	return collectVideoViews(rows, 16)
}

// SetStatus updates the lifecycle status. publish additionally stamps
// published_at, which approve uses and reject does not.
func (r *VideoDB) SetStatus(ctx context.Context, id, status string, publish bool) error {
	query := `UPDATE videos SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if publish {
		query = `UPDATE videos SET status = ?, published_at = CURRENT_TIMESTAMP,
		         updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	}
	result, err := r.db.conn.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("sqlite: setting video %s status: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("video", id)
	}
	return nil
}

// Delete removes a video; comments, likes, chapters, subtitles, analytics
// and playlist memberships cascade with it.
func (r *VideoDB) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting video %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("video", id)
	}
	return nil
}

// AddChapter appends a named timestamp to a video.
func (r *VideoDB) AddChapter(ctx context.Context, chapter *model.Chapter) error {
	chapter.ID = xid.New().String()
	chapter.CreatedAt = time.Now()
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO video_chapters (id, video_id, title, timestamp, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		chapter.ID, chapter.VideoID, chapter.Title, chapter.Timestamp, chapter.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting chapter: %w", err)
	}
	return nil
}

// ListChapters returns a video's chapters ordered by timestamp.
func (r *VideoDB) ListChapters(ctx context.Context, videoID string) ([]model.Chapter, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, video_id, title, timestamp, created_at
		 FROM video_chapters WHERE video_id = ? ORDER BY timestamp ASC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing chapters: %w", err)
	}
	defer rows.Close()

	chapters := make([]model.Chapter, 0, 8)
	for rows.Next() {
		var c model.Chapter
		if err := rows.Scan(&c.ID, &c.VideoID, &c.Title, &c.Timestamp, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning chapter row: %w", err)
		}
		chapters = append(chapters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating chapters: %w", err)
	}
	return chapters, nil
}

// AddSubtitle attaches a caption track to a video.
func (r *VideoDB) AddSubtitle(ctx context.Context, subtitle *model.Subtitle) error {
	subtitle.ID = xid.New().String()
	subtitle.CreatedAt = time.Now()
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO subtitles (id, video_id, language, subtitle_url, subtitle_data,
		                        is_auto_generated, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		subtitle.ID, subtitle.VideoID, subtitle.Language, subtitle.SubtitleURL,
		subtitle.SubtitleData, subtitle.IsAutoGenerated, subtitle.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting subtitle: %w", err)
	}
	return nil
}

// ListSubtitles returns a video's caption tracks.
func (r *VideoDB) ListSubtitles(ctx context.Context, videoID string) ([]model.Subtitle, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, video_id, language, subtitle_url, subtitle_data,
		        is_auto_generated, created_at
		 FROM subtitles WHERE video_id = ?`, videoID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing subtitles: %w", err)
	}
	defer rows.Close()

	subtitles := make([]model.Subtitle, 0, 4)
	for rows.Next() {
		var s model.Subtitle
		if err := rows.Scan(&s.ID, &s.VideoID, &s.Language, &s.SubtitleURL,
			&s.SubtitleData, &s.IsAutoGenerated, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning subtitle row: %w", err)
		}
		subtitles = append(subtitles, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating subtitles: %w", err)
	}
	return subtitles, nil
}
