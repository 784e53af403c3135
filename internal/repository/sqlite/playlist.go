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

var _ repository.PlaylistRepository = (*PlaylistDB)(nil)

func (r *PlaylistDB) Create(ctx context.Context, playlist *model.Playlist) error {
	playlist.ID = xid.New().String()
	now := time.Now().UTC()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO playlists (id, user_id, title, description, privacy, thumbnail_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		playlist.ID, playlist.UserID, playlist.Title, playlist.Description,
		playlist.Privacy, playlist.ThumbnailURL, playlist.CreatedAt, playlist.UpdatedAt)
	if err != nil {
		if isForeignKeyErr(err) {
			return apperror.NotFound("user", playlist.UserID)
		}
		return fmt.Errorf("sqlite: creating playlist: %w", err)
	}
	return nil
}

func (r *PlaylistDB) ListByUser(ctx context.Context, userID string) ([]model.Playlist, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT p.id, p.user_id, p.title, p.description, p.privacy, p.thumbnail_url,
		        (SELECT COUNT(*) FROM playlist_videos pv WHERE pv.playlist_id = p.id) AS video_count,
		        p.created_at, p.updated_at
		 FROM playlists p
		 WHERE p.user_id = ?
		 ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]model.Playlist, 0, 8)
	for rows.Next() {
		var p model.Playlist
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Privacy,
			&p.ThumbnailURL, &p.VideoCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning playlist row: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating playlists: %w", err)
	}
	return playlists, nil
}

func (r *PlaylistDB) AddVideo(ctx context.Context, playlistID, videoID string) (*model.PlaylistVideo, error) {
	entry := &model.PlaylistVideo{
		ID:         xid.New().String(),
		PlaylistID: playlistID,
		VideoID:    videoID,
		AddedAt:    time.Now().UTC(),
	}

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM playlists WHERE id = ?`, playlistID).Scan(&exists); err != nil {
			return fmt.Errorf("sqlite: checking playlist: %w", err)
		}
		if exists == 0 {
			return apperror.NotFound("playlist", playlistID)
		}

		var dup int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM playlist_videos WHERE playlist_id = ? AND video_id = ?`,
			playlistID, videoID).Scan(&dup); err != nil {
			return fmt.Errorf("sqlite: checking playlist membership: %w", err)
		}
		if dup > 0 {
			return apperror.Conflict("playlist video", "video already in playlist")
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_videos WHERE playlist_id = ?`,
			playlistID).Scan(&entry.Position); err != nil {
			return fmt.Errorf("sqlite: computing playlist position: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO playlist_videos (id, playlist_id, video_id, position, added_at)
			 VALUES (?, ?, ?, ?, ?)`,
			entry.ID, entry.PlaylistID, entry.VideoID, entry.Position, entry.AddedAt); err != nil {
			if isForeignKeyErr(err) {
				return apperror.NotFound("video", videoID)
			}
			return fmt.Errorf("sqlite: adding playlist video: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE playlists SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, playlistID); err != nil {
			return fmt.Errorf("sqlite: touching playlist: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *PlaylistDB) ListVideos(ctx context.Context, playlistID string) ([]model.VideoView, error) {
	rows, err := r.db.conn.QueryContext(ctx, viewSelect+`
		 JOIN playlist_videos pv ON pv.video_id = v.id
		 WHERE pv.playlist_id = ?
		 ORDER BY pv.position ASC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing playlist videos: %w", err)
	}
	return collectVideoViews(rows, 16)
}
