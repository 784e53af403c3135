package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/tiktik/tiktik/internal/apperror"
	"github.com/tiktik/tiktik/internal/model"
	"github.com/tiktik/tiktik/internal/repository"
)

// compile-time check that *DB implements repository.EngagementRepository
var _ repository.EngagementRepository = (*EngagementDB)(nil)

// isForeignKeyErr reports whether err is a SQLite foreign key violation,
// i.e. the referenced row is gone. Callers translate it to NotFound.
func isForeignKeyErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func counterColumn(kind model.ReactionKind) string {
	if kind == model.ReactionDislike {
		return "dislikes_count"
	}
	return "likes_count"
}

// ToggleVideoReaction applies the 3-state reaction toggle for a video:
//
//	no prior reaction        → insert, "added"
//	same-kind reaction       → delete, "removed"
//	opposite-kind reaction   → overwrite, "updated"
//
// The read, the branch and the write run in one transaction, and the
// partial unique index on likes(user_id, video_id) guarantees at most one
// row per pair even if two toggles race. The advisory counters on the video
// row are adjusted in the same transaction; reads never trust them, but
// they stay consistent anyway.
func (e *EngagementDB) ToggleVideoReaction(ctx context.Context, userID, videoID string, kind model.ReactionKind) (model.ToggleAction, error) {
	if !kind.Valid() {
		return "", apperror.ValidationFailed("type", "reaction type must be 'like' or 'dislike'")
	}

	var action model.ToggleAction
	err := e.db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM videos WHERE id = ?`, videoID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("sqlite: checking video %s: %w", videoID, err)
		}
		if exists == 0 {
			return apperror.NotFound("video", videoID)
		}

		var likeID string
		var existing model.ReactionKind
		err := tx.QueryRowContext(ctx,
			`SELECT id, type FROM likes WHERE user_id = ? AND video_id = ?`,
			userID, videoID,
		).Scan(&likeID, &existing)

		switch {
		case err == sql.ErrNoRows:
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO likes (id, user_id, video_id, type, created_at)
				 VALUES (?, ?, ?, ?, ?)`,
				xid.New().String(), userID, videoID, string(kind), time.Now(),
			); err != nil {
				return fmt.Errorf("sqlite: inserting reaction: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE videos SET `+counterColumn(kind)+` = `+counterColumn(kind)+` + 1 WHERE id = ?`,
				videoID,
			); err != nil {
				return fmt.Errorf("sqlite: bumping reaction counter: %w", err)
			}
			action = model.ToggleAdded

		case err != nil:
			return fmt.Errorf("sqlite: reading existing reaction: %w", err)

		case existing == kind:
			// Reacting with the current kind un-reacts.
			if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE id = ?`, likeID); err != nil {
				return fmt.Errorf("sqlite: deleting reaction: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE videos SET `+counterColumn(kind)+` = `+counterColumn(kind)+` - 1 WHERE id = ?`,
				videoID,
			); err != nil {
				return fmt.Errorf("sqlite: dropping reaction counter: %w", err)
			}
			action = model.ToggleRemoved

		default:
			// Opposite kind: overwrite in place, never two rows.
			if _, err := tx.ExecContext(ctx,
				`UPDATE likes SET type = ? WHERE id = ?`, string(kind), likeID,
			); err != nil {
				return fmt.Errorf("sqlite: switching reaction: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE videos
				 SET `+counterColumn(existing)+` = `+counterColumn(existing)+` - 1,
				     `+counterColumn(kind)+` = `+counterColumn(kind)+` + 1
				 WHERE id = ?`, videoID,
			); err != nil {
				return fmt.Errorf("sqlite: moving reaction counter: %w", err)
			}
			action = model.ToggleUpdated
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// ToggleCommentReaction is the same 3-state toggle applied to a comment.
// Comments only carry an advisory likes_count (no dislike counter), so the
// counter is touched only when the like side changes.
func (e *EngagementDB) ToggleCommentReaction(ctx context.Context, userID, commentID string, kind model.ReactionKind) (model.ToggleAction, error) {
	if !kind.Valid() {
		return "", apperror.ValidationFailed("type", "reaction type must be 'like' or 'dislike'")
	}

	var action model.ToggleAction
	err := e.db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM comments WHERE id = ?`, commentID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("sqlite: checking comment %s: %w", commentID, err)
		}
		if exists == 0 {
			return apperror.NotFound("comment", commentID)
		}

		var likeID string
		var existing model.ReactionKind
		err := tx.QueryRowContext(ctx,
			`SELECT id, type FROM likes WHERE user_id = ? AND comment_id = ?`,
			userID, commentID,
		).Scan(&likeID, &existing)

		likeDelta := 0
		switch {
		case err == sql.ErrNoRows:
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO likes (id, user_id, comment_id, type, created_at)
				 VALUES (?, ?, ?, ?, ?)`,
				xid.New().String(), userID, commentID, string(kind), time.Now(),
			); err != nil {
				return fmt.Errorf("sqlite: inserting comment reaction: %w", err)
			}
			if kind == model.ReactionLike {
				likeDelta = 1
			}
			action = model.ToggleAdded

		case err != nil:
			return fmt.Errorf("sqlite: reading existing comment reaction: %w", err)

		case existing == kind:
			if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE id = ?`, likeID); err != nil {
				return fmt.Errorf("sqlite: deleting comment reaction: %w", err)
			}
			if kind == model.ReactionLike {
				likeDelta = -1
			}
			action = model.ToggleRemoved

		default:
			if _, err := tx.ExecContext(ctx,
				`UPDATE likes SET type = ? WHERE id = ?`, string(kind), likeID,
			); err != nil {
				return fmt.Errorf("sqlite: switching comment reaction: %w", err)
			}
			if kind == model.ReactionLike {
				likeDelta = 1 // dislike → like
			} else {
				likeDelta = -1 // like → dislike
			}
			action = model.ToggleUpdated
		}

		if likeDelta != 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE comments SET likes_count = likes_count + ? WHERE id = ?`,
				likeDelta, commentID,
			); err != nil {
				return fmt.Errorf("sqlite: adjusting comment like counter: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return action, nil
}
