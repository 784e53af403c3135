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

// compile-time check that *DB implements repository.CommentRepository
var _ repository.CommentRepository = (*CommentDB)(nil)

const commentViewSelect = `
	SELECT c.id, c.video_id, c.user_id, c.text, c.parent_id, c.likes_count,
	       c.created_at, c.updated_at,
	       u.name AS author, u.avatar
	FROM comments c
	JOIN users u ON c.user_id = u.id`

func scanCommentView(row interface{ Scan(...any) error }) (*model.CommentView, error) {
	var c model.CommentView
	var parentID sql.NullString
	err := row.Scan(&c.ID, &c.VideoID, &c.UserID, &c.Text, &parentID,
		&c.LikesCount, &c.CreatedAt, &c.UpdatedAt, &c.Author, &c.Avatar)
	if err != nil {
		return nil, err
	}
	c.ParentID = parentID.String
	return &c, nil
}

// Create inserts a comment, optionally as a reply. A missing video
// or parent comment surfaces as NotFound via the foreign keys.
func (r *CommentDB) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	var parent any
	if comment.ParentID != "" {
		parent = comment.ParentID
	}

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, video_id, user_id, text, parent_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID, comment.VideoID, comment.UserID, comment.Text, parent,
		comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyErr(err) {
			// The driver doesn't say which foreign key failed, so
			// check the parent ourselves before blaming the video.
			if comment.ParentID != "" {
				var one int
				perr := r.db.conn.QueryRowContext(ctx,
					`SELECT 1 FROM comments WHERE id = ?`, comment.ParentID).Scan(&one)
				if perr == sql.ErrNoRows {
					return apperror.NotFound("comment", comment.ParentID)
				}
			}
			return apperror.NotFound("video", comment.VideoID)
		}
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}
	return nil
}

// GetByID returns the bare stored row (used for ownership checks).
func (r *CommentDB) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	var parentID sql.NullString
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, video_id, user_id, text, parent_id, likes_count, created_at, updated_at
		 FROM comments WHERE id = ?`, id,
	).Scan(&c.ID, &c.VideoID, &c.UserID, &c.Text, &parentID,
		&c.LikesCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	c.ParentID = parentID.String
	return &c, nil
}

// GetView returns one comment joined with its author.
func (r *CommentDB) GetView(ctx context.Context, id string) (*model.CommentView, error) {
	row := r.db.conn.QueryRowContext(ctx, commentViewSelect+` WHERE c.id = ?`, id)
	c, err := scanCommentView(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment view %s: %w", id, err)
	}
	return c, nil
}

// ListByVideo returns a video's comments newest-first, replies
// included flat (the client threads them by parentId).
func (r *CommentDB) ListByVideo(ctx context.Context, videoID string) ([]model.CommentView, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		commentViewSelect+` WHERE c.video_id = ? ORDER BY c.created_at DESC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := make([]model.CommentView, 0, 32)
	for rows.Next() {
		c, err := scanCommentView(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

// Delete removes a comment and its whole reply subtree. The subtree
// is collected explicitly with a recursive CTE and deleted as a set, so
// deep reply chains go regardless of how far the engine recurses FK
// cascades. Likes on the deleted comments cascade with them.
func (r *CommentDB) Delete(ctx context.Context, id string) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			WITH RECURSIVE tree(id) AS (
				SELECT id FROM comments WHERE id = ?
				UNION ALL
				SELECT c.id FROM comments c JOIN tree t ON c.parent_id = t.id
			)
			DELETE FROM comments WHERE id IN (SELECT id FROM tree)`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting comment tree %s: %w", id, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("comment", id)
		}
		return nil
	})
}
