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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

const userColumns = `id, email, password_hash, name, avatar, channel_name,
	channel_description, channel_banner, subscriber_count, is_admin,
	github_id, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Avatar,
		&u.ChannelName,
		&u.ChannelDescription,
		&u.ChannelBanner,
		&u.SubscriberCount,
		&u.IsAdmin,
		&u.GitHubID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. A duplicate email is a Conflict — the UNIQUE
// constraint on email backs this up even if two registrations race past the
// existence check.
func (r *UserDB) Create(ctx context.Context, user *model.User) error {
	var exists int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, user.Email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking email %s: %w", user.Email, err)
	}
	if exists > 0 {
		return apperror.Conflict("user", "email already registered")
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = r.db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, avatar, channel_name,
		                    channel_description, channel_banner, is_admin, github_id,
		                    created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Avatar,
		user.ChannelName,
		user.ChannelDescription,
		user.ChannelBanner,
		user.IsAdmin,
		user.GitHubID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}
	return nil
}

// GetByID retrieves a user by internal ID.
func (r *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email (login path).
func (r *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// UpsertGitHub creates or refreshes an account keyed by GitHub ID. First
// OAuth sign-in inserts a passwordless account; later sign-ins update the
// profile fields in case they changed on GitHub. The caller's user gets the
// canonical ID either way.
func (r *UserDB) UpsertGitHub(ctx context.Context, user *model.User) error {
	var existingID string
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != "" {
		user.ID = existingID
		user.UpdatedAt = time.Now()
		_, err = r.db.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, email = ?, avatar = ?, updated_at = ?
			 WHERE id = ?`,
			user.Name, user.Email, user.Avatar, user.UpdatedAt, user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = r.db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, avatar, github_id,
		                    created_at, updated_at)
		 VALUES (?, ?, '', ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.Avatar, user.GitHubID,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", user.GitHubID, err)
	}
	return nil
}

// IsAdmin reports whether the user has the admin flag set.
func (r *UserDB) IsAdmin(ctx context.Context, id string) (bool, error) {
	var isAdmin bool
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT is_admin FROM users WHERE id = ?`, id,
	).Scan(&isAdmin)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, apperror.NotFound("user", id)
		}
		return false, fmt.Errorf("sqlite: checking admin flag for %s: %w", id, err)
	}
	return isAdmin, nil
}

// Delete removes a user. The foreign keys cascade videos, comments, likes,
// playlists and everything hanging off them, so no orphan rows survive the
// commit. Subscription edges where this user is the follower cascade too,
// so each followed channel's subscriber_count is decremented in the same
// transaction to keep the counter equal to the live edge count.
func (r *UserDB) Delete(ctx context.Context, id string) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users
			 SET subscriber_count = subscriber_count - 1
			 WHERE id IN (SELECT channel_id FROM subscriptions WHERE follower_id = ?)`,
			id); err != nil {
			return fmt.Errorf("sqlite: releasing subscriber counts for user %s: %w", id, err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("user", id)
		}
		return nil
	})
}

// ListWithVideoCounts returns the admin user directory, newest-first.
// video_count is computed live by subquery.
func (r *UserDB) ListWithVideoCounts(ctx context.Context) ([]model.AdminUser, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, email, name, avatar, subscriber_count, created_at,
		        (SELECT COUNT(*) FROM videos WHERE user_id = users.id) AS video_count
		 FROM users
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.AdminUser, 0, 32)
	for rows.Next() {
		var u model.AdminUser
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Avatar,
			&u.SubscriberCount, &u.CreatedAt, &u.VideoCount); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}
