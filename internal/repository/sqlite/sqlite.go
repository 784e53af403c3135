// Package sqlite implements the repository interfaces on a single-file
// SQLite database (modernc.org/sqlite, pure Go — no CGo).
//
// The schema in migrate() is the contract the rest of the system honours:
// uniqueness lives in UNIQUE constraints and indexes, ownership lives in
// ON DELETE CASCADE foreign keys, and the toggle operations in reaction.go
// and subscription.go run inside transactions so their denormalized
// counters can never drift from the rows they cache.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection only. SQLite allows a single writer anyway, and a
	// capped pool keeps ":memory:" databases from silently splitting into
	// one empty database per pooled connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. Every ownership rule in
	// this schema is an ON DELETE CASCADE, so this pragma is load-bearing.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates all tables, constraints and indexes. CREATE ... IF NOT
// EXISTS keeps it safe to run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                  TEXT PRIMARY KEY,
			email               TEXT UNIQUE NOT NULL,
			password_hash       TEXT NOT NULL DEFAULT '',
			name                TEXT NOT NULL,
			avatar              TEXT NOT NULL DEFAULT '',
			channel_name        TEXT NOT NULL DEFAULT '',
			channel_description TEXT NOT NULL DEFAULT '',
			channel_banner      TEXT NOT NULL DEFAULT '',
			subscriber_count    INTEGER NOT NULL DEFAULT 0,
			is_admin            BOOLEAN NOT NULL DEFAULT 0,
			github_id           INTEGER NOT NULL DEFAULT 0,
			created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id != 0;

		CREATE TABLE IF NOT EXISTS videos (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			title          TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			video_path     TEXT NOT NULL DEFAULT '',
			video_url      TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT 'pending',
			duration       INTEGER NOT NULL DEFAULT 0,
			views          INTEGER NOT NULL DEFAULT 0,
			likes_count    INTEGER NOT NULL DEFAULT 0,
			dislikes_count INTEGER NOT NULL DEFAULT 0,
			category       TEXT NOT NULL DEFAULT '',
			tags           TEXT NOT NULL DEFAULT '',
			privacy        TEXT NOT NULL DEFAULT 'public',
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			published_at   DATETIME,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS comments (
			id          TEXT PRIMARY KEY,
			video_id    TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			text        TEXT NOT NULL,
			parent_id   TEXT,
			likes_count INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE CASCADE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (parent_id) REFERENCES comments(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS likes (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			video_id   TEXT,
			comment_id TEXT,
			type       TEXT NOT NULL CHECK(type IN ('like', 'dislike')),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE CASCADE,
			FOREIGN KEY (comment_id) REFERENCES comments(id) ON DELETE CASCADE
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_user_video
			ON likes(user_id, video_id) WHERE video_id IS NOT NULL;
		CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_user_comment
			ON likes(user_id, comment_id) WHERE comment_id IS NOT NULL;

		CREATE TABLE IF NOT EXISTS subscriptions (
			id                   TEXT PRIMARY KEY,
			follower_id          TEXT NOT NULL,
			channel_id           TEXT NOT NULL,
			notification_enabled BOOLEAN NOT NULL DEFAULT 1,
			created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (follower_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (channel_id) REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE(follower_id, channel_id)
		);

		CREATE TABLE IF NOT EXISTS analytics (
			id             TEXT PRIMARY KEY,
			video_id       TEXT NOT NULL,
			user_id        TEXT,
			session_id     TEXT NOT NULL DEFAULT '',
			watch_time     INTEGER NOT NULL DEFAULT 0,
			completed      BOOLEAN NOT NULL DEFAULT 0,
			unique_visitor BOOLEAN NOT NULL DEFAULT 1,
			device_type    TEXT NOT NULL DEFAULT '',
			location       TEXT NOT NULL DEFAULT '',
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE CASCADE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
		);

		CREATE TABLE IF NOT EXISTS playlists (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL,
			title         TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			privacy       TEXT NOT NULL DEFAULT 'public',
			thumbnail_url TEXT NOT NULL DEFAULT '',
			video_count   INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS playlist_videos (
			id          TEXT PRIMARY KEY,
			playlist_id TEXT NOT NULL,
			video_id    TEXT NOT NULL,
			position    INTEGER NOT NULL,
			added_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (playlist_id) REFERENCES playlists(id) ON DELETE CASCADE,
			FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE CASCADE,
			UNIQUE(playlist_id, video_id)
		);

		CREATE TABLE IF NOT EXISTS video_chapters (
			id         TEXT PRIMARY KEY,
			video_id   TEXT NOT NULL,
			title      TEXT NOT NULL,
			timestamp  INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS watch_history (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			video_id   TEXT NOT NULL,
			watch_time INTEGER NOT NULL DEFAULT 0,
			completed  BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE CASCADE,
			UNIQUE(user_id, video_id)
		);

		CREATE TABLE IF NOT EXISTS watch_later (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			video_id   TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE CASCADE,
			UNIQUE(user_id, video_id)
		);

		CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			message    TEXT NOT NULL DEFAULT '',
			link       TEXT NOT NULL DEFAULT '',
			is_read    BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS subtitles (
			id                TEXT PRIMARY KEY,
			video_id          TEXT NOT NULL,
			language          TEXT NOT NULL,
			subtitle_url      TEXT NOT NULL DEFAULT '',
			subtitle_data     TEXT NOT NULL DEFAULT '',
			is_auto_generated BOOLEAN NOT NULL DEFAULT 0,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS revenue (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			video_id       TEXT,
			amount         REAL NOT NULL,
			source         TEXT NOT NULL DEFAULT '',
			transaction_id TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT 'pending',
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE SET NULL
		);

		CREATE TABLE IF NOT EXISTS memberships (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			tier       TEXT NOT NULL DEFAULT '',
			amount     REAL NOT NULL DEFAULT 0,
			status     TEXT NOT NULL DEFAULT 'active',
			started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			expires_at DATETIME,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (channel_id) REFERENCES users(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS reports (
			id          TEXT PRIMARY KEY,
			reporter_id TEXT,
			video_id    TEXT,
			comment_id  TEXT,
			reason      TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'pending',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			resolved_at DATETIME,
			FOREIGN KEY (reporter_id) REFERENCES users(id) ON DELETE SET NULL,
			FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE CASCADE,
			FOREIGN KEY (comment_id) REFERENCES comments(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_videos_user_id ON videos(user_id);
		CREATE INDEX IF NOT EXISTS idx_videos_status ON videos(status);
		CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos(created_at);
		CREATE INDEX IF NOT EXISTS idx_comments_video_id ON comments(video_id);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_follower ON subscriptions(follower_id);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_channel ON subscriptions(channel_id);
		CREATE INDEX IF NOT EXISTS idx_analytics_video_id ON analytics(video_id);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// withTx runs fn inside a transaction, committing on nil and rolling back on
// error. Every multi-statement mutation in this package goes through here.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// Entity-scoped handles. Each wraps the shared connection so that repository
// methods for different entities can share one *DB without method collisions.

type UserDB struct{ db *DB }

type VideoDB struct{ db *DB }

type CommentDB struct{ db *DB }

type EngagementDB struct{ db *DB }

type PlaylistDB struct{ db *DB }

type ActivityDB struct{ db *DB }

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserDB { return &UserDB{db: db} }

// Videos returns the video repository backed by this database.
func (db *DB) Videos() *VideoDB { return &VideoDB{db: db} }

// Comments returns the comment repository backed by this database.
func (db *DB) Comments() *CommentDB { return &CommentDB{db: db} }

// Engagement returns the reaction, subscription, watch and analytics
// repository backed by this database.
func (db *DB) Engagement() *EngagementDB { return &EngagementDB{db: db} }

// Playlists returns the playlist repository backed by this database.
func (db *DB) Playlists() *PlaylistDB { return &PlaylistDB{db: db} }

// Activity returns the notification, report, revenue and membership
// repository backed by this database.
func (db *DB) Activity() *ActivityDB { return &ActivityDB{db: db} }
