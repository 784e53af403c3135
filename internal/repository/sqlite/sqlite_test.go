package sqlite

import (
	"context"
	"testing"

	"github.com/tiktik/tiktik/internal/model"
)

// newTestDB returns a fresh in-memory database. MaxOpenConns is pinned to 1
// in New, so every query in a test sees the same memory-backed store.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, email, name string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "$2a$04$notarealhashnotarealhashnotarealhash",
		Name:         name,
		Avatar:       "https://example.com/avatar.png",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestVideo creates a live video owned by userID.
func createTestVideo(t *testing.T, db *DB, userID, title string) *model.Video {
	t.Helper()
	video := &model.Video{
		UserID:   userID,
		Title:    title,
		VideoURL: "https://example.com/" + title + ".mp4",
		Status:   model.StatusLive,
		Privacy:  "public",
	}
	if err := db.Videos().Create(context.Background(), video); err != nil {
		t.Fatalf("failed to create test video: %v", err)
	}
	return video
}

// createTestComment posts a comment (parentID empty for top-level).
func createTestComment(t *testing.T, db *DB, userID, videoID, text, parentID string) *model.Comment {
	t.Helper()
	comment := &model.Comment{
		VideoID:  videoID,
		UserID:   userID,
		Text:     text,
		ParentID: parentID,
	}
	if err := db.Comments().Create(context.Background(), comment); err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}
	return comment
}
