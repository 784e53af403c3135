package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/tiktik/tiktik/internal/apperror"
	"github.com/tiktik/tiktik/internal/model"
)

// videoLikeCounts reads the live aggregates from the joined projection.
func videoLikeCounts(t *testing.T, db *DB, videoID string) (likes, dislikes int) {
	t.Helper()
	view, err := db.Videos().GetView(context.Background(), videoID)
	if err != nil {
		t.Fatalf("GetView() error = %v", err)
	}
	return view.Likes, view.Dislikes
}

// =========================================================================
// VIDEO REACTION TESTS
// =========================================================================

func TestToggleVideoReaction_AddThenRemove(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com", "U")
	video := createTestVideo(t, db, user.ID, "clip")

	action, err := db.Engagement().ToggleVideoReaction(ctx, user.ID, video.ID, model.ReactionLike)
	if err != nil {
		t.Fatalf("first toggle error = %v", err)
	}
	if action != model.ToggleAdded {
		t.Errorf("first toggle action = %q, want %q", action, model.ToggleAdded)
	}
	if likes, _ := videoLikeCounts(t, db, video.ID); likes != 1 {
		t.Errorf("likes after add = %d, want 1", likes)
	}

	// Same reaction again removes it.
	action, err = db.Engagement().ToggleVideoReaction(ctx, user.ID, video.ID, model.ReactionLike)
	if err != nil {
		t.Fatalf("second toggle error = %v", err)
	}
	if action != model.ToggleRemoved {
		t.Errorf("second toggle action = %q, want %q", action, model.ToggleRemoved)
	}
	if likes, _ := videoLikeCounts(t, db, video.ID); likes != 0 {
		t.Errorf("likes after remove = %d, want 0", likes)
	}
}

func TestToggleVideoReaction_TripleToggleEndsLiked(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com", "U")
	video := createTestVideo(t, db, user.ID, "clip")

	for i := 0; i < 3; i++ {
		if _, err := db.Engagement().ToggleVideoReaction(ctx, user.ID, video.ID, model.ReactionLike); err != nil {
			t.Fatalf("toggle %d error = %v", i+1, err)
		}
	}

	likes, _ := videoLikeCounts(t, db, video.ID)
	if likes != 1 {
		t.Errorf("likes after three toggles = %d, want 1", likes)
	}
}

func TestToggleVideoReaction_SwitchKind(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com", "U")
	video := createTestVideo(t, db, user.ID, "clip")

	if _, err := db.Engagement().ToggleVideoReaction(ctx, user.ID, video.ID, model.ReactionLike); err != nil {
		t.Fatalf("like error = %v", err)
	}

	// Disliking while liked must flip the single row, never leave both.
	action, err := db.Engagement().ToggleVideoReaction(ctx, user.ID, video.ID, model.ReactionDislike)
	if err != nil {
		t.Fatalf("dislike error = %v", err)
	}
	if action != model.ToggleUpdated {
		t.Errorf("action = %q, want %q", action, model.ToggleUpdated)
	}

	likes, dislikes := videoLikeCounts(t, db, video.ID)
	if likes != 0 || dislikes != 1 {
		t.Errorf("likes/dislikes = %d/%d, want 0/1", likes, dislikes)
	}

	var rows int
	if err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM likes WHERE user_id = ? AND video_id = ?`,
		user.ID, video.ID).Scan(&rows); err != nil {
		t.Fatalf("counting reaction rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("reaction rows = %d, want exactly 1", rows)
	}
}

func TestToggleVideoReaction_UnknownVideo(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "u@example.com", "U")

	_, err := db.Engagement().ToggleVideoReaction(context.Background(), user.ID, "missing", model.ReactionLike)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestToggleVideoReaction_AdvisoryCountersTrackLive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "a@example.com", "A")
	bob := createTestUser(t, db, "b@example.com", "B")
	video := createTestVideo(t, db, alice.ID, "clip")

	// like, like, switch, remove — stored counters must end equal to live.
	db.Engagement().ToggleVideoReaction(ctx, alice.ID, video.ID, model.ReactionLike)
	db.Engagement().ToggleVideoReaction(ctx, bob.ID, video.ID, model.ReactionLike)
	db.Engagement().ToggleVideoReaction(ctx, bob.ID, video.ID, model.ReactionDislike)
	db.Engagement().ToggleVideoReaction(ctx, alice.ID, video.ID, model.ReactionLike)

	var stored, storedDislikes int
	if err := db.conn.QueryRow(
		`SELECT likes_count, dislikes_count FROM videos WHERE id = ?`, video.ID).
		Scan(&stored, &storedDislikes); err != nil {
		t.Fatalf("reading stored counters: %v", err)
	}

	likes, dislikes := videoLikeCounts(t, db, video.ID)
	if stored != likes || storedDislikes != dislikes {
		t.Errorf("stored counters %d/%d drifted from live %d/%d", stored, storedDislikes, likes, dislikes)
	}
	if likes != 0 || dislikes != 1 {
		t.Errorf("live likes/dislikes = %d/%d, want 0/1", likes, dislikes)
	}
}

// =========================================================================
// COMMENT REACTION TESTS
// =========================================================================

func TestToggleCommentReaction_AddThenRemove(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com", "U")
	video := createTestVideo(t, db, user.ID, "clip")
	comment := createTestComment(t, db, user.ID, video.ID, "first", "")

	action, err := db.Engagement().ToggleCommentReaction(ctx, user.ID, comment.ID, model.ReactionLike)
	if err != nil {
		t.Fatalf("toggle error = %v", err)
	}
	if action != model.ToggleAdded {
		t.Errorf("action = %q, want %q", action, model.ToggleAdded)
	}

	action, err = db.Engagement().ToggleCommentReaction(ctx, user.ID, comment.ID, model.ReactionLike)
	if err != nil {
		t.Fatalf("toggle error = %v", err)
	}
	if action != model.ToggleRemoved {
		t.Errorf("action = %q, want %q", action, model.ToggleRemoved)
	}

	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM likes WHERE comment_id = ?`, comment.ID).Scan(&n); err != nil {
		t.Fatalf("counting: %v", err)
	}
	if n != 0 {
		t.Errorf("reaction rows = %d, want 0", n)
	}
}

func TestToggleCommentReaction_UnknownComment(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "u@example.com", "U")

	_, err := db.Engagement().ToggleCommentReaction(context.Background(), user.ID, "missing", model.ReactionLike)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
