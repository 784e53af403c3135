package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/tiktik/tiktik/internal/apperror"
	"github.com/tiktik/tiktik/internal/model"
	"github.com/tiktik/tiktik/internal/repository"
)

// =========================================================================
// CREATE / GET TESTS
// =========================================================================

func TestVideoCreate_LiveSetsPublishedAt(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "u@example.com", "U")

	video := &model.Video{
		UserID:   user.ID,
		Title:    "direct",
		VideoURL: "https://example.com/v.mp4",
		Status:   model.StatusLive,
	}
	if err := db.Videos().Create(context.Background(), video); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if video.ID == "" {
		t.Error("Create() did not set video.ID")
	}
	if video.PublishedAt == nil {
		t.Error("Create() did not stamp PublishedAt for a live video")
	}
}

func TestVideoCreate_PendingHasNoPublishedAt(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "u@example.com", "U")

	video := &model.Video{
		UserID: user.ID,
		Title:  "uploaded",
		Status: model.StatusPending,
	}
	if err := db.Videos().Create(context.Background(), video); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if video.PublishedAt != nil {
		t.Error("pending video must not have PublishedAt")
	}
}

func TestVideoGetView_JoinsChannelAndLiveCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com", "Owner Channel")
	fan := createTestUser(t, db, "fan@example.com", "Fan")
	video := createTestVideo(t, db, owner.ID, "clip")

	if _, err := db.Engagement().ToggleVideoReaction(ctx, fan.ID, video.ID, model.ReactionLike); err != nil {
		t.Fatalf("toggle error = %v", err)
	}

	view, err := db.Videos().GetView(ctx, video.ID)
	if err != nil {
		t.Fatalf("GetView() error = %v", err)
	}
	if view.Channel != "Owner Channel" {
		t.Errorf("Channel = %q, want %q", view.Channel, "Owner Channel")
	}
	if view.Avatar == "" {
		t.Error("Avatar not joined")
	}
	if view.Likes != 1 || view.Dislikes != 0 {
		t.Errorf("likes/dislikes = %d/%d, want 1/0", view.Likes, view.Dislikes)
	}
}

func TestVideoGetView_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Videos().GetView(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST / SEARCH TESTS
// =========================================================================

func TestVideoList_OnlyLive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com", "U")
	createTestVideo(t, db, user.ID, "visible")

	pending := &model.Video{UserID: user.ID, Title: "hidden", Status: model.StatusPending}
	if err := db.Videos().Create(ctx, pending); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	videos, err := db.Videos().List(ctx, repository.VideoFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("got %d videos, want only the live one", len(videos))
	}
	if videos[0].Title != "visible" {
		t.Errorf("Title = %q, want %q", videos[0].Title, "visible")
	}
}

func TestVideoList_SearchMatchesTitleAndDescription(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com", "U")

	cooking := &model.Video{UserID: user.ID, Title: "Pasta night", Description: "cooking at home", Status: model.StatusLive}
	hiking := &model.Video{UserID: user.ID, Title: "Alpine trail", Description: "a long hike", Status: model.StatusLive}
	for _, v := range []*model.Video{cooking, hiking} {
		if err := db.Videos().Create(ctx, v); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	videos, err := db.Videos().List(ctx, repository.VideoFilter{Search: "cooking"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(videos) != 1 || videos[0].ID != cooking.ID {
		t.Errorf("search returned %d videos, want just the cooking one", len(videos))
	}
}

func TestVideoList_FilterByCategoryAndUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "a@example.com", "A")
	bob := createTestUser(t, db, "b@example.com", "B")

	music := &model.Video{UserID: alice.ID, Title: "song", Category: "music", Status: model.StatusLive}
	gaming := &model.Video{UserID: bob.ID, Title: "run", Category: "gaming", Status: model.StatusLive}
	for _, v := range []*model.Video{music, gaming} {
		if err := db.Videos().Create(ctx, v); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	videos, err := db.Videos().List(ctx, repository.VideoFilter{Category: "music"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(videos) != 1 || videos[0].ID != music.ID {
		t.Errorf("category filter returned wrong set")
	}

	videos, err = db.Videos().List(ctx, repository.VideoFilter{UserID: bob.ID})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(videos) != 1 || videos[0].ID != gaming.ID {
		t.Errorf("user filter returned wrong set")
	}
}

// =========================================================================
// SUBSCRIPTION FEED TESTS
// =========================================================================

func TestSubscriptionFeed(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	channel := createTestUser(t, db, "channel@example.com", "Channel")
	other := createTestUser(t, db, "other@example.com", "Other")
	fan := createTestUser(t, db, "fan@example.com", "Fan")

	subscribed := createTestVideo(t, db, channel.ID, "from-subscription")
	createTestVideo(t, db, other.ID, "unrelated")

	if _, err := db.Engagement().ToggleSubscription(ctx, fan.ID, channel.ID); err != nil {
		t.Fatalf("subscribe error = %v", err)
	}

	feed, err := db.Videos().SubscriptionFeed(ctx, fan.ID)
	if err != nil {
		t.Fatalf("SubscriptionFeed() error = %v", err)
	}
	if len(feed) != 1 || feed[0].ID != subscribed.ID {
		t.Fatalf("feed = %d videos, want only the subscribed channel's", len(feed))
	}

	// Unsubscribing empties the feed.
	if _, err := db.Engagement().ToggleSubscription(ctx, fan.ID, channel.ID); err != nil {
		t.Fatalf("unsubscribe error = %v", err)
	}
	feed, err = db.Videos().SubscriptionFeed(ctx, fan.ID)
	if err != nil {
		t.Fatalf("SubscriptionFeed() error = %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("feed has %d videos after unsubscribe, want 0", len(feed))
	}
}

// =========================================================================
// MODERATION TESTS
// =========================================================================

func TestVideoSetStatus_ApprovePublishes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com", "U")

	video := &model.Video{UserID: user.ID, Title: "queued", Status: model.StatusPending}
	if err := db.Videos().Create(ctx, video); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	pending, err := db.Videos().ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending queue has %d videos, want 1", len(pending))
	}

	if err := db.Videos().SetStatus(ctx, video.ID, model.StatusLive, true); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	approved, err := db.Videos().GetByID(ctx, video.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if approved.Status != model.StatusLive {
		t.Errorf("Status = %q, want %q", approved.Status, model.StatusLive)
	}
	if approved.PublishedAt == nil {
		t.Error("approval did not stamp PublishedAt")
	}
}

func TestVideoSetStatus_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Videos().SetStatus(context.Background(), "missing", model.StatusRejected, false)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE / CASCADE TESTS
// =========================================================================

func TestVideoDelete_CascadesChildren(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com", "U")
	video := createTestVideo(t, db, user.ID, "doomed")
	createTestComment(t, db, user.ID, video.ID, "gone soon", "")

	if _, err := db.Engagement().ToggleVideoReaction(ctx, user.ID, video.ID, model.ReactionLike); err != nil {
		t.Fatalf("toggle error = %v", err)
	}
	if err := db.Videos().AddChapter(ctx, &model.Chapter{VideoID: video.ID, Title: "intro"}); err != nil {
		t.Fatalf("AddChapter() error = %v", err)
	}

	if err := db.Videos().Delete(ctx, video.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	for _, table := range []string{"comments", "likes", "video_chapters"} {
		var n int
		if err := db.conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			t.Fatalf("counting %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s not cascaded: %d rows remain", table, n)
		}
	}
}

// =========================================================================
// CHAPTER / SUBTITLE TESTS
// =========================================================================

func TestChapters_OrderedByTimestamp(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com", "U")
	video := createTestVideo(t, db, user.ID, "clip")

	for _, c := range []model.Chapter{
		{VideoID: video.ID, Title: "outro", Timestamp: 300},
		{VideoID: video.ID, Title: "intro", Timestamp: 0},
		{VideoID: video.ID, Title: "middle", Timestamp: 120},
	} {
		chapter := c
		if err := db.Videos().AddChapter(ctx, &chapter); err != nil {
			t.Fatalf("AddChapter() error = %v", err)
		}
	}

	chapters, err := db.Videos().ListChapters(ctx, video.ID)
	if err != nil {
		t.Fatalf("ListChapters() error = %v", err)
	}
	if len(chapters) != 3 {
		t.Fatalf("got %d chapters, want 3", len(chapters))
	}
	for i, want := range []string{"intro", "middle", "outro"} {
		if chapters[i].Title != want {
			t.Errorf("chapters[%d] = %q, want %q", i, chapters[i].Title, want)
		}
	}
}

func TestSubtitles_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "u@example.com", "U")
	video := createTestVideo(t, db, user.ID, "clip")

	subtitle := &model.Subtitle{VideoID: video.ID, Language: "en", SubtitleURL: "https://example.com/en.vtt"}
	if err := db.Videos().AddSubtitle(ctx, subtitle); err != nil {
		t.Fatalf("AddSubtitle() error = %v", err)
	}

	subtitles, err := db.Videos().ListSubtitles(ctx, video.ID)
	if err != nil {
		t.Fatalf("ListSubtitles() error = %v", err)
	}
	if len(subtitles) != 1 || subtitles[0].Language != "en" {
		t.Errorf("subtitles = %v, want the one en track", subtitles)
	}
}
