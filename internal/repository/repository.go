// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage is the only implementation; services
// receive these interfaces so tests can substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/tiktik/tiktik/internal/model"
)

// VideoFilter narrows ListVideos. Zero values mean "no filter". Listings
// only ever return live videos; the filter cannot widen that.
type VideoFilter struct {
	UserID   string
	Category string // "all" and "" are equivalent
	Search   string // case-insensitive substring over title and description
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHub creates or refreshes an account keyed by GitHub ID.
	UpsertGitHub(ctx context.Context, user *model.User) error
	IsAdmin(ctx context.Context, id string) (bool, error)
	// Delete removes the user and, through cascades, every video, comment,
	// like, subscription and playlist that belongs to it.
	Delete(ctx context.Context, id string) error
	ListWithVideoCounts(ctx context.Context) ([]model.AdminUser, error)
}

type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	GetByID(ctx context.Context, id string) (*model.Video, error)
	// GetView returns the video joined with channel data and live reaction counts.
	GetView(ctx context.Context, id string) (*model.VideoView, error)
	// List returns live videos newest-first, capped at 100.
	List(ctx context.Context, filter VideoFilter) ([]model.VideoView, error)
	// SubscriptionFeed returns live videos from channels the user follows,
	// newest-first, capped at 50.
	SubscriptionFeed(ctx context.Context, userID string) ([]model.VideoView, error)
	ListPending(ctx context.Context) ([]model.VideoView, error)
	// SetStatus updates the lifecycle status; publish also stamps published_at.
	SetStatus(ctx context.Context, id, status string, publish bool) error
	Delete(ctx context.Context, id string) error

	AddChapter(ctx context.Context, chapter *model.Chapter) error
	ListChapters(ctx context.Context, videoID string) ([]model.Chapter, error)
	AddSubtitle(ctx context.Context, subtitle *model.Subtitle) error
	ListSubtitles(ctx context.Context, videoID string) ([]model.Subtitle, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	GetView(ctx context.Context, id string) (*model.CommentView, error)
	ListByVideo(ctx context.Context, videoID string) ([]model.CommentView, error)
	// Delete removes the comment and its entire reply subtree.
	Delete(ctx context.Context, id string) error
}

// EngagementRepository holds every mutation that must keep a denormalized
// aggregate consistent or toggle a singleton row. Each method is atomic:
// it either commits all of its writes or none of them.
type EngagementRepository interface {
	ToggleVideoReaction(ctx context.Context, userID, videoID string, kind model.ReactionKind) (model.ToggleAction, error)
	ToggleCommentReaction(ctx context.Context, userID, commentID string, kind model.ReactionKind) (model.ToggleAction, error)
	ToggleSubscription(ctx context.Context, followerID, channelID string) (model.SubscribeAction, error)
	ListSubscriptions(ctx context.Context, followerID string) ([]model.SubscriptionView, error)
	// RecordView increments the video's view counter and appends one
	// analytics event. It never deduplicates.
	RecordView(ctx context.Context, videoID, userID string, watchTime int) error
	AnalyticsByVideo(ctx context.Context, videoID string) (*model.AnalyticsSummary, error)
	ToggleWatchLater(ctx context.Context, userID, videoID string) (model.ToggleAction, error)
	WatchLaterVideos(ctx context.Context, userID string) ([]model.VideoView, error)
	// UpsertWatchHistory inserts or overwrites the (user, video) progress
	// row. Last write wins.
	UpsertWatchHistory(ctx context.Context, userID, videoID string, watchTime int) error
	WatchHistoryVideos(ctx context.Context, userID string) ([]model.HistoryVideoView, error)
}

type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	ListByUser(ctx context.Context, userID string) ([]model.Playlist, error)
	// AddVideo appends the video at the next position. Duplicate membership
	// is a Conflict.
	AddVideo(ctx context.Context, playlistID, videoID string) (*model.PlaylistVideo, error)
	ListVideos(ctx context.Context, playlistID string) ([]model.VideoView, error)
}

type ActivityRepository interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	CreateReport(ctx context.Context, report *model.Report) error
	RevenueByUser(ctx context.Context, userID string) ([]model.Revenue, error)
	MembershipsByUser(ctx context.Context, userID string) ([]model.Membership, error)
}
