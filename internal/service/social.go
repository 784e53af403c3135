package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tiktik/tiktik/internal/apperror"
	"github.com/tiktik/tiktik/internal/model"
	"github.com/tiktik/tiktik/internal/repository"
)

// SocialService handles everything users do around videos: comments,
// subscriptions, watch-later, watch history, playlists, notifications,
// reports, revenue and memberships.
type SocialService struct {
	comments   repository.CommentRepository
	engagement repository.EngagementRepository
	playlists  repository.PlaylistRepository
	activity   repository.ActivityRepository
	logger     *slog.Logger
}

// NewSocialService creates a SocialService with all required dependencies.
func NewSocialService(
	comments repository.CommentRepository,
	engagement repository.EngagementRepository,
	playlists repository.PlaylistRepository,
	activity repository.ActivityRepository,
	logger *slog.Logger,
) *SocialService {
	return &SocialService{
		comments:   comments,
		engagement: engagement,
		playlists:  playlists,
		activity:   activity,
		logger:     logger,
	}
}

// ===== COMMENTS =====

// AddComment posts a comment on a video, optionally as a reply. The
// repository rejects unknown video or parent IDs through their foreign
// keys.
func (s *SocialService) AddComment(ctx context.Context, userID, videoID, text, parentID string) (*model.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "comment text is required")
	}
	if len(text) > 2000 {
		return nil, apperror.ValidationFailed("text", "comment must be 2000 characters or fewer")
	}

	comment := &model.Comment{
		VideoID:  videoID,
		UserID:   userID,
		Text:     text,
		ParentID: parentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.comments.GetView(ctx, comment.ID)
}

// ListComments returns a video's comments, newest first. Replies are
// included flat; the client threads them by parentId.
func (s *SocialService) ListComments(ctx context.Context, videoID string) ([]model.CommentView, error) {
	return s.comments.ListByVideo(ctx, videoID)
}

// DeleteComment removes a comment and its whole reply subtree. Only the
// author may delete it.
func (s *SocialService) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return apperror.Forbidden("only the author can delete a comment")
	}
	return s.comments.Delete(ctx, commentID)
}

// ReactToComment toggles a like or dislike on a comment.
func (s *SocialService) ReactToComment(ctx context.Context, userID, commentID string, kind model.ReactionKind) (model.ToggleAction, error) {
	if !kind.Valid() {
		return "", apperror.ValidationFailed("type", `reaction type must be "like" or "dislike"`)
	}
	return s.engagement.ToggleCommentReaction(ctx, userID, commentID, kind)
}

// ===== SUBSCRIPTIONS =====

// ToggleSubscription subscribes the follower to the channel, or
// unsubscribes if already subscribed. The channel's subscriber count moves
// with the edge in the same transaction.
func (s *SocialService) ToggleSubscription(ctx context.Context, followerID, channelID string) (model.SubscribeAction, error) {
	action, err := s.engagement.ToggleSubscription(ctx, followerID, channelID)
	if err != nil {
		return "", err
	}
	if action == model.Subscribed {
		// Best effort; a missed notification is not worth failing the
		// subscribe.
		n := &model.Notification{
			UserID: channelID,
			Type:   "new_subscriber",
			Title:  "You have a new subscriber",
		}
		if err := s.activity.CreateNotification(ctx, n); err != nil {
			s.logger.Warn("creating subscriber notification failed",
				slog.String("channelID", channelID),
				slog.String("error", err.Error()),
			)
		}
	}
	return action, nil
}

// ListSubscriptions returns the channels a user subscribes to.
func (s *SocialService) ListSubscriptions(ctx context.Context, followerID string) ([]model.SubscriptionView, error) {
	return s.engagement.ListSubscriptions(ctx, followerID)
}

// ===== WATCH LATER / HISTORY =====

// ToggleWatchLater adds the video to the user's watch-later list, or
// removes it if present.
func (s *SocialService) ToggleWatchLater(ctx context.Context, userID, videoID string) (model.ToggleAction, error) {
	return s.engagement.ToggleWatchLater(ctx, userID, videoID)
}

// WatchLater returns the user's watch-later videos.
func (s *SocialService) WatchLater(ctx context.Context, userID string) ([]model.VideoView, error) {
	return s.engagement.WatchLaterVideos(ctx, userID)
}

// ReportWatchTime records how far the user got through a video. One row
// per (user, video); the latest report wins.
func (s *SocialService) ReportWatchTime(ctx context.Context, userID, videoID string, watchTime int) error {
	if watchTime < 0 {
		return apperror.ValidationFailed("watchTime", "watch time must not be negative")
	}
	return s.engagement.UpsertWatchHistory(ctx, userID, videoID, watchTime)
}

// WatchHistory returns the user's history, most recently watched first.
func (s *SocialService) WatchHistory(ctx context.Context, userID string) ([]model.HistoryVideoView, error) {
	return s.engagement.WatchHistoryVideos(ctx, userID)
}

// ===== PLAYLISTS =====

// CreatePlaylist creates an empty playlist for the user.
func (s *SocialService) CreatePlaylist(ctx context.Context, userID, title, description, privacy string) (*model.Playlist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "playlist title is required")
	}
	if privacy == "" {
		privacy = "public"
	}
	playlist := &model.Playlist{
		UserID:      userID,
		Title:       title,
		Description: description,
		Privacy:     privacy,
	}
	if err := s.playlists.Create(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// ListPlaylists returns a user's playlists with live video counts.
func (s *SocialService) ListPlaylists(ctx context.Context, userID string) ([]model.Playlist, error) {
	return s.playlists.ListByUser(ctx, userID)
}

// AddToPlaylist appends a video at the end of a playlist. Adding the same
// video twice is a conflict.
func (s *SocialService) AddToPlaylist(ctx context.Context, playlistID, videoID string) (*model.PlaylistVideo, error) {
	return s.playlists.AddVideo(ctx, playlistID, videoID)
}

// PlaylistVideos returns a playlist's videos in position order.
func (s *SocialService) PlaylistVideos(ctx context.Context, playlistID string) ([]model.VideoView, error) {
	return s.playlists.ListVideos(ctx, playlistID)
}

// ===== NOTIFICATIONS =====

// Notifications returns a user's latest notifications.
func (s *SocialService) Notifications(ctx context.Context, userID string) ([]model.Notification, error) {
	return s.activity.ListNotifications(ctx, userID)
}

// MarkNotificationRead flags a notification as read.
func (s *SocialService) MarkNotificationRead(ctx context.Context, id string) error {
	return s.activity.MarkNotificationRead(ctx, id)
}

// ===== REPORTS / REVENUE / MEMBERSHIPS =====

// SubmitReport files a complaint about a video or a comment.
func (s *SocialService) SubmitReport(ctx context.Context, reporterID, videoID, commentID, reason, description string) (*model.Report, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperror.ValidationFailed("reason", "a reason is required")
	}
	if videoID == "" && commentID == "" {
		return nil, apperror.ValidationFailed("videoId", "a video or comment to report is required")
	}
	report := &model.Report{
		ReporterID:  reporterID,
		VideoID:     videoID,
		CommentID:   commentID,
		Reason:      reason,
		Description: description,
	}
	if err := s.activity.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	s.logger.Info("report submitted",
		slog.String("reportID", report.ID),
		slog.String("videoID", videoID),
		slog.String("commentID", commentID),
	)
	return report, nil
}

// Revenue returns a creator's earnings ledger.
func (s *SocialService) Revenue(ctx context.Context, userID string) ([]model.Revenue, error) {
	return s.activity.RevenueByUser(ctx, userID)
}

// Memberships returns the channels a user holds a paid membership with.
func (s *SocialService) Memberships(ctx context.Context, userID string) ([]model.Membership, error) {
	return s.activity.MembershipsByUser(ctx, userID)
}
