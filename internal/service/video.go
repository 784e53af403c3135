package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/tiktik/tiktik/internal/apperror"
	"github.com/tiktik/tiktik/internal/model"
	"github.com/tiktik/tiktik/internal/repository"
	"github.com/tiktik/tiktik/internal/upload"
)

// trendingLimit caps how many videos Trending returns.
const trendingLimit = 20

// VideoService handles the video lifecycle: creation, the moderated upload
// path, listing, reactions, view counting and moderation.
type VideoService struct {
	videos     repository.VideoRepository
	engagement repository.EngagementRepository
	store      *upload.Store
	logger     *slog.Logger
}

// NewVideoService creates a VideoService with all required dependencies.
func NewVideoService(
	videos repository.VideoRepository,
	engagement repository.EngagementRepository,
	store *upload.Store,
	logger *slog.Logger,
) *VideoService {
	return &VideoService{
		videos:     videos,
		engagement: engagement,
		store:      store,
		logger:     logger,
	}
}

// VideoInput is the caller-supplied portion of a new video.
type VideoInput struct {
	Title       string
	Description string
	VideoURL    string
	Category    string
	Tags        string
	Privacy     string
	Duration    int
}

func (in *VideoInput) validate(requireURL bool) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if len(in.Title) > 200 {
		return apperror.ValidationFailed("title", "title must be 200 characters or fewer")
	}
	if requireURL && strings.TrimSpace(in.VideoURL) == "" {
		return apperror.ValidationFailed("videoUrl", "video URL is required")
	}
	if in.Privacy == "" {
		in.Privacy = "public"
	}
	return nil
}

// Create inserts a video from a direct URL. URL videos skip moderation and
// go live immediately.
func (s *VideoService) Create(ctx context.Context, userID string, in VideoInput) (*model.Video, error) {
	if err := in.validate(true); err != nil {
		return nil, err
	}

	video := &model.Video{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		VideoURL:    in.VideoURL,
		Status:      model.StatusLive,
		Duration:    in.Duration,
		Category:    in.Category,
		Tags:        in.Tags,
		Privacy:     in.Privacy,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, err
	}

	s.logger.Info("video created",
		slog.String("videoID", video.ID),
		slog.String("userID", userID),
	)
	return video, nil
}

// Upload stores the file on disk and inserts the video as pending. Pending
// videos stay out of public listings until an admin approves them.
func (s *VideoService) Upload(ctx context.Context, userID string, in VideoInput, file io.Reader, filename string) (*model.Video, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}

	stored, err := s.store.Save(file, filename)
	if err != nil {
		return nil, err
	}

	video := &model.Video{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		VideoPath:   stored,
		VideoURL:    "/uploads/" + stored,
		Status:      model.StatusPending,
		Duration:    in.Duration,
		Category:    in.Category,
		Tags:        in.Tags,
		Privacy:     in.Privacy,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		s.store.Remove(stored)
		return nil, err
	}

	s.logger.Info("video uploaded",
		slog.String("videoID", video.ID),
		slog.String("userID", userID),
		slog.String("file", stored),
	)
	return video, nil
}

// Get returns the joined read projection for one video.
func (s *VideoService) Get(ctx context.Context, id string) (*model.VideoView, error) {
	return s.videos.GetView(ctx, id)
}

// List returns live videos, optionally filtered by uploader, category or a
// title/description search term.
func (s *VideoService) List(ctx context.Context, filter repository.VideoFilter) ([]model.VideoView, error) {
	return s.videos.List(ctx, filter)
}

// Feed returns live videos from channels the user subscribes to.
func (s *VideoService) Feed(ctx context.Context, userID string) ([]model.VideoView, error) {
	return s.videos.SubscriptionFeed(ctx, userID)
}

// Trending ranks an already-fetched list by view count and keeps the top
// entries. Pure function, no extra query.
func Trending(videos []model.VideoView) []model.VideoView {
	ranked := make([]model.VideoView, len(videos))
	copy(ranked, videos)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Views > ranked[j].Views
	})
	if len(ranked) > trendingLimit {
		ranked = ranked[:trendingLimit]
	}
	return ranked
}

// React toggles a like or dislike on a video for the user.
func (s *VideoService) React(ctx context.Context, userID, videoID string, kind model.ReactionKind) (model.ToggleAction, error) {
	if !kind.Valid() {
		return "", apperror.ValidationFailed("type", `reaction type must be "like" or "dislike"`)
	}
	return s.engagement.ToggleVideoReaction(ctx, userID, videoID, kind)
}

// RecordView bumps the view counter and appends an analytics event. Views
// are never deduplicated; userID may be empty for anonymous playback.
func (s *VideoService) RecordView(ctx context.Context, videoID, userID string, watchTime int) error {
	return s.engagement.RecordView(ctx, videoID, userID, watchTime)
}

// Analytics returns the playback summary for a video.
func (s *VideoService) Analytics(ctx context.Context, videoID string) (*model.AnalyticsSummary, error) {
	return s.engagement.AnalyticsByVideo(ctx, videoID)
}

// ListPending returns videos awaiting moderation.
func (s *VideoService) ListPending(ctx context.Context) ([]model.VideoView, error) {
	return s.videos.ListPending(ctx)
}

// Approve moves a pending video to live and stamps published_at.
func (s *VideoService) Approve(ctx context.Context, videoID string) error {
	if err := s.videos.SetStatus(ctx, videoID, model.StatusLive, true); err != nil {
		return err
	}
	s.logger.Info("video approved", slog.String("videoID", videoID))
	return nil
}

// Reject marks a video rejected. The row and file stay around so the
// uploader can see the outcome.
func (s *VideoService) Reject(ctx context.Context, videoID string) error {
	if err := s.videos.SetStatus(ctx, videoID, model.StatusRejected, false); err != nil {
		return err
	}
	s.logger.Info("video rejected", slog.String("videoID", videoID))
	return nil
}

// Delete removes a video, its stored file and, through the schema's
// cascades, its comments, reactions, chapters and subtitles.
func (s *VideoService) Delete(ctx context.Context, videoID string) error {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return err
	}
	if err := s.videos.Delete(ctx, videoID); err != nil {
		return err
	}
	if video.VideoPath != "" {
		if err := s.store.Remove(video.VideoPath); err != nil {
			s.logger.Warn("deleting stored file failed",
				slog.String("videoID", videoID),
				slog.String("error", err.Error()),
			)
		}
	}
	s.logger.Info("video deleted", slog.String("videoID", videoID))
	return nil
}

// AddChapter attaches a named timestamp to a video.
func (s *VideoService) AddChapter(ctx context.Context, videoID, title string, timestamp int) (*model.Chapter, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "chapter title is required")
	}
	if timestamp < 0 {
		return nil, apperror.ValidationFailed("timestamp", "timestamp must not be negative")
	}
	chapter := &model.Chapter{VideoID: videoID, Title: title, Timestamp: timestamp}
	if err := s.videos.AddChapter(ctx, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

// ListChapters returns a video's chapters ordered by timestamp.
func (s *VideoService) ListChapters(ctx context.Context, videoID string) ([]model.Chapter, error) {
	return s.videos.ListChapters(ctx, videoID)
}

// AddSubtitle attaches a subtitle track to a video. Either a URL or inline
// subtitle data must be supplied.
func (s *VideoService) AddSubtitle(ctx context.Context, videoID, language, subtitleURL, subtitleData string) (*model.Subtitle, error) {
	if strings.TrimSpace(language) == "" {
		return nil, apperror.ValidationFailed("language", "language is required")
	}
	if subtitleURL == "" && subtitleData == "" {
		return nil, apperror.ValidationFailed("subtitleUrl", "either a subtitle URL or inline data is required")
	}
	subtitle := &model.Subtitle{
		VideoID:      videoID,
		Language:     language,
		SubtitleURL:  subtitleURL,
		SubtitleData: subtitleData,
	}
	if err := s.videos.AddSubtitle(ctx, subtitle); err != nil {
		return nil, err
	}
	return subtitle, nil
}

// ListSubtitles returns a video's subtitle tracks.
func (s *VideoService) ListSubtitles(ctx context.Context, videoID string) ([]model.Subtitle, error) {
	return s.videos.ListSubtitles(ctx, videoID)
}
