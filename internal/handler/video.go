package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tiktik/tiktik/internal/apperror"
	"github.com/tiktik/tiktik/internal/auth"
	"github.com/tiktik/tiktik/internal/model"
	"github.com/tiktik/tiktik/internal/repository"
	"github.com/tiktik/tiktik/internal/service"
	"github.com/tiktik/tiktik/internal/upload"
)

// VideoHandler serves the video endpoints: listing, detail, the two
// creation paths, reactions, views, chapters and subtitles.
type VideoHandler struct {
	videos *service.VideoService
	logger *slog.Logger
}

// NewVideoHandler creates a VideoHandler.
func NewVideoHandler(videos *service.VideoService, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{videos: videos, logger: logger}
}

// HandleList returns live videos, with optional filters.
//
// HTTP: GET /api/videos?userId=&category=&search=&sort=
// sort=trending re-ranks the page by view count.
func (h *VideoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.VideoFilter{
		UserID:   q.Get("userId"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}

	videos, err := h.videos.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if q.Get("sort") == "trending" {
		videos = service.Trending(videos)
	}

	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// HandleGet returns one video with channel data and live like counts.
//
// HTTP: GET /api/videos/{id}
func (h *VideoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	video, err := h.videos.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"video": video})
}

// HandleFeed returns live videos from channels the user subscribes to.
//
// HTTP: GET /api/feed (behind RequireAuth)
func (h *VideoHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	videos, err := h.videos.Feed(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// HandleSubscriptionVideos is the by-userId variant of the feed, for
// clients that page another user's subscription list.
//
// HTTP: GET /api/subscriptions/{userId}/videos
func (h *VideoHandler) HandleSubscriptionVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.videos.Feed(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// HandleCreate inserts a video from a direct URL; it goes live immediately.
//
// HTTP: POST /api/videos (behind RequireAuth)
func (h *VideoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		VideoURL    string `json:"videoUrl"`
		Category    string `json:"category"`
		Tags        string `json:"tags"`
		Privacy     string `json:"privacy"`
		Duration    int    `json:"duration"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	video, err := h.videos.Create(r.Context(), userID, service.VideoInput{
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Category:    req.Category,
		Tags:        req.Tags,
		Privacy:     req.Privacy,
		Duration:    req.Duration,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "video": video})
}

// HandleUpload accepts a multipart video file plus metadata. The video is
// stored on disk and enters moderation as pending.
//
// HTTP: POST /api/videos/upload (behind RequireAuth, multipart/form-data)
func (h *VideoHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, apperror.ValidationFailed("video", "upload too large or malformed"))
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, apperror.ValidationFailed("video", "a video file is required"))
		return
	}
	defer file.Close()

	duration, _ := strconv.Atoi(r.FormValue("duration"))
	video, err := h.videos.Upload(r.Context(), userID, service.VideoInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Tags:        r.FormValue("tags"),
		Privacy:     r.FormValue("privacy"),
		Duration:    duration,
	}, file, header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "video": video})
}

// HandleReact toggles a like or dislike on a video.
//
// HTTP: POST /api/videos/{id}/like (behind RequireAuth)
// Body: {"type":"like"} or {"type":"dislike"}
func (h *VideoHandler) HandleReact(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Type string `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	action, err := h.videos.React(r.Context(), userID, r.PathValue("id"), model.ReactionKind(req.Type))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "action": string(action)})
}

// HandleView bumps the view counter and appends an analytics event. No
// auth: anonymous playback counts too, but a logged-in viewer is attributed.
//
// HTTP: POST /api/videos/{id}/view (behind OptionalAuth)
// Body: {"watchTime": 42} (optional)
func (h *VideoHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		WatchTime int `json:"watchTime"`
	}
	// An empty body is fine here.
	_ = decodeJSON(r, &req)

	if err := h.videos.RecordView(r.Context(), r.PathValue("id"), userID, req.WatchTime); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleAnalytics returns the playback summary for a video.
//
// HTTP: GET /api/analytics/{videoId}
func (h *VideoHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.videos.Analytics(r.Context(), r.PathValue("videoId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleListChapters returns a video's chapters in timestamp order.
//
// HTTP: GET /api/videos/{id}/chapters
func (h *VideoHandler) HandleListChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := h.videos.ListChapters(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chapters": chapters})
}

// HandleAddChapter attaches a named timestamp to a video.
//
// HTTP: POST /api/videos/{id}/chapters (behind RequireAuth)
func (h *VideoHandler) HandleAddChapter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title     string `json:"title"`
		Timestamp int    `json:"timestamp"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	chapter, err := h.videos.AddChapter(r.Context(), r.PathValue("id"), req.Title, req.Timestamp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "chapter": chapter})
}

// HandleListSubtitles returns a video's subtitle tracks.
//
// HTTP: GET /api/videos/{id}/subtitles
func (h *VideoHandler) HandleListSubtitles(w http.ResponseWriter, r *http.Request) {
	subtitles, err := h.videos.ListSubtitles(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subtitles": subtitles})
}

// HandleAddSubtitle attaches a subtitle track to a video.
//
// HTTP: POST /api/videos/{id}/subtitles (behind RequireAuth)
func (h *VideoHandler) HandleAddSubtitle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language     string `json:"language"`
		SubtitleURL  string `json:"subtitleUrl"`
		SubtitleData string `json:"subtitleData"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	subtitle, err := h.videos.AddSubtitle(r.Context(), r.PathValue("id"), req.Language, req.SubtitleURL, req.SubtitleData)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "subtitle": subtitle})
}
