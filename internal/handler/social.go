package handler

import (
	"log/slog"
	"net/http"

	"github.com/tiktik/tiktik/internal/auth"
	"github.com/tiktik/tiktik/internal/service"
)

// SocialHandler serves subscriptions, watch-later, watch history,
// playlists, notifications, reports, revenue and memberships.
type SocialHandler struct {
	social *service.SocialService
	logger *slog.Logger
}

// NewSocialHandler creates a SocialHandler.
func NewSocialHandler(social *service.SocialService, logger *slog.Logger) *SocialHandler {
	return &SocialHandler{social: social, logger: logger}
}

// HandleToggleSubscription subscribes to or unsubscribes from a channel.
//
// HTTP: POST /api/subscriptions (behind RequireAuth)
// Body: {"channelId":"..."}
func (h *SocialHandler) HandleToggleSubscription(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		ChannelID string `json:"channelId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	action, err := h.social.ToggleSubscription(r.Context(), userID, req.ChannelID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "action": string(action)})
}

// HandleListSubscriptions returns the channels a user subscribes to.
//
// HTTP: GET /api/subscriptions/{userId}
func (h *SocialHandler) HandleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.social.ListSubscriptions(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
}

// HandleToggleWatchLater adds or removes a video from watch-later.
//
// HTTP: POST /api/watch-later (behind RequireAuth)
// Body: {"videoId":"..."}
func (h *SocialHandler) HandleToggleWatchLater(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		VideoID string `json:"videoId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	action, err := h.social.ToggleWatchLater(r.Context(), userID, req.VideoID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "action": string(action)})
}

// HandleWatchLater returns a user's watch-later videos.
//
// HTTP: GET /api/watch-later/{userId}
func (h *SocialHandler) HandleWatchLater(w http.ResponseWriter, r *http.Request) {
	videos, err := h.social.WatchLater(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// HandleReportWatchTime upserts the caller's progress through a video.
//
// HTTP: POST /api/watch-history (behind RequireAuth)
// Body: {"videoId":"...","watchTime":123}
func (h *SocialHandler) HandleReportWatchTime(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		VideoID   string `json:"videoId"`
		WatchTime int    `json:"watchTime"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.social.ReportWatchTime(r.Context(), userID, req.VideoID, req.WatchTime); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleWatchHistory returns a user's history, most recent first.
//
// HTTP: GET /api/watch-history/{userId}
func (h *SocialHandler) HandleWatchHistory(w http.ResponseWriter, r *http.Request) {
	videos, err := h.social.WatchHistory(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// HandleCreatePlaylist creates an empty playlist for the caller.
//
// HTTP: POST /api/playlists (behind RequireAuth)
func (h *SocialHandler) HandleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Privacy     string `json:"privacy"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	playlist, err := h.social.CreatePlaylist(r.Context(), userID, req.Title, req.Description, req.Privacy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "playlist": playlist})
}

// HandleListPlaylists returns a user's playlists.
//
// HTTP: GET /api/playlists/{userId}
func (h *SocialHandler) HandleListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.social.ListPlaylists(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlists": playlists})
}

// HandleAddToPlaylist appends a video to a playlist.
//
// HTTP: POST /api/playlists/{id}/videos (behind RequireAuth)
// Body: {"videoId":"..."}
func (h *SocialHandler) HandleAddToPlaylist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VideoID string `json:"videoId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.social.AddToPlaylist(r.Context(), r.PathValue("id"), req.VideoID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "entry": entry})
}

// HandlePlaylistVideos returns a playlist's videos in position order.
//
// HTTP: GET /api/playlists/{id}/videos
func (h *SocialHandler) HandlePlaylistVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.social.PlaylistVideos(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// HandleNotifications returns a user's latest notifications.
//
// HTTP: GET /api/notifications/{userId}
func (h *SocialHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.social.Notifications(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

// HandleMarkNotificationRead flags a notification as read.
//
// HTTP: POST /api/notifications/{id}/read
func (h *SocialHandler) HandleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.social.MarkNotificationRead(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleCreateReport files a complaint about a video or a comment.
//
// HTTP: POST /api/reports (behind RequireAuth)
func (h *SocialHandler) HandleCreateReport(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		VideoID     string `json:"videoId"`
		CommentID   string `json:"commentId"`
		Reason      string `json:"reason"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	report, err := h.social.SubmitReport(r.Context(), userID, req.VideoID, req.CommentID, req.Reason, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "report": report})
}

// HandleRevenue returns the caller's earnings ledger. Users can only read
// their own.
//
// HTTP: GET /api/revenue/{userId} (behind RequireAuth)
func (h *SocialHandler) HandleRevenue(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if r.PathValue("userId") != userID {
		writeJSON(w, http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "you can only view your own revenue",
		})
		return
	}

	entries, err := h.social.Revenue(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	var total float64
	for _, e := range entries {
		total += e.Amount
	}
	writeJSON(w, http.StatusOK, map[string]any{"revenue": entries, "totalRevenue": total})
}

// HandleMemberships returns the channels the caller holds a membership with.
//
// HTTP: GET /api/memberships (behind RequireAuth)
func (h *SocialHandler) HandleMemberships(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	memberships, err := h.social.Memberships(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"memberships": memberships})
}
