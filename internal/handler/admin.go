package handler

import (
	"log/slog"
	"net/http"

	"github.com/tiktik/tiktik/internal/service"
)

// AdminHandler serves the moderation endpoints. Every route here is behind
// RequireAuth plus RequireAdmin.
type AdminHandler struct {
	videos *service.VideoService
	auths  *service.AuthService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(videos *service.VideoService, auths *service.AuthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{videos: videos, auths: auths, logger: logger}
}

// HandleListPending returns videos awaiting moderation.
//
// HTTP: GET /api/admin/videos
func (h *AdminHandler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	videos, err := h.videos.ListPending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// HandleApprove moves a pending video to live and stamps published_at.
//
// HTTP: POST /api/admin/videos/{id}/approve
func (h *AdminHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.videos.Approve(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	video, err := h.videos.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "video": video})
}

// HandleReject marks a video rejected.
//
// HTTP: POST /api/admin/videos/{id}/reject
func (h *AdminHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.videos.Reject(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	video, err := h.videos.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "video": video})
}

// HandleDeleteVideo removes a video along with its stored file and, via
// cascades, everything attached to it.
//
// HTTP: DELETE /api/admin/videos/{id}
func (h *AdminHandler) HandleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	if err := h.videos.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleListUsers returns the user directory with live video counts.
//
// HTTP: GET /api/admin/users
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auths.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
