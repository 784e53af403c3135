package handler

import (
	"log/slog"
	"net/http"

	"github.com/tiktik/tiktik/internal/auth"
	"github.com/tiktik/tiktik/internal/model"
	"github.com/tiktik/tiktik/internal/service"
)

// CommentHandler serves the comment endpoints.
type CommentHandler struct {
	social *service.SocialService
	logger *slog.Logger
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(social *service.SocialService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{social: social, logger: logger}
}

// HandleList returns a video's comments, newest first. Replies come back
// flat with parentId set; the client builds the thread.
//
// HTTP: GET /api/comments/{videoId}
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.social.ListComments(r.Context(), r.PathValue("videoId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// HandleCreate posts a comment, optionally as a reply via parentId.
//
// HTTP: POST /api/comments (behind RequireAuth)
// Body: {"videoId":"...","text":"...","parentId":"..."}
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		VideoID  string `json:"videoId"`
		Text     string `json:"text"`
		ParentID string `json:"parentId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.social.AddComment(r.Context(), userID, req.VideoID, req.Text, req.ParentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "comment": comment})
}

// HandleDelete removes a comment and its reply subtree. Author only.
//
// HTTP: DELETE /api/comments/{id} (behind RequireAuth)
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.social.DeleteComment(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleReact toggles a like or dislike on a comment.
//
// HTTP: POST /api/comments/{id}/like (behind RequireAuth)
func (h *CommentHandler) HandleReact(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req struct {
		Type string `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	action, err := h.social.ReactToComment(r.Context(), userID, r.PathValue("id"), model.ReactionKind(req.Type))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "action": string(action)})
}
