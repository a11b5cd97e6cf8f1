package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/boardnomore/internal/auth"
	"github.com/sakif/boardnomore/internal/service"
)

// CommentHandler serves the top-level comment routes. Creation and listing
// are nested under sessions (see SessionHandler); editing and deletion
// address a comment directly by its own ID.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type updateCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// HandleUpdate edits a comment's text. Author only.
//
// HTTP: PUT /api/comments/{id}
// Auth: Required
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	comment, err := h.comments.Update(r.Context(), r.PathValue("id"), userID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

// HandleDelete removes a comment. Author or session host.
//
// HTTP: DELETE /api/comments/{id}
// Auth: Required
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.comments.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
