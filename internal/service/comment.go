package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/boardnomore/internal/apperror"
	"github.com/sakif/boardnomore/internal/model"
	"github.com/sakif/boardnomore/internal/repository"
)

// MaxCommentLength bounds a single comment.
const MaxCommentLength = 2000

// CommentService handles discussion threads on sessions.
//
// Comments have a lifecycle independent from the session's attendance
// state — anyone logged in can comment, attendee or not — but they die
// with the session (cascade delete in the store).
type CommentService struct {
	comments repository.CommentRepository
	sessions repository.SessionRepository
	logger   *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(
	comments repository.CommentRepository,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		sessions: sessions,
		logger:   logger,
	}
}

// Post adds a comment to a session. parentID is optional; when set, the
// parent must be a comment on the same session. Replies are stored with
// their parent reference but served as a flat log.
func (s *CommentService) Post(ctx context.Context, sessionID, authorID, text, parentID string) (*model.Comment, error) {
	if authorID == "" {
		return nil, apperror.Unauthorized("must be logged in to comment")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "comment text is required")
	}
	if len(text) > MaxCommentLength {
		return nil, apperror.ValidationFailed("text",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}

	if parentID != "" {
		parent, err := s.comments.GetCommentByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent.SessionID != sessionID {
			return nil, apperror.ValidationFailed("parentCommentId",
				"parent comment belongs to a different session")
		}
	}

	comment := &model.Comment{
		SessionID:       sessionID,
		UserID:          authorID,
		Text:            text,
		ParentCommentID: parentID,
	}

	if err := s.comments.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("sessionID", sessionID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment posted",
		slog.String("id", comment.ID),
		slog.String("sessionID", sessionID),
		slog.String("authorID", authorID),
	)

	return comment, nil
}

// ListBySession returns a session's comments as a flat log, oldest first.
// Returns ErrNotFound for a deleted or unknown session.
func (s *CommentService) ListBySession(ctx context.Context, sessionID string) ([]model.Comment, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.comments.ListBySession(ctx, sessionID)
}

// Update edits a comment's text. Author only.
func (s *CommentService) Update(ctx context.Context, commentID, requesterID, text string) (*model.Comment, error) {
	if requesterID == "" {
		return nil, apperror.Unauthorized("must be logged in to edit a comment")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "comment text is required")
	}
	if len(text) > MaxCommentLength {
		return nil, apperror.ValidationFailed("text",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != requesterID {
		return nil, apperror.Forbidden("only the author can edit this comment")
	}

	comment.Text = text
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("updating comment: %w", err)
	}

	return comment, nil
}

// Delete removes a comment. Allowed for the comment's author and for the
// host of the session it belongs to (hosts moderate their own sessions).
func (s *CommentService) Delete(ctx context.Context, commentID, requesterID string) error {
	if requesterID == "" {
		return apperror.Unauthorized("must be logged in to delete a comment")
	}

	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != requesterID {
		session, err := s.sessions.GetByID(ctx, comment.SessionID)
		if err != nil {
			return err
		}
		if session.HostID != requesterID {
			return apperror.Forbidden("only the author or the session host can delete this comment")
		}
	}

	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	s.logger.Info("comment deleted",
		slog.String("id", commentID),
		slog.String("requesterID", requesterID),
	)
	return nil
}
