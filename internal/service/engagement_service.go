package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"boostly/internal/middleware"
	"boostly/internal/models"
	"boostly/internal/notifications"
	"boostly/internal/observability"
	"boostly/internal/repository"
	"boostly/internal/textcodec"
	"boostly/internal/validation"
)

// LikePublisher announces accepted likes to the owning company.
type LikePublisher interface {
	PublishPostLiked(ctx context.Context, ev notifications.PostLiked) error
}

// EngagementService creates posts and records likes.
type EngagementService struct {
	posts     repository.PostRepository
	likes     repository.LikeRepository
	publisher LikePublisher
	now       func() time.Time
}

// CreatePostInput is the payload for CreatePost.
type CreatePostInput struct {
	CompanyID   uint
	MediaURL    string
	Description string
}

func NewEngagementService(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	publisher LikePublisher,
	now func() time.Time,
) *EngagementService {
	if now == nil {
		now = time.Now
	}
	return &EngagementService{
		posts:     posts,
		likes:     likes,
		publisher: publisher,
		now:       now,
	}
}

// CreatePost stores a new post with zero boost and returns its id.
func (s *EngagementService) CreatePost(ctx context.Context, in CreatePostInput) (uint, error) {
	ctx, span := observability.StartSpan(ctx, "EngagementService", "CreatePost")
	defer span.End()

	mediaURL := strings.TrimSpace(in.MediaURL)
	if mediaURL == "" || strings.TrimSpace(in.Description) == "" {
		return 0, models.NewValidationError("mediaUrl and post_description are required")
	}
	if err := validation.ValidateMediaURL(mediaURL); err != nil {
		return 0, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return 0, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		CompanyID:   in.CompanyID,
		MediaURL:    mediaURL,
		Description: textcodec.Encode(in.Description),
		PostedAt:    s.now().UTC(),
		Boost:       0,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return 0, err
	}
	return post.ID, nil
}

// LikePost records that companyID likes postID. A second like by the same
// company is a Conflict; the ledger's primary key settles concurrent attempts.
func (s *EngagementService) LikePost(ctx context.Context, postID, companyID uint) error {
	ctx, span := observability.StartSpan(ctx, "EngagementService", "LikePost")
	defer span.End()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			observability.LikesRejected.WithLabelValues("not_found").Inc()
		}
		return err
	}

	liked, err := s.likes.HasLiked(ctx, postID, companyID)
	if err != nil {
		return err
	}
	if liked {
		observability.LikesRejected.WithLabelValues("duplicate").Inc()
		return models.NewConflictError("Post already liked")
	}

	likedAt := s.now().UTC()
	if err := s.likes.Append(ctx, postID, companyID, likedAt); err != nil {
		if models.IsCode(err, models.CodeConflict) {
			observability.LikesRejected.WithLabelValues("duplicate").Inc()
		}
		return err
	}
	observability.LikesRecorded.Inc()

	if err := s.posts.RefreshBoost(ctx, postID); err != nil {
		middleware.Logger.WarnContext(ctx, "boost refresh after like failed; next read reconciles",
			slog.Uint64("post_id", uint64(postID)),
			slog.String("error", err.Error()),
		)
	} else {
		observability.BoostReconciliations.WithLabelValues("like").Inc()
	}

	if s.publisher != nil {
		if err := s.publisher.PublishPostLiked(ctx, notifications.PostLiked{
			PostID:         postID,
			OwnerCompanyID: post.CompanyID,
			LikedBy:        companyID,
			LikedAt:        likedAt,
		}); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish post_liked event",
				slog.Uint64("post_id", uint64(postID)),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}
