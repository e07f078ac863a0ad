package repository

import (
	"context"
	"time"

	"boostly/internal/models"
	"boostly/internal/observability"

	"gorm.io/gorm"
)

// LikeRepository is the append-only like ledger. The (post_id, company_id)
// primary key is the authority on at-most-one like.
type LikeRepository interface {
	HasLiked(ctx context.Context, postID, companyID uint) (bool, error)
	Append(ctx context.Context, postID, companyID uint, likedAt time.Time) error
	CountForPost(ctx context.Context, postID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like ledger repository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) HasLiked(ctx context.Context, postID, companyID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LikeEvent{}).
		Where("post_id = ? AND company_id = ?", postID, companyID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Append records one like. A duplicate (post, company) pair is a Conflict and
// a reference to a missing post or company is NotFound.
func (r *likeRepository) Append(ctx context.Context, postID, companyID uint, likedAt time.Time) error {
	defer observability.TrackQuery("insert", "post_likes")()

	result := r.db.WithContext(ctx).Exec(
		"INSERT INTO post_likes (post_id, company_id, liked_at) VALUES (?, ?, ?) ON CONFLICT (post_id, company_id) DO NOTHING",
		postID, companyID, likedAt,
	)
	if err := result.Error; err != nil {
		switch {
		case isForeignKeyError(err):
			return models.NewNotFoundError("Post", postID)
		case isUniqueConstraintError(err):
			return models.NewConflictError("Post already liked")
		default:
			return models.NewInternalError(err)
		}
	}
	if result.RowsAffected == 0 {
		return models.NewConflictError("Post already liked")
	}
	return nil
}

func (r *likeRepository) CountForPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LikeEvent{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
