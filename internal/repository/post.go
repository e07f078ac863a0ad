package repository

import (
	"context"
	"errors"

	"boostly/internal/models"
	"boostly/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts. Reads report the
// live like count as boost; RefreshBoost writes that count back.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Exists(ctx context.Context, id uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListByCompany(ctx context.Context, companyID uint) ([]*models.Post, error)
	RefreshBoost(ctx context.Context, ids ...uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

const liveBoostSelect = "posts.id, posts.company_id, posts.media_url, posts.post_description, posts.posted_at, " +
	"COALESCE(pl.like_count, 0) AS boost"

const likeCountJoin = "LEFT JOIN (SELECT post_id, COUNT(*) AS like_count FROM post_likes GROUP BY post_id) pl ON pl.post_id = posts.id"

// withLiveBoost selects posts with boost replaced by the ledger count. Posts
// without likes keep a boost of 0.
func (r *postRepository) withLiveBoost(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(liveBoostSelect).
		Joins(likeCountJoin)
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("insert", "posts")()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewNotFoundError("Company", post.CompanyID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("select", "posts")()

	var post models.Post
	err := r.withLiveBoost(ctx).Where("posts.id = ?", id).Take(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// ListByCompany returns the company's posts, newest first. Ties on posted_at
// are broken by id so the order is total.
func (r *postRepository) ListByCompany(ctx context.Context, companyID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("select", "posts")()

	var posts []*models.Post
	err := r.withLiveBoost(ctx).
		Where("posts.company_id = ?", companyID).
		Order("posts.posted_at DESC").
		Order("posts.id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// RefreshBoost sets boost for each post to a fresh count of its likes. It
// never increments, so concurrent refreshes converge on the ledger.
func (r *postRepository) RefreshBoost(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	defer observability.TrackQuery("update", "posts")()

	err := r.db.WithContext(ctx).Exec(
		"UPDATE posts SET boost = (SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) WHERE id IN ?",
		ids,
	).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
