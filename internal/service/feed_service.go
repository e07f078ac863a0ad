package service

import (
	"context"
	"strings"

	"boostly/internal/models"
	"boostly/internal/observability"
	"boostly/internal/repository"
	"boostly/internal/textcodec"
)

// CompanyLookup resolves a company by its exact name.
type CompanyLookup interface {
	ByName(ctx context.Context, name string) (*models.Company, error)
}

// FeedService reads posts and writes the live like count back as boost.
type FeedService struct {
	companies CompanyLookup
	posts     repository.PostRepository
}

func NewFeedService(companies CompanyLookup, posts repository.PostRepository) *FeedService {
	return &FeedService{companies: companies, posts: posts}
}

// GetPostsForCompany returns the named company's posts, newest first, each with
// its live like count. Stored boosts are reconciled before returning.
func (s *FeedService) GetPostsForCompany(ctx context.Context, companyName string) ([]*models.Post, error) {
	ctx, span := observability.StartSpan(ctx, "FeedService", "GetPostsForCompany")
	defer span.End()

	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, models.NewValidationError("company name is required")
	}

	company, err := s.companies.ByName(ctx, companyName)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByCompany(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, models.NewNotFoundError("Posts for company", companyName)
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		decodeText(p)
	}
	if err := s.posts.RefreshBoost(ctx, ids...); err != nil {
		return nil, err
	}
	observability.BoostReconciliations.WithLabelValues("feed").Inc()

	return posts, nil
}

// GetPost returns one post with its live like count, reconciling its stored boost.
func (s *FeedService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	ctx, span := observability.StartSpan(ctx, "FeedService", "GetPost")
	defer span.End()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.posts.RefreshBoost(ctx, post.ID); err != nil {
		return nil, err
	}
	observability.BoostReconciliations.WithLabelValues("post").Inc()

	decodeText(post)
	return post, nil
}

func decodeText(p *models.Post) {
	p.Text = textcodec.Decode(p.Description)
}
