package service

import (
	"context"
	"sync"
	"time"

	"boostly/internal/models"
	"boostly/internal/notifications"
)

type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	existsFn        func(context.Context, uint) (bool, error)
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	listByCompanyFn func(context.Context, uint) ([]*models.Post, error)
	refreshBoostFn  func(context.Context, ...uint) error
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error { return s.createFn(ctx, p) }
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListByCompany(ctx context.Context, companyID uint) ([]*models.Post, error) {
	return s.listByCompanyFn(ctx, companyID)
}
func (s *postRepoStub) RefreshBoost(ctx context.Context, ids ...uint) error {
	return s.refreshBoostFn(ctx, ids...)
}

type likeRepoStub struct {
	hasLikedFn func(context.Context, uint, uint) (bool, error)
	appendFn   func(context.Context, uint, uint, time.Time) error
}

func (s *likeRepoStub) HasLiked(ctx context.Context, postID, companyID uint) (bool, error) {
	return s.hasLikedFn(ctx, postID, companyID)
}
func (s *likeRepoStub) Append(ctx context.Context, postID, companyID uint, at time.Time) error {
	return s.appendFn(ctx, postID, companyID, at)
}
func (s *likeRepoStub) CountForPost(context.Context, uint) (int64, error) { return 0, nil }

type companyLookupStub struct {
	byNameFn func(context.Context, string) (*models.Company, error)
}

func (s companyLookupStub) ByName(ctx context.Context, name string) (*models.Company, error) {
	return s.byNameFn(ctx, name)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notifications.PostLiked
	err    error
}

func (p *recordingPublisher) PublishPostLiked(_ context.Context, ev notifications.PostLiked) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
