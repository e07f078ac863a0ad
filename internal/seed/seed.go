// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"boostly/internal/middleware"
	"boostly/internal/models"
	"boostly/internal/repository"
	"boostly/internal/security"
	"boostly/internal/textcodec"

	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account receives unless overridden.
const DefaultPassword = "password123"

// Options configures a generated seed run.
type Options struct {
	Companies       int
	PostsPerCompany int
	MaxLikesPerPost int
	// RandomSeed makes a run reproducible. Zero picks a time-based seed.
	RandomSeed int64
	Password   string
}

// Result summarises what a seed run created.
type Result struct {
	Companies []models.Company
	Posts     []models.Post
	Likes     int
}

// Seeder writes demo companies, posts and likes through the repositories, so
// seeded data obeys the same constraints as API traffic.
type Seeder struct {
	db       *gorm.DB
	hasher   security.PasswordHasher
	accounts repository.AccountRepository
	posts    repository.PostRepository
	likes    repository.LikeRepository
	now      func() time.Time
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, hasher security.PasswordHasher) *Seeder {
	return &Seeder{
		db:       db,
		hasher:   hasher,
		accounts: repository.NewAccountRepository(db),
		posts:    repository.NewPostRepository(db),
		likes:    repository.NewLikeRepository(db),
		now:      time.Now,
	}
}

// ClearAll removes every row the seeder can create, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	middleware.Logger.Info("clearing existing data")
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.LikeEvent{}, &models.Post{}, &models.Company{}, &models.Account{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Seed creates opts.Companies company accounts, each with opts.PostsPerCompany
// posts, then has random other companies like each post.
func (s *Seeder) Seed(ctx context.Context, opts Options) (*Result, error) {
	if opts.Companies <= 0 {
		return nil, fmt.Errorf("companies must be positive, got %d", opts.Companies)
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	randomSeed := opts.RandomSeed
	if randomSeed == 0 {
		randomSeed = time.Now().UnixNano()
	}
	f := newFactory(randomSeed, s.now())
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(randomSeed))

	stored, err := s.hasher.Hash(opts.Password)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	result := &Result{}
	for i := 0; i < opts.Companies; i++ {
		name, email := f.companyIdentity()
		company, err := s.createCompany(ctx, name, email, stored)
		if err != nil {
			return nil, err
		}
		result.Companies = append(result.Companies, *company)
	}
	middleware.Logger.Info("seeded companies", slog.Int("count", len(result.Companies)))

	for _, company := range result.Companies {
		for j := 0; j < opts.PostsPerCompany; j++ {
			spec := f.post()
			post, err := s.createPost(ctx, company.ID, spec)
			if err != nil {
				return nil, err
			}
			result.Posts = append(result.Posts, *post)
		}
	}
	middleware.Logger.Info("seeded posts", slog.Int("count", len(result.Posts)))

	for i, post := range result.Posts {
		likers := pickLikers(r, result.Companies, post.CompanyID, opts.MaxLikesPerPost)
		for _, liker := range likers {
			likedAt := post.PostedAt.Add(time.Duration(r.Intn(72)+1) * time.Hour)
			if err := s.likes.Append(ctx, post.ID, liker, likedAt); err != nil {
				return nil, fmt.Errorf("like post %d as company %d: %w", post.ID, liker, err)
			}
			result.Likes++
		}
		result.Posts[i].Boost = int64(len(likers))
	}

	if err := s.refreshAll(ctx, result.Posts); err != nil {
		return nil, err
	}
	middleware.Logger.Info("seeded likes", slog.Int("count", result.Likes))

	return result, nil
}

func (s *Seeder) createCompany(ctx context.Context, name, email, storedPassword string) (*models.Company, error) {
	account := &models.Account{Name: name, Email: email, Password: storedPassword}
	company, err := s.accounts.CreateWithCompany(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("create company %q: %w", name, err)
	}
	return company, nil
}

func (s *Seeder) createPost(ctx context.Context, companyID uint, spec postSpec) (*models.Post, error) {
	post := &models.Post{
		CompanyID:   companyID,
		MediaURL:    spec.MediaURL,
		Description: textcodec.Encode(spec.Description),
		Text:        spec.Description,
		PostedAt:    spec.PostedAt.UTC(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post for company %d: %w", companyID, err)
	}
	return post, nil
}

func (s *Seeder) refreshAll(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	if err := s.posts.RefreshBoost(ctx, ids...); err != nil {
		return fmt.Errorf("refresh boost: %w", err)
	}
	return nil
}

// pickLikers returns up to max distinct company ids other than owner.
func pickLikers(r *rand.Rand, companies []models.Company, owner uint, max int) []uint {
	if max <= 0 {
		return nil
	}
	candidates := make([]uint, 0, len(companies))
	for _, c := range companies {
		if c.ID != owner {
			candidates = append(candidates, c.ID)
		}
	}
	r.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	n := r.Intn(max + 1)
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}
