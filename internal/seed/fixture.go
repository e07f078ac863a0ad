package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"boostly/internal/middleware"
	"boostly/internal/models"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written scenario: companies with their posts, the
// companies that like each post, and plain accounts.
type Fixture struct {
	Password  string           `yaml:"password"`
	Companies []FixtureCompany `yaml:"companies"`
	Accounts  []FixtureAccount `yaml:"accounts"`
}

// FixtureCompany is a company account and the posts it publishes.
type FixtureCompany struct {
	Name  string        `yaml:"name"`
	Email string        `yaml:"email"`
	Posts []FixturePost `yaml:"posts"`
}

// FixturePost is a post plus the names of the companies that like it.
type FixturePost struct {
	MediaURL    string    `yaml:"media_url"`
	Description string    `yaml:"description"`
	PostedAt    time.Time `yaml:"posted_at"`
	LikedBy     []string  `yaml:"liked_by"`
}

// FixtureAccount is an account without a company.
type FixtureAccount struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// LoadFixtureFile reads and validates a YAML fixture from path.
func LoadFixtureFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return LoadFixture(f)
}

// LoadFixture decodes a YAML fixture. Unknown keys are rejected so typos
// do not silently drop data.
func LoadFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("fixture is empty")
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixture) validate() error {
	if len(fx.Companies) == 0 {
		return errors.New("fixture must declare at least one company")
	}

	known := make(map[string]struct{}, len(fx.Companies))
	for _, c := range fx.Companies {
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Email) == "" {
			return errors.New("fixture companies need a name and an email")
		}
		if _, dup := known[c.Name]; dup {
			return fmt.Errorf("company %q declared twice", c.Name)
		}
		known[c.Name] = struct{}{}
	}

	for _, c := range fx.Companies {
		for i, p := range c.Posts {
			if p.PostedAt.IsZero() {
				return fmt.Errorf("post %d of %q has no posted_at", i+1, c.Name)
			}
			seen := make(map[string]struct{}, len(p.LikedBy))
			for _, liker := range p.LikedBy {
				if _, ok := known[liker]; !ok {
					return fmt.Errorf("post %d of %q is liked by unknown company %q", i+1, c.Name, liker)
				}
				if _, dup := seen[liker]; dup {
					return fmt.Errorf("post %d of %q is liked twice by %q", i+1, c.Name, liker)
				}
				seen[liker] = struct{}{}
			}
		}
	}

	for _, a := range fx.Accounts {
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Email) == "" {
			return errors.New("fixture accounts need a name and an email")
		}
	}
	return nil
}

// ApplyFixture writes fx. Likes are recorded one second after the post unless
// that would be in the future.
func (s *Seeder) ApplyFixture(ctx context.Context, fx *Fixture) (*Result, error) {
	password := fx.Password
	if password == "" {
		password = DefaultPassword
	}
	stored, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash fixture password: %w", err)
	}

	result := &Result{}
	ids := make(map[string]uint, len(fx.Companies))
	for _, c := range fx.Companies {
		company, err := s.createCompany(ctx, c.Name, c.Email, stored)
		if err != nil {
			return nil, err
		}
		ids[c.Name] = company.ID
		result.Companies = append(result.Companies, *company)
	}

	for _, a := range fx.Accounts {
		if err := s.accounts.Create(ctx, &models.Account{Name: a.Name, Email: a.Email, Password: stored}); err != nil {
			return nil, fmt.Errorf("create account %q: %w", a.Name, err)
		}
	}

	now := s.now()
	for _, c := range fx.Companies {
		for _, p := range c.Posts {
			post, err := s.createPost(ctx, ids[c.Name], postSpec{
				MediaURL:    p.MediaURL,
				Description: p.Description,
				PostedAt:    p.PostedAt,
			})
			if err != nil {
				return nil, err
			}

			likedAt := p.PostedAt.Add(time.Second)
			if likedAt.After(now) {
				likedAt = now
			}
			for _, liker := range p.LikedBy {
				if err := s.likes.Append(ctx, post.ID, ids[liker], likedAt.UTC()); err != nil {
					return nil, fmt.Errorf("like post %d as %q: %w", post.ID, liker, err)
				}
				result.Likes++
			}
			post.Boost = int64(len(p.LikedBy))
			result.Posts = append(result.Posts, *post)
		}
	}

	if err := s.refreshAll(ctx, result.Posts); err != nil {
		return nil, err
	}

	middleware.Logger.Info("fixture applied",
		slog.Int("companies", len(result.Companies)),
		slog.Int("accounts", len(fx.Accounts)),
		slog.Int("posts", len(result.Posts)),
		slog.Int("likes", result.Likes))
	return result, nil
}
