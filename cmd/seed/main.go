// Command seed fills the database with demo companies, posts and likes.
package main

import (
	"context"
	"flag"
	"log"

	"boostly/internal/config"
	"boostly/internal/database"
	"boostly/internal/security"
	"boostly/internal/seed"
)

func main() {
	numCompanies := flag.Int("companies", 20, "Number of company accounts to create")
	postsPerCompany := flag.Int("posts", 5, "Posts per company")
	maxLikes := flag.Int("likes", 8, "Maximum likes per post")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = time based)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixture := flag.String("fixture", "", "Load a YAML fixture instead of generating data")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	hasher, err := security.NewPasswordHasher(cfg)
	if err != nil {
		log.Fatalf("Failed to build password hasher: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, hasher)

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	var result *seed.Result
	if *fixture != "" {
		fx, err := seed.LoadFixtureFile(*fixture)
		if err != nil {
			log.Fatalf("Invalid fixture: %v", err)
		}
		result, err = s.ApplyFixture(ctx, fx)
		if err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
	} else {
		result, err = s.Seed(ctx, seed.Options{
			Companies:       *numCompanies,
			PostsPerCompany: *postsPerCompany,
			MaxLikesPerPost: *maxLikes,
			RandomSeed:      *randomSeed,
		})
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	log.Printf("Seeded %d companies, %d posts, %d likes", len(result.Companies), len(result.Posts), result.Likes)
	if *fixture == "" {
		log.Printf("All seeded accounts use the password: %s", seed.DefaultPassword)
	}
}
