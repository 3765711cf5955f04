package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-blog-graph/config"
	"github.com/oksasatya/go-blog-graph/internal/application"
	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	pginfra "github.com/oksasatya/go-blog-graph/internal/infrastructure/postgres"
	"github.com/oksasatya/go-blog-graph/pkg/helpers"
	"github.com/oksasatya/go-blog-graph/pkg/validation"
)

type demoPost struct {
	title, content string
	status         entity.PublishStatus
	dayOffset      int
	badges         []string
}

var (
	demoPassword = "password123"
	demoBadges   = []string{"go", "graphql", "postgres", "news"}
	demoAuthors  = []struct {
		username, first, last string
		posts                 []demoPost
	}{
		{"demoUser", "Demo", "User", []demoPost{
			{"Hello GraphQL", "First steps with the API.", entity.StatusPublish, -7, []string{"graphql"}},
			{"Go and Postgres", "Pools, migrations and repositories.", entity.StatusPublish, -2, []string{"go", "postgres"}},
			{"Work in progress", "Not ready yet.", entity.StatusDraft, 0, nil},
		}},
		{"jdoe", "John", "Doe", []demoPost{
			{"Release notes", "What changed this week.", entity.StatusPublish, -1, []string{"news", "go"}},
			{"Coming soon", "Scheduled for next week.", entity.StatusPublish, 7, []string{"news"}},
		}},
	}
)

// Seeds demo users, badges and posts. Safe to run repeatedly: anything
// that already exists is left alone.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger("seed", cfg.Env, cfg.LogLevel)
	validation.Init()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	authors := pginfra.NewAuthorRepository(pool)
	posts := pginfra.NewPostRepository(pool)
	badges := pginfra.NewBadgeRepository(pool)
	admin := application.NewAdminService(users, authors, badges, logger)
	articles := application.NewArticleService(users, authors, posts, badges, nil, nil, logger)

	for _, name := range demoBadges {
		if _, err := admin.CreateBadge(ctx, name); err != nil && !errors.Is(err, application.ErrConflict) {
			log.Fatalf("failed to seed badge %q: %v", name, err)
		}
	}

	today := entity.DateOf(time.Now())
	for _, d := range demoAuthors {
		a, err := admin.CreateUser(ctx, application.CreateUserInput{
			Username: d.username, Password: demoPassword, FirstName: d.first, LastName: d.last,
		})
		if errors.Is(err, application.ErrConflict) {
			logger.WithField("username", d.username).Info("user exists, skipping its posts")
			continue
		}
		if err != nil {
			log.Fatalf("failed to seed user %q: %v", d.username, err)
		}

		id := &entity.Identity{UserID: a.UserID, Username: d.username}
		for _, p := range d.posts {
			day := today.AddDate(0, 0, p.dayOffset)
			status := p.status
			names := p.badges
			in := application.PostInput{
				Title:          &p.title,
				Content:        &p.content,
				AuthorUsername: &d.username,
				PublishStatus:  &status,
				PublishDate:    &day,
				BadgeNames:     &names,
			}
			if _, _, err := articles.Create(ctx, id, in); err != nil {
				log.Fatalf("failed to seed post %q: %v", p.title, err)
			}
		}
		logger.Infof("seeded %s with %d posts, password=%s", d.username, len(d.posts), demoPassword)
	}
}
