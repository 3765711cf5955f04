package router

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-graph/internal/application"
	"github.com/oksasatya/go-blog-graph/internal/container"
	pginfra "github.com/oksasatya/go-blog-graph/internal/infrastructure/postgres"
	"github.com/oksasatya/go-blog-graph/internal/infrastructure/search"
	"github.com/oksasatya/go-blog-graph/internal/infrastructure/session"
	"github.com/oksasatya/go-blog-graph/internal/interface/gql"
	handlers "github.com/oksasatya/go-blog-graph/internal/interface/http"
	"github.com/oksasatya/go-blog-graph/internal/interface/middleware"
	"github.com/oksasatya/go-blog-graph/internal/router/modules"
	"github.com/oksasatya/go-blog-graph/pkg/helpers"
)

type APIDeps struct {
	Auth     *application.AuthService
	Authors  *application.AuthorService
	Articles *application.ArticleService
	Handler  *handlers.GraphQLHandler
}

func buildAPIDeps() (APIDeps, error) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	authors := pginfra.NewAuthorRepository(pool)
	posts := pginfra.NewPostRepository(pool)
	badges := pginfra.NewBadgeRepository(pool)

	var sessions application.SessionStore
	if rdb := container.GetRedis(); rdb != nil {
		sessions = session.NewRedisStore(rdb, cfg.JWTRefreshExpiration)
	}

	var index application.PostIndexer
	if es := container.GetES(); es != nil {
		idx := search.NewPostIndex(es, cfg.ESPostsIndex)
		if err := idx.EnsureIndex(context.Background()); err != nil {
			logger.WithError(err).Warn("elasticsearch index not ready, search may return nothing")
		}
		index = idx
	}

	images := helpers.NewImageProcessor(cfg.UploadMaxBytes, cfg.ImageMaxDimension)
	images.MaxPixels = cfg.ImageMaxPixels
	uploader := application.NewImageUploader(container.GetMedia(), images)

	auth := application.NewAuthService(users, container.GetJWT(), sessions, logger)
	authorSvc := application.NewAuthorService(authors, uploader, logger)
	articles := application.NewArticleService(users, authors, posts, badges, uploader, index, logger)
	articles.CreateRequiresOwner = cfg.PostCreateRequiresOwner

	schema, err := gql.NewSchema(gql.NewResolver(auth, authorSvc, articles, logger))
	if err != nil {
		return APIDeps{}, err
	}
	handler := handlers.NewGraphQLHandler(schema, logger, cfg.CookieDomain, cfg.CookieSecure, cfg.UploadMaxBytes)

	return APIDeps{Auth: auth, Authors: authorSvc, Articles: articles, Handler: handler}, nil
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) error {
	cfg := container.GetConfig()
	deps, err := buildAPIDeps()
	if err != nil {
		return err
	}

	r.Use(middleware.Identity(deps.Auth, container.GetLogger(), cfg.JWTAuthHeaderPrefix, "Bearer"))
	r.Add(modules.NewGraphQLModule(deps.Handler))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
	if cfg.MediaBackend == "local" {
		r.AddRoot(modules.NewMediaModule(cfg.MediaPrefix(), cfg.MediaRoot))
	}
	container.GetLogger().WithFields(logrus.Fields{
		"sessions": container.GetRedis() != nil,
		"search":   container.GetES() != nil,
		"media":    cfg.MediaBackend,
	}).Info("modules registered")
	return nil
}
