package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/opensourceavatars/avatar-site/internal/docs"
	"github.com/opensourceavatars/avatar-site/internal/i18n"
	"github.com/opensourceavatars/avatar-site/internal/sitemap"
	"github.com/opensourceavatars/avatar-site/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Options struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	Store   storage.Store
	Sitemap *sitemap.Generator
	Locales *i18n.Set
	Docs    *docs.Library
	// Gateway is the Arweave gateway used for model and thumbnail links.
	Gateway string
	Logger  zerolog.Logger
}

type Server struct {
	router *gin.Engine
	server *http.Server
}

func NewServer(opts Options) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(opts.Logger))

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Accept-Language"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	handler := NewHandler(opts.Store, opts.Gateway, opts.Logger)
	site := NewSiteHandler(opts.Sitemap, opts.Locales, opts.Docs, opts.Logger)

	// Crawler-facing routes answer HEAD as well as GET
	for _, route := range []struct {
		path    string
		handler gin.HandlerFunc
	}{
		{"/", site.RedirectRoot},
		{"/sitemap.xml", site.SitemapXML},
		{"/sitemap.json", site.SitemapJSON},
		{"/robots.txt", site.Robots},
	} {
		router.GET(route.path, route.handler)
		router.HEAD(route.path, route.handler)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup routes
	api := router.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Avatar routes
		avatars := api.Group("/avatars")
		{
			avatars.GET("", handler.ListAvatars)
			avatars.GET("/search", handler.SearchAvatars)
			avatars.GET("/:id", handler.GetAvatar)
			avatars.GET("/:id/download", handler.DownloadAvatar)
		}

		// Collection routes
		collections := api.Group("/collections")
		{
			collections.GET("", handler.ListCollections)
			collections.GET("/:id", handler.GetCollection)
			collections.GET("/:id/avatars", handler.GetAvatarsByCollection)
		}

		// Documentation routes
		docsGroup := api.Group("/docs")
		{
			docsGroup.GET("/:locale", site.ListDocs)
			docsGroup.GET("/:locale/:slug", site.GetDoc)
		}
	}

	// Localized pages have no fixed route table; they are resolved from
	// the configured page list.
	router.NoRoute(site.ServePage)

	return &Server{
		router: router,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", opts.Port),
			Handler:      router,
			ReadTimeout:  orDefault(opts.ReadTimeout, 15*time.Second),
			WriteTimeout: orDefault(opts.WriteTimeout, 15*time.Second),
			IdleTimeout:  orDefault(opts.IdleTimeout, 60*time.Second),
		},
	}
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
