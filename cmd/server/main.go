package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/koreklar/koreskole-api/api/swagger"
	"github.com/koreklar/koreskole-api/internal/client"
	"github.com/koreklar/koreskole-api/internal/handler"
	"github.com/koreklar/koreskole-api/internal/middleware"
	"github.com/koreklar/koreskole-api/internal/models"
	"github.com/koreklar/koreskole-api/internal/repository"
	"github.com/koreklar/koreskole-api/internal/service"
	"github.com/koreklar/koreskole-api/pkg/cache"
	"github.com/koreklar/koreskole-api/pkg/config"
	"github.com/koreklar/koreskole-api/pkg/database"
	"github.com/koreklar/koreskole-api/pkg/logger"
	"github.com/koreklar/koreskole-api/pkg/mail"
	"github.com/koreklar/koreskole-api/pkg/media"
	corsmiddleware "github.com/koreklar/koreskole-api/pkg/middleware/cors"
	reqidmiddleware "github.com/koreklar/koreskole-api/pkg/middleware/requestid"
	"github.com/koreklar/koreskole-api/pkg/storage"
)

// @title Koreskole API
// @version 1.0.0
// @description Backend for the driving school website and its admin dashboard
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.CourseFeed.CacheTTL, logr)

	mediaStore, err := storage.NewLocalStorage(cfg.Media.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init media storage", "error", err)
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	normalizer := media.NewNormalizer(media.DefaultSize)
	mailer := mail.NewSMTPSender(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}, logr)

	translator := client.NewTranslator(client.TranslatorConfig{
		BaseURL: cfg.Translator.BaseURL,
		AuthKey: cfg.Translator.AuthKey,
		Timeout: cfg.Translator.Timeout,
	})
	courseList := client.NewCourseList(client.CourseListConfig{
		URL:     cfg.CourseFeed.URL,
		Timeout: cfg.CourseFeed.Timeout,
	}, logr)

	var socialFeed service.SocialPublisher
	if cfg.SocialFeed.Enabled {
		socialFeed = client.NewSocialFeed(client.SocialFeedConfig{
			BaseURL:     cfg.SocialFeed.BaseURL,
			AccessToken: cfg.SocialFeed.AccessToken,
			Timeout:     cfg.SocialFeed.Timeout,
		})
	}

	newsRepo := repository.NewNewsRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	memberRepo := repository.NewMemberRepository(db)

	authSvc := service.NewAuthService(memberRepo, cfg.JWT, logr)
	memberSvc := service.NewMemberService(memberRepo, logr)
	newsSvc := service.NewNewsService(newsRepo, translator, mediaStore, normalizer, socialFeed, cfg.PublicBaseURL, service.MediaLimits{
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		MaxFiles:       cfg.Media.MaxFilesPerRecord,
	}, logr)
	reviewSvc := service.NewReviewService(reviewRepo, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, mediaStore, normalizer, logr)
	packageSvc := service.NewPackageService(packageRepo, logr)
	requestSvc := service.NewRequestService(requestRepo, mediaStore, signer, logr)
	contactSvc := service.NewContactService(requestRepo, mailer, cfg.Mail.AdminAddress, logr)
	applicationSvc := service.NewApplicationService(requestRepo, mediaStore, mailer, cfg.Mail.AdminAddress, logr)
	courseSvc := service.NewCourseService(courseList, cacheSvc, metricsSvc, cfg.CourseFeed.CacheTTL, logr)

	var analyticsSvc *service.AnalyticsService
	if cfg.Analytics.Enabled {
		analyticsClient := client.NewAnalytics(client.AnalyticsConfig{
			BaseURL: cfg.Analytics.BaseURL,
			SiteID:  cfg.Analytics.SiteID,
			APIKey:  cfg.Analytics.APIKey,
			Timeout: cfg.Analytics.Timeout,
		})
		analyticsSvc = service.NewAnalyticsService(analyticsClient, cacheSvc, metricsSvc, cfg.Analytics.CacheTTL, logr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportSvc = service.NewExportService(requestRepo, exportStore, signer, cfg.Exports.WorkerConcurrency, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
		go cleanupExports(ctx, exportStore, cfg.Exports.CleanupInterval, cfg.Exports.SignedURLTTL, logr)
	}

	router := buildRouter(cfg, logr, metricsSvc, routerDeps{
		auth:         handler.NewAuthHandler(authSvc),
		news:         handler.NewNewsHandler(newsSvc),
		reviews:      handler.NewReviewHandler(reviewSvc),
		instructors:  handler.NewInstructorHandler(instructorSvc),
		packages:     handler.NewPackageHandler(packageSvc),
		requests:     handler.NewRequestHandler(requestSvc, mediaStore),
		members:      handler.NewMemberHandler(memberSvc),
		courses:      handler.NewCourseHandler(courseSvc),
		contact:      handler.NewContactHandler(contactSvc),
		applications: handler.NewApplicationHandler(applicationSvc),
		metrics:      handler.NewMetricsHandler(metricsSvc),
		authSvc:      authSvc,
	})
	if analyticsSvc != nil {
		registerAnalyticsRoutes(router, cfg, authSvc, handler.NewAnalyticsHandler(analyticsSvc))
	}
	if exportSvc != nil {
		registerExportRoutes(router, cfg, authSvc, handler.NewExportHandler(exportSvc))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

type routerDeps struct {
	auth         *handler.AuthHandler
	news         *handler.NewsHandler
	reviews      *handler.ReviewHandler
	instructors  *handler.InstructorHandler
	packages     *handler.PackageHandler
	requests     *handler.RequestHandler
	members      *handler.MemberHandler
	courses      *handler.CourseHandler
	contact      *handler.ContactHandler
	applications *handler.ApplicationHandler
	metrics      *handler.MetricsHandler
	authSvc      *service.AuthService
}

func buildRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", deps.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Stored news and instructor images are public assets. CVs live under
	// the same root and stay behind signed admin downloads.
	r.Static("/uploads/news", filepath.Join(cfg.Media.StorageDir, "news"))
	r.Static("/uploads/instructors", filepath.Join(cfg.Media.StorageDir, "instructors"))

	api := r.Group(cfg.APIPrefix)

	// Public site endpoints.
	api.POST("/auth/login", deps.auth.Login)
	api.POST("/auth/refresh", deps.auth.Refresh)
	api.GET("/news", deps.news.List)
	api.GET("/news/:id", deps.news.Get)
	api.GET("/reviews", deps.reviews.ListPublic)
	api.GET("/instructors", deps.instructors.ListPublic)
	api.GET("/packages", deps.packages.List)
	api.GET("/courses", deps.courses.Upcoming)
	api.POST("/contact", deps.contact.Submit)
	api.POST("/applications", deps.applications.Submit)

	// Dashboard endpoints behind JWT.
	admin := api.Group("/admin", middleware.JWT(deps.authSvc))
	admin.POST("/auth/logout", deps.auth.Logout)
	admin.GET("/auth/me", deps.auth.Me)

	editors := admin.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleEditor))
	editors.POST("/news", deps.news.Create)
	editors.PUT("/news/:id", deps.news.Update)
	editors.DELETE("/news/:id", deps.news.Delete)

	editors.GET("/reviews", deps.reviews.ListAll)
	editors.GET("/reviews/:id", deps.reviews.Get)
	editors.POST("/reviews", deps.reviews.Create)
	editors.PUT("/reviews/:id", deps.reviews.Update)
	editors.DELETE("/reviews/:id", deps.reviews.Delete)

	editors.GET("/instructors", deps.instructors.ListAll)
	editors.GET("/instructors/:id", deps.instructors.Get)
	editors.POST("/instructors", deps.instructors.Create)
	editors.PUT("/instructors/:id", deps.instructors.Update)
	editors.DELETE("/instructors/:id", deps.instructors.Delete)

	editors.GET("/packages/:id", deps.packages.Get)
	editors.POST("/packages", deps.packages.Create)
	editors.PUT("/packages/:id", deps.packages.Update)
	editors.DELETE("/packages/:id", deps.packages.Delete)
	editors.GET("/features", deps.packages.ListFeatures)
	editors.POST("/features", deps.packages.CreateFeature)

	editors.GET("/requests", deps.requests.List)
	editors.GET("/requests/:id", deps.requests.Get)
	editors.PUT("/requests/:id/status", deps.requests.UpdateStatus)
	editors.GET("/requests/:id/notes", deps.requests.ListNotes)
	editors.POST("/requests/:id/notes", deps.requests.AddNote)
	editors.POST("/requests/:id/cv-link", deps.requests.CVLink)
	editors.GET("/requests/cv-download", deps.requests.DownloadCV)

	admins := admin.Group("", middleware.RequireRoles(models.RoleAdmin))
	admins.DELETE("/requests/:id", deps.requests.Delete)
	admins.GET("/members", deps.members.List)
	admins.GET("/members/:id", deps.members.Get)
	admins.POST("/members", deps.members.Create)
	admins.PUT("/members/:id", deps.members.Update)
	admins.PUT("/members/:id/password", deps.members.ChangePassword)
	admins.DELETE("/members/:id", deps.members.Deactivate)

	return r
}

func registerAnalyticsRoutes(r *gin.Engine, cfg *config.Config, authSvc *service.AuthService, h *handler.AnalyticsHandler) {
	group := r.Group(cfg.APIPrefix+"/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin, models.RoleEditor))
	group.GET("/analytics/summary", h.Summary)
}

func registerExportRoutes(r *gin.Engine, cfg *config.Config, authSvc *service.AuthService, h *handler.ExportHandler) {
	group := r.Group(cfg.APIPrefix+"/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	group.POST("/exports", h.Create)
	group.GET("/exports/:id", h.Get)
	group.GET("/exports/download", h.Download)
}

func cleanupExports(ctx context.Context, store *storage.LocalStorage, interval, ttl time.Duration, logr *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.CleanupOlderThan(ttl)
			if err != nil {
				logr.Sugar().Warnw("export cleanup failed", "error", err)
				continue
			}
			if len(deleted) > 0 {
				logr.Sugar().Infow("expired exports removed", "count", len(deleted))
			}
		}
	}
}
