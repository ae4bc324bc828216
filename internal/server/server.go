package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"reelmate/internal/config"
	"reelmate/internal/entity"
	"reelmate/internal/jobs"
	"reelmate/internal/metrics"
	"reelmate/internal/middleware"
	"reelmate/pkg/storage"

	activityHttp "reelmate/internal/modules/activity/delivery/http"
	activityRepo "reelmate/internal/modules/activity/repository"
	activityService "reelmate/internal/modules/activity/service"

	listHttp "reelmate/internal/modules/list/delivery/http"
	listRepo "reelmate/internal/modules/list/repository"
	listService "reelmate/internal/modules/list/service"

	mediaHttp "reelmate/internal/modules/media/delivery/http"
	mediaService "reelmate/internal/modules/media/service"
	"reelmate/internal/modules/media/tmdb"

	messageHttp "reelmate/internal/modules/message/delivery/http"
	"reelmate/internal/modules/message/realtime"
	messageRepo "reelmate/internal/modules/message/repository"
	messageService "reelmate/internal/modules/message/service"

	searchService "reelmate/internal/modules/search/service"

	userHttp "reelmate/internal/modules/user/delivery/http"
	userRepo "reelmate/internal/modules/user/repository"
	userService "reelmate/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	engine    *gin.Engine
	cfg       *config.Config
	log       *logrus.Logger
	scheduler *jobs.Scheduler
	limiter   *middleware.RateLimiter
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) (*Server, error) {
	if err := entity.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	var imageStorage storage.ImageStorage
	if cfg.CloudinaryURL != "" {
		var err error
		imageStorage, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryUploadFolder)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("CLOUDINARY_URL is not set, avatar uploads are disabled")
	}

	meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	userIndex := searchService.NewMeiliSearchService(meiliClient, log)

	var broker realtime.Broker
	if redisClient != nil {
		broker = realtime.NewRedisBroker(redisClient)
	} else {
		log.Warn("REDIS_URL is not set, chat events are delivered in-process only")
		broker = realtime.NewMemoryBroker()
	}

	tmdbClient := tmdb.NewClient(tmdb.ClientConfig{
		BaseURL:  cfg.TMDBBaseURL,
		APIKey:   cfg.TMDBAPIKey,
		Timeout:  cfg.TMDBTimeout,
		Logger:   log,
		Observer: collector,
	})
	mediaSvc := mediaService.NewMediaService(tmdbClient, cfg.TMDBImageBaseURL)
	mediaHandler := mediaHttp.NewMediaHandler(mediaSvc)

	userRepository := userRepo.NewUserRepository(db)

	activityRepository := activityRepo.NewActivityRepository(db)
	activitySvc := activityService.NewActivityService(activityRepository, userRepository)
	activityHandler := activityHttp.NewActivityHandler(activitySvc)

	authSvc := userService.NewAuthService(userRepository, userIndex, cfg.JWTSecret, cfg.JWTTTL, log)
	authHandler := userHttp.NewAuthHandler(authSvc)

	userSvc := userService.NewUserService(userRepository, activitySvc, userIndex, imageStorage, collector, log)
	userHandler := userHttp.NewUserHandler(userSvc)

	listRepository := listRepo.NewListRepository(db)
	listSvc := listService.NewListService(listRepository, mediaSvc, collector, log)
	listHandler := listHttp.NewListHandler(listSvc)

	messageRepository := messageRepo.NewMessageRepository(db)
	messageSvc := messageService.NewMessageService(messageRepository, userRepository, broker, collector, log)
	messageHandler := messageHttp.NewMessageHandler(messageSvc, broker, cfg.AllowedOrigins, log)

	scheduler := jobs.NewScheduler(log)
	reindex := searchService.NewReindexJob(userRepository, userIndex, cfg.ReindexSchedule, log)
	if err := scheduler.Register(reindex); err != nil {
		return nil, err
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authMiddleware.RequireAuth(), authHandler.Logout)
	}

	media := api.Group("/media")
	media.Use(limiter.Middleware())
	{
		media.GET("/discover", mediaHandler.Discover)
		media.GET("/search", mediaHandler.Search)
		media.GET("/details", mediaHandler.Details)
		media.GET("/season", mediaHandler.Season)
		media.GET("/genres", mediaHandler.GetGenres)
		media.GET("/spoiler-search", mediaHandler.SpoilerSearch)
	}
	api.GET("/shows/discover", limiter.Middleware(), mediaHandler.ShowsDiscover)

	api.GET("/users/search", userHandler.Search)
	api.GET("/users/:username", authMiddleware.OptionalAuth(), userHandler.Get)

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/list", listHandler.List)
		protected.GET("/list/entry", listHandler.GetEntry)
		protected.POST("/list", listHandler.Add)
		protected.POST("/list/remove", listHandler.Remove)
		protected.PUT("/list/status", listHandler.SetStatus)

		protected.PUT("/users/me", userHandler.UpdateProfile)
		protected.POST("/users/:username/follow", userHandler.ToggleFollow)

		protected.GET("/activity/feed", activityHandler.Feed)

		protected.GET("/messages/chats", messageHandler.GetChats)
		protected.GET("/messages/chat/:username", messageHandler.GetChat)
		protected.PUT("/messages/chat/:username/read", messageHandler.MarkChatRead)
		protected.POST("/messages", messageHandler.Send)
		protected.PUT("/messages/:id/read", messageHandler.MarkRead)
		protected.PUT("/messages/:id/reveal", messageHandler.RevealSpoiler)
		protected.GET("/messages/ws", messageHandler.HandleWebSocket)
	}

	return &Server{
		engine:    router,
		cfg:       cfg,
		log:       log,
		scheduler: scheduler,
		limiter:   limiter,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests and stops background jobs.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.scheduler.Start()
	go func() {
		if _, err := s.scheduler.RunByName(ctx, searchService.ReindexJobName); err != nil {
			s.log.WithError(err).Warn("initial user reindex failed")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.shutdownBackground(context.Background())
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s.log.Info("shutting down server")
	err := srv.Shutdown(shutdownCtx)
	s.shutdownBackground(shutdownCtx)
	return err
}

func (s *Server) shutdownBackground(ctx context.Context) {
	s.limiter.Stop()
	s.scheduler.Stop(ctx)
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// Migrate creates or updates the schema for every entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Follow{},
		&entity.Account{},
		&entity.Session{},
		&entity.VerificationToken{},
		&entity.WatchlistEntry{},
		&entity.Activity{},
		&entity.Chat{},
		&entity.Message{},
	)
}
