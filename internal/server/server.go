// Package server contains the HTTP and WebSocket handlers for the API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "vidtube/docs" // swagger docs
	"vidtube/internal/auth"
	"vidtube/internal/cache"
	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/featureflags"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/repository"
	"vidtube/internal/service"
	"vidtube/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	tokens       *auth.TokenManager
	uploader     storage.Uploader
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	authService         *service.AuthService
	userService         *service.UserService
	videoService        *service.VideoService
	commentService      *service.CommentService
	tweetService        *service.TweetService
	likeService         *service.LikeService
	subscriptionService *service.SubscriptionService
	playlistService     *service.PlaylistService
	dashboardService    *service.DashboardService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	var prober storage.Prober
	if cfg.FFProbeEnabled {
		prober = storage.FFProbe{Timeout: 30 * time.Second}
	}
	uploader, err := storage.NewMinIOStorage(cfg, prober)
	if err != nil {
		return nil, fmt.Errorf("object storage setup failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), uploader)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB, Redis and storage.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, uploader storage.Uploader) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("uploader is required")
	}

	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("vidtube-api"),
		uploader:       uploader,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		tokens: auth.NewTokenManager(auth.TokenConfig{
			AccessSecret:  cfg.JWTSecret,
			RefreshSecret: cfg.RefreshTokenSecret,
			AccessTTL:     cfg.AccessTokenTTL,
			RefreshTTL:    cfg.RefreshTokenTTL,
		}, redisClient),
	}

	// Activity events need Redis pub/sub; without it they are dropped.
	var publisher service.ActivityPublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		publisher = s.notifier
	}

	s.authService = service.NewAuthService(userRepo, s.tokens, uploader)
	s.userService = service.NewUserService(userRepo, historyRepo, uploader)
	s.videoService = service.NewVideoService(videoRepo, historyRepo, uploader).WithFeatureFlags(s.featureFlags)
	s.commentService = service.NewCommentService(commentRepo, videoRepo, publisher)
	s.tweetService = service.NewTweetService(tweetRepo, userRepo)
	s.likeService = service.NewLikeService(likeRepo, videoRepo, commentRepo, tweetRepo, publisher)
	s.subscriptionService = service.NewSubscriptionService(subRepo, userRepo, publisher)
	s.playlistService = service.NewPlaylistService(playlistRepo, videoRepo, userRepo)
	s.dashboardService = service.NewDashboardService(videoRepo)

	return s, nil
}

// App builds the fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "VidTube API",
		BodyLimit:    (s.config.UploadMaxSizeMB + 16) * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// errorHandler turns every error that escapes a handler into the error envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	resp := models.NewErrorResponse(err)
	if resp.StatusCode >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}
	return c.Status(resp.StatusCode).JSON(resp)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// swagger UI loads inline scripts
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/v1/swagger")
		},
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api/v1")
	api.Get("/healthcheck", s.HealthCheck)
	api.Get("/swagger/*", swagger.HandlerDefault)

	authed := s.AuthRequired()
	optional := s.OptionalAuth()

	users := api.Group("/users")
	users.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	users.Post("/refresh-token", s.RefreshToken)
	users.Post("/logout", authed, s.Logout)
	users.Post("/change-password", authed, s.ChangePassword)
	users.Get("/current-user", authed, s.GetCurrentUser)
	users.Patch("/update-account", authed, s.UpdateAccount)
	users.Patch("/avatar", authed, s.UpdateAvatar)
	users.Patch("/cover-image", authed, s.UpdateCoverImage)
	users.Get("/c/:username", optional, s.GetChannelProfile)
	users.Get("/history", authed, s.GetWatchHistory)

	videos := api.Group("/videos")
	videos.Get("/", optional, s.GetAllVideos)
	videos.Post("/", authed, s.PublishVideo)
	videos.Patch("/toggle/publish/:videoId", authed, s.TogglePublishStatus)
	videos.Get("/:videoId", optional, s.GetVideoByID)
	videos.Patch("/:videoId", authed, s.UpdateVideo)
	videos.Delete("/:videoId", authed, s.DeleteVideo)

	comments := api.Group("/comments")
	comments.Patch("/c/:commentId", authed, s.UpdateComment)
	comments.Delete("/c/:commentId", authed, s.DeleteComment)
	comments.Get("/:videoId", optional, s.GetVideoComments)
	comments.Post("/:videoId", authed, middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.AddComment)

	tweets := api.Group("/tweets")
	tweets.Post("/", authed, middleware.RateLimit(s.redis, 10, time.Minute, "create_tweet"), s.CreateTweet)
	tweets.Get("/user/:userId", optional, s.GetUserTweets)
	tweets.Patch("/:tweetId", authed, s.UpdateTweet)
	tweets.Delete("/:tweetId", authed, s.DeleteTweet)

	likes := api.Group("/likes", authed)
	likes.Post("/toggle/v/:videoId", s.ToggleVideoLike)
	likes.Post("/toggle/c/:commentId", s.ToggleCommentLike)
	likes.Post("/toggle/t/:tweetId", s.ToggleTweetLike)
	likes.Get("/videos", s.GetLikedVideos)

	subscriptions := api.Group("/subscriptions", authed)
	subscriptions.Post("/c/:channelId", s.ToggleSubscription)
	subscriptions.Get("/c/:channelId", s.GetChannelSubscribers)
	subscriptions.Get("/u/:subscriberId", s.GetSubscribedChannels)

	playlists := api.Group("/playlist")
	playlists.Post("/", authed, s.CreatePlaylist)
	playlists.Get("/user/:userId", optional, s.GetUserPlaylists)
	playlists.Patch("/add/:videoId/:playlistId", authed, s.AddVideoToPlaylist)
	playlists.Patch("/remove/:videoId/:playlistId", authed, s.RemoveVideoFromPlaylist)
	playlists.Get("/:playlistId", optional, s.GetPlaylistByID)
	playlists.Patch("/:playlistId", authed, s.UpdatePlaylist)
	playlists.Delete("/:playlistId", authed, s.DeletePlaylist)

	dashboard := api.Group("/dashboard", authed)
	dashboard.Get("/stats", s.GetChannelStats)
	dashboard.Get("/videos", s.GetChannelVideos)

	api.Get("/features", optional, s.GetFeatureFlags)
	api.Get("/ws", authed, s.requireFeature(featureflags.ActivityStream), s.requireUpgrade, s.ActivityStreamHandler())
}

// HealthCheck reports liveness inside the standard envelope.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, fiber.Map{"status": "OK"}, "Health check passed")
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires the activity hub to Redis and blocks serving HTTP.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.hub != nil && s.notifier != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start activity wiring", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down activity hub", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}
	if replica := database.GetReadDB(); replica != nil {
		if sqlDB, err := replica.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
