package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onlyskins/onlyskins/internal/auth"
	"github.com/onlyskins/onlyskins/internal/cache"
	"github.com/onlyskins/onlyskins/internal/comment"
	"github.com/onlyskins/onlyskins/internal/config"
	"github.com/onlyskins/onlyskins/internal/content"
	"github.com/onlyskins/onlyskins/internal/email"
	apierrors "github.com/onlyskins/onlyskins/internal/errors"
	"github.com/onlyskins/onlyskins/internal/logging"
	"github.com/onlyskins/onlyskins/internal/middleware"
	"github.com/onlyskins/onlyskins/internal/monitoring"
	"github.com/onlyskins/onlyskins/internal/notification"
	"github.com/onlyskins/onlyskins/internal/payment"
	"github.com/onlyskins/onlyskins/internal/purchase"
	"github.com/onlyskins/onlyskins/internal/social"
	"github.com/onlyskins/onlyskins/internal/tip"
	"github.com/onlyskins/onlyskins/internal/upload"
)

// APIServer represents the main API server
type APIServer struct {
	config           *config.Config
	router           *gin.Engine
	db               *pgxpool.Pool
	authService      *auth.Service
	contentService   *content.Service
	purchaseService  *purchase.Service
	paymentService   *payment.Service
	socialService    *social.Service
	notifService     *notification.Service
	commentService   *comment.Service
	tipService       *tip.Service
	uploadService    *upload.Service
	jwtAuthenticator *middleware.JWTAuthenticator
	rateLimiter      *middleware.RateLimiter
}

// NewAPIServer creates a new API server instance
func NewAPIServer(cfg *config.Config, db *pgxpool.Pool, redis *cache.Redis) (*APIServer, error) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware in order
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(monitoring.MetricsMiddleware())
	router.Use(logging.RequestLogger())

	mailer := email.NewSender(&cfg.SMTP)
	purchaseService := purchase.NewService(db)
	uploadService, err := upload.NewService(db, cfg.Upload.Dir)
	if err != nil {
		return nil, err
	}

	srv := &APIServer{
		config:           cfg,
		router:           router,
		db:               db,
		authService:      auth.NewService(db, &cfg.JWT, mailer, cfg.Server.AppURL),
		contentService:   content.NewService(db, purchaseService),
		purchaseService:  purchaseService,
		paymentService:   payment.NewService(purchaseService, &cfg.Stripe, cfg.Server.AppURL),
		socialService:    social.NewService(db),
		notifService:     notification.NewService(db),
		commentService:   comment.NewService(db),
		tipService:       tip.NewService(db),
		uploadService:    uploadService,
		jwtAuthenticator: middleware.NewJWTAuthenticator(&cfg.JWT),
		rateLimiter:      middleware.NewRateLimiter(redis),
	}

	srv.setupRoutes()
	return srv, nil
}

// Router returns the gin router
func (s *APIServer) Router() http.Handler {
	return s.router
}

// setupRoutes configures all API routes
func (s *APIServer) setupRoutes() {
	// Health check
	s.router.GET("/health", s.healthCheck)

	// Uploaded media
	s.router.Static("/uploads", s.config.Upload.Dir)

	// Stripe webhook. Registered outside the rate-limited group: Stripe
	// authenticates by signature and retries in bursts, and a 429 here
	// would delay purchase confirmation.
	s.router.POST("/api/stripe/webhook", s.handleStripeWebhook)

	api := s.router.Group("/api")
	api.Use(s.rateLimiter.Limit("api", s.config.RateLimit.APILimit,
		s.config.RateLimit.APIWindow, middleware.ByClientIP))
	{
		// Auth routes (public)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", s.handleSignup)
			authGroup.POST("/login", s.handleLogin)
			authGroup.POST("/forgot-password", s.handleForgotPassword)
			authGroup.POST("/reset-password", s.handleResetPassword)
			authGroup.GET("/me", s.jwtAuthenticator.JWTAuth(), s.handleMe)
		}

		// Profile edit
		api.PUT("/profile", s.jwtAuthenticator.JWTAuth(), s.handleUpdateProfile)

		// User search
		api.GET("/search/users", s.jwtAuthenticator.JWTAuth(), s.handleSearchUsers)

		// Post routes
		posts := api.Group("/posts")
		{
			posts.GET("/dashboard", s.jwtAuthenticator.JWTAuth(), middleware.RequireCreator(), s.handleDashboard)
			posts.POST("", s.jwtAuthenticator.JWTAuth(), middleware.RequireCreator(),
				s.rateLimiter.Limit("post_create", s.config.RateLimit.PostLimit,
					s.config.RateLimit.PostWindow, middleware.ByUserID),
				s.handleCreatePost)
			posts.PATCH("/:id/pin", s.jwtAuthenticator.JWTAuth(), middleware.RequireCreator(), s.handlePinPost)
			posts.DELETE("/:id", s.jwtAuthenticator.JWTAuth(), middleware.RequireCreator(), s.handleDeletePost)
			// Profile view; unlock state depends on the viewer when a token is present
			posts.GET("/:username", s.jwtAuthenticator.OptionalJWTAuth(), s.handleProfile)
		}

		// Pay-per-view routes (direct purchase without the gateway)
		ppv := api.Group("/ppv")
		ppv.Use(s.jwtAuthenticator.JWTAuth())
		{
			ppv.POST("/purchase", s.handleDirectPurchase)
		}

		// Stripe checkout; the webhook is registered above, outside
		// the limiter
		stripeGroup := api.Group("/stripe")
		{
			stripeGroup.POST("/create-checkout-session", s.jwtAuthenticator.JWTAuth(), s.handleCreateCheckoutSession)
		}

		// Purchase listings
		purchases := api.Group("/purchases")
		purchases.Use(s.jwtAuthenticator.JWTAuth())
		{
			purchases.GET("", s.handleListPurchases)
			purchases.GET("/mine", s.handleActivePurchases)
		}

		// Follow routes
		follow := api.Group("/follow")
		follow.Use(s.jwtAuthenticator.JWTAuth())
		{
			follow.POST("/:username", s.handleToggleFollow)
			follow.DELETE("/:username", s.handleUnfollow)
			follow.GET("/status/:username", s.handleFollowStatus)
			follow.GET("/following", s.handleFollowingList)
		}

		// Notification routes
		notifications := api.Group("/notifications")
		notifications.Use(s.jwtAuthenticator.JWTAuth())
		{
			notifications.GET("", s.handleListNotifications)
			notifications.PUT("/read-all", s.handleMarkNotificationsRead)
		}

		// Comment routes
		comments := api.Group("/comments")
		comments.Use(s.jwtAuthenticator.JWTAuth())
		{
			comments.GET("/:postID", s.handleListComments)
			comments.POST("/:postID", s.handleAddComment)
		}

		// Tip routes
		tips := api.Group("/tips")
		tips.Use(s.jwtAuthenticator.JWTAuth())
		{
			tips.POST("/:username", s.handleSendTip)
			tips.GET("/received", s.handleReceivedTips)
		}

		// Upload routes
		uploads := api.Group("/uploads")
		uploads.Use(s.jwtAuthenticator.JWTAuth())
		{
			uploads.POST("", middleware.RequireCreator(), s.handleUploadMedia)
			uploads.POST("/avatar", s.handleUploadAvatar)
			uploads.POST("/banner", s.handleUploadBanner)
		}
	}
}

// Health check handler
func (s *APIServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "api",
	})
}

// respondError sends a standardized error response
func respondError(c *gin.Context, err *apierrors.APIError) {
	requestID, _ := c.Get("request_id")
	reqIDStr, _ := requestID.(string)

	c.JSON(err.HTTPStatus, apierrors.ErrorResponse{
		Error:     *err,
		RequestID: reqIDStr,
	})
}
