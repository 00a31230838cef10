package http

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/geocoder89/karigarhub/internal/auth"
	"github.com/geocoder89/karigarhub/internal/config"
	"github.com/geocoder89/karigarhub/internal/domain/identity"
	"github.com/geocoder89/karigarhub/internal/email"
	"github.com/geocoder89/karigarhub/internal/http/handlers"
	"github.com/geocoder89/karigarhub/internal/http/middlewares"
	"github.com/geocoder89/karigarhub/internal/observability"
	"github.com/geocoder89/karigarhub/internal/repo/mongodb"
	"github.com/geocoder89/karigarhub/internal/storage"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries everything the router wires into handlers. main builds
// it once; tests build a smaller one by hand.
type Deps struct {
	Users    *mongodb.UsersRepo
	Pending  *mongodb.PendingRepo
	Postings *mongodb.PostingsRepo
	Bookings *mongodb.BookingsRepo
	Reviews  *mongodb.ReviewsRepo
	Purger   *mongodb.Purger

	Sender    email.Sender
	Uploader  storage.Uploader
	JWT       *auth.Manager
	Pushes    handlers.PushEnqueuer
	Publisher handlers.BookingEventPublisher

	Prom    *observability.Prom
	Metrics http.Handler
	Ping    func() error
}

func NewRouter(cfg config.Config, log *slog.Logger, deps Deps) *gin.Engine {
	cfgEnv := os.Getenv("APP_ENV")

	if cfgEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(8 << 20))
	r.Use(otelgin.Middleware("karigarhub-api"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	// Wire up handlers

	otpHandler := handlers.NewOTPHandler(deps.Users, deps.Pending, deps.Sender, cfg.OTPTTL)
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Pending, deps.JWT)
	resetHandler := handlers.NewPasswordResetHandler(deps.Users, deps.Sender, cfg.OTPTTL)
	profileHandler := handlers.NewProfileHandler(deps.Users, deps.Uploader)
	postingsHandler := handlers.NewPostingsHandler(deps.Postings)
	bookingsHandler := handlers.NewBookingsHandler(deps.Bookings, deps.Postings, deps.Pushes, deps.Publisher)
	reviewsHandler := handlers.NewReviewsHandler(deps.Reviews, deps.Bookings)
	adminHandler := handlers.NewAdminHandler(deps.Users, deps.Purger)

	authMw := middlewares.NewAuthMiddleware(deps.JWT)

	// code-dispatch endpoints get a tight per-IP window so one address
	// cannot drain the email quota
	otpLimiter := middlewares.NewRateLimiter(5, time.Minute)
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)

	// public: registration and sessions
	r.POST("/send-email-otp", otpLimiter.RateLimiterMiddleware(middlewares.KeyByIP), otpHandler.SendEmailOTP)
	r.POST("/verify-email-otp", otpLimiter.RateLimiterMiddleware(middlewares.KeyByIP), otpHandler.VerifyEmailOTP)
	r.POST("/validate-user", otpLimiter.RateLimiterMiddleware(middlewares.KeyByIP), otpHandler.ValidateUser)
	r.POST("/register", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
	r.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)

	// public: password reset
	r.POST("/forgot-password", otpLimiter.RateLimiterMiddleware(middlewares.KeyByIP), resetHandler.ForgotPassword)
	r.POST("/verify-reset-code", otpLimiter.RateLimiterMiddleware(middlewares.KeyByIP), resetHandler.VerifyResetCode)
	r.POST("/reset-password", otpLimiter.RateLimiterMiddleware(middlewares.KeyByIP), resetHandler.ResetPassword)

	// public: browsing
	r.GET("/postings", postingsHandler.ListPostings)
	r.GET("/postings/:id", postingsHandler.GetPostingById)
	r.GET("/providers/:id/reviews", reviewsHandler.ListProviderReviews)

	// authenticated surface
	authed := r.Group("/", authMw.RequireAuth())

	authed.GET("/me", profileHandler.GetMe)
	authed.PUT("/me", profileHandler.UpdateMe)
	authed.POST("/me/avatar", profileHandler.UploadAvatar)
	authed.POST("/me/verification", profileHandler.SubmitVerification)

	authed.POST("/postings", postingsHandler.CreatePosting)
	authed.PUT("/postings/:id", postingsHandler.UpdatePosting)
	authed.DELETE("/postings/:id", postingsHandler.DeletePosting)

	authed.POST("/postings/:id/bookings",
		authMw.RequireAnyRole(identity.RoleWorker, identity.RoleThekedar, identity.RoleConsultant),
		bookingsHandler.CreateBooking)
	authed.GET("/bookings", bookingsHandler.ListMine)
	authed.PATCH("/bookings/:id/status", bookingsHandler.UpdateStatus)
	authed.POST("/bookings/:id/review", reviewsHandler.CreateReview)

	// admin surface
	admin := authed.Group("/admin", authMw.RequireRole(identity.RoleAdmin))

	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users/:id/verify", adminHandler.VerifyUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)

	return r
}
