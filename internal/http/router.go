package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/portal/internal/config"
	"github.com/geocoder89/portal/internal/http/handlers"
	"github.com/geocoder89/portal/internal/http/middlewares"
	"github.com/geocoder89/portal/internal/observability"
	"github.com/geocoder89/portal/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type UsersStore interface {
	handlers.UsersStore
	handlers.UserGetter
}

type AssetsStore interface {
	handlers.AssetsStore
	handlers.OwnedAssetsLister
}

// Deps is everything the router needs; tests pass in-memory stores.
type Deps struct {
	Log           *slog.Logger
	Prom          *observability.Prom
	Gatherer      prometheus.Gatherer
	Auth          handlers.Authenticator
	Tokens        middlewares.TokenVerifier
	Users         UsersStore
	Assets        AssetsStore
	Announcements handlers.AnnouncementsStore
	LoginCounter  ratelimit.Counter
	Ping          func(ctx context.Context) error
}

func NewRouter(cfg config.Config, d Deps) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()

	// only listed proxies may set X-Forwarded-For; login throttling keys on client IP
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("invalid TRUSTED_PROXIES, trusting none", "err", err)
		_ = r.SetTrustedProxies(nil)
	}

	// middleware

	r.Use(gin.Recovery())
	if cfg.OTelEndpoint != "" {
		r.Use(otelgin.Middleware(cfg.OTelServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.CORS(cfg.CORSOrigins))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(middlewares.DefaultMaxBody))

	// health + metrics
	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// wire up handlers
	authHandler := handlers.NewAuthHandler(d.Auth, d.Prom)
	profileHandler := handlers.NewProfileHandler(d.Users, d.Assets)
	usersHandler := handlers.NewUsersHandler(d.Users)
	assetsHandler := handlers.NewAssetsHandler(d.Assets)
	announcementsHandler := handlers.NewAnnouncementsHandler(d.Announcements)

	authMiddleware := middlewares.NewAuthMiddleware(d.Tokens, d.Prom)

	counter := d.LoginCounter
	if counter == nil {
		counter = ratelimit.NewMemoryCounter()
	}
	loginLimiter := middlewares.NewRateLimiter(counter, "login", cfg.LoginRateLimit, cfg.LoginRateWindow, log, d.Prom)

	// public
	r.POST("/login",
		loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
		middlewares.RequireJSON(),
		authHandler.Login,
	)

	// any signed-in employee
	authed := r.Group("/", authMiddleware.RequireAuth())
	{
		authed.GET("/profile", profileHandler.Profile)
		authed.GET("/my-assets", profileHandler.MyAssets)
		authed.GET("/announcements", announcementsHandler.ListAnnouncements)
	}

	// admin only; identity is checked before the body is looked at
	admin := authed.Group("/", authMiddleware.RequireAdmin(), middlewares.RequireJSON())
	{
		admin.GET("/users", usersHandler.ListUsers)
		admin.POST("/users", usersHandler.CreateUser)
		admin.PUT("/users/:id", usersHandler.UpdateUser)
		admin.PUT("/users/:id/lock", usersHandler.ToggleLock)
		admin.DELETE("/users/:id", usersHandler.DeleteUser)

		admin.GET("/assets", assetsHandler.ListAssets)
		admin.GET("/assets/export", assetsHandler.ExportAssets)
		admin.POST("/assets", assetsHandler.CreateAsset)
		admin.PUT("/assets/:id", assetsHandler.UpdateAsset)
		admin.DELETE("/assets/:id", assetsHandler.DeleteAsset)

		admin.POST("/announcements", announcementsHandler.CreateAnnouncement)
	}

	return r
}
