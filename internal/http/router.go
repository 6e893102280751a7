// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/tbourn/go-suits-backend/internal/config"
	"github.com/tbourn/go-suits-backend/internal/http/handlers"
	"github.com/tbourn/go-suits-backend/internal/http/middleware"
	"github.com/tbourn/go-suits-backend/internal/repo"
	"github.com/tbourn/go-suits-backend/internal/services"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, bypass on replay)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction. Chat ciphertext never appears in
	// request logs; bodies are not logged, and sensitive headers are masked.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (dev/staging only)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db. The post service doubles as
	// the counter surface consumed by interactions and tipping.
	identitySvc := services.NewIdentityService(db)
	postSvc := services.NewPostService(db)
	postSvc.MaxContentRunes = cfg.MaxPostRunes
	postSvc.PreviewRunes = cfg.PreviewRunes
	interactionSvc := services.NewInteractionService(db, postSvc)
	tipSvc := services.NewTipService(db, postSvc)
	tipSvc.MinTipAmount = cfg.MinTipAmount
	chatSvc := services.NewChatService(db)
	eventSvc := services.NewEventService(db)
	searchSvc := services.NewSearchService(db)

	h := handlers.New(identitySvc, postSvc, interactionSvc, tipSvc, chatSvc, eventSvc, searchSvc).
		WithIdempotency(db, cfg.IdempotencyTTL)

	// gzip for read-heavy feed endpoints
	zip := gzip.Gzip(gzip.DefaultCompression)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Profiles
		api.POST("/profiles", h.CreateProfile)
		api.PUT("/profiles/:id", h.UpdateProfile)
		api.GET("/profiles/:id", h.GetProfile)
		api.GET("/me/profile", h.GetMyProfile)
		api.GET("/usernames/:name", h.GetUsernameOwner)
		api.GET("/usernames/:name/available", h.CheckUsername)

		// Posts
		api.POST("/posts", h.CreatePost)
		api.GET("/posts", zip, h.ListRecentPosts)
		api.GET("/posts/:id", h.GetPost)
		api.GET("/creators/:addr/posts", zip, h.ListPostsByCreator)

		// Interactions
		api.POST("/posts/:id/like", h.LikePost)
		api.DELETE("/posts/:id/like", h.UnlikePost)
		api.GET("/posts/:id/like/status", h.GetLikeStatus)
		api.POST("/posts/:id/retweet", h.RetweetPost)
		api.DELETE("/posts/:id/retweet", h.UnretweetPost)
		api.GET("/posts/:id/retweet/status", h.GetRetweetStatus)
		api.POST("/posts/:id/comments", h.CommentOnPost)
		api.GET("/posts/:id/comments", zip, h.ListComments)

		// Tipping
		api.POST("/posts/:id/tip", h.TipPost)
		api.POST("/balances", h.CreateBalance)
		api.GET("/balances/:id", h.GetBalance)
		api.GET("/owners/:addr/balance", h.GetBalanceByOwner)
		api.POST("/balances/:id/withdraw", h.Withdraw)

		// Chats
		api.POST("/chats", h.StartChat)
		api.GET("/chats", h.ListChats)
		api.POST("/chats/:id/messages", h.SendMessage)
		api.GET("/chats/:id/messages", h.ListMessages)
		api.POST("/chats/:id/messages/:seq/read", h.MarkMessageRead)
		api.GET("/chats/:id/unread", h.GetUnreadCount)

		// Search
		api.GET("/search/posts", zip, h.SearchPosts)

		// Event feed
		api.GET("/events", zip, h.ListEvents)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
