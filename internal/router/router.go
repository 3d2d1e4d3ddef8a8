package router

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"fanpulse/internal/cache"
	"fanpulse/internal/config"
	"fanpulse/internal/database"
	"fanpulse/internal/handlers/api/v1/articles"
	authhandler "fanpulse/internal/handlers/api/v1/auth"
	"fanpulse/internal/handlers/api/v1/engagement"
	"fanpulse/internal/handlers/api/v1/leaderboard"
	"fanpulse/internal/handlers/api/v1/matches"
	"fanpulse/internal/handlers/api/v1/newsletter"
	"fanpulse/internal/handlers/api/v1/polls"
	"fanpulse/internal/handlers/api/v1/predictions"
	"fanpulse/internal/middleware"
	"fanpulse/internal/realtime"
	"fanpulse/internal/response"
	"fanpulse/internal/services"

	"go.uber.org/zap"
)

// Dependencies carries everything the router needs to wire routes
type Dependencies struct {
	Services    *services.ServiceCollection
	Config      *config.Config
	DB          *database.Manager
	Cache       cache.Cache
	Hub         *realtime.Hub
	Auth        *middleware.AuthMiddleware
	RateLimiter *middleware.RateLimiter
	Builder     *response.Builder
	Logger      *zap.Logger
}

// SetupRouter configures all HTTP routes and returns the root handler
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	builder := deps.Builder
	authMW := deps.Auth

	// ===============================
	// CONTROLLERS
	// ===============================

	authController := authhandler.NewAuthController(deps.Services.GetAuthService(), &deps.Config.Auth, builder, deps.Logger)
	matchController := matches.NewMatchController(deps.Services.GetMatchService(), builder, deps.Logger)
	predictionController := predictions.NewPredictionController(deps.Services.GetPredictionService(), builder, deps.Logger)
	leaderboardController := leaderboard.NewLeaderboardController(deps.Services.GetLeaderboardService(), builder, deps.Logger)
	engagementController := engagement.NewEngagementController(deps.Services.GetEngagementService(), builder, deps.Logger)
	articleController := articles.NewArticleController(deps.Services.GetArticleService(), builder, deps.Logger)
	pollController := polls.NewPollController(deps.Services.GetPollService(), builder, deps.Logger)
	newsletterController := newsletter.NewNewsletterController(deps.Services.GetNewsletterService(), builder, deps.Logger)

	// ===============================
	// SYSTEM ROUTES
	// ===============================

	mux.HandleFunc("/health", healthHandler(deps.DB, deps.Cache))
	mux.Handle("/ws", authMW.RequireAuth(http.HandlerFunc(deps.Hub.ServeWS)))

	// ===============================
	// AUTH ROUTES
	// ===============================

	mux.HandleFunc("/api/v1/auth/register", authController.Register)
	mux.HandleFunc("/api/v1/auth/login", authController.Login)
	mux.Handle("/api/v1/auth/me", authMW.RequireAuth(http.HandlerFunc(authController.Me)))
	mux.HandleFunc("/api/v1/auth/google/login", authController.GoogleLogin)
	mux.HandleFunc("/api/v1/auth/google/callback", authController.GoogleCallback)

	// ===============================
	// MATCH ROUTES
	// ===============================

	mux.HandleFunc("/api/v1/matches", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			matchController.List(w, r)
		case http.MethodPost:
			authMW.RequireAdmin(http.HandlerFunc(matchController.Create)).ServeHTTP(w, r)
		default:
			methodNotAllowed(builder, w, r)
		}
	})
	mux.HandleFunc("/api/v1/matches/", func(w http.ResponseWriter, r *http.Request) {
		switch pathAction(r, 4) {
		case "":
			matchController.Get(w, r)
		case "status":
			authMW.RequireAdmin(http.HandlerFunc(matchController.UpdateStatus)).ServeHTTP(w, r)
		case "finalize":
			authMW.RequireAdmin(http.HandlerFunc(matchController.Finalize)).ServeHTTP(w, r)
		default:
			builder.WriteError(w, r, services.NewNotFoundError("resource"))
		}
	})

	// ===============================
	// PREDICTION ROUTES
	// ===============================

	mux.Handle("/api/v1/predictions", authMW.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			predictionController.Submit(w, r)
		case http.MethodGet:
			predictionController.ListMine(w, r)
		default:
			methodNotAllowed(builder, w, r)
		}
	})))
	mux.Handle("/api/v1/predictions/match/", authMW.RequireAuth(http.HandlerFunc(predictionController.GetForMatch)))

	// ===============================
	// LEADERBOARD ROUTES
	// ===============================

	mux.HandleFunc("/api/v1/leaderboard", leaderboardController.Standings)
	mux.Handle("/api/v1/leaderboard/me", authMW.RequireAuth(http.HandlerFunc(leaderboardController.MyRank)))

	// ===============================
	// ENGAGEMENT ROUTES
	// ===============================

	mux.Handle("/api/v1/engagement/stats", authMW.RequireAuth(http.HandlerFunc(engagementController.GetStats)))
	mux.Handle("/api/v1/engagement/badges", authMW.RequireAuth(http.HandlerFunc(engagementController.GetBadges)))
	mux.Handle("/api/v1/engagement/badges/new", authMW.RequireAuth(http.HandlerFunc(engagementController.NewBadge)))
	mux.Handle("/api/v1/engagement/progress", authMW.RequireAuth(http.HandlerFunc(engagementController.GetProgress)))
	mux.Handle("/api/v1/engagement/actions", authMW.RequireAuth(http.HandlerFunc(engagementController.TrackAction)))
	mux.Handle("/api/v1/engagement/visit", authMW.RequireAuth(http.HandlerFunc(engagementController.TrackVisit)))

	// ===============================
	// ARTICLE ROUTES
	// ===============================

	mux.HandleFunc("/api/v1/articles", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			authMW.OptionalAuth(http.HandlerFunc(articleController.List)).ServeHTTP(w, r)
		case http.MethodPost:
			authMW.RequireAdmin(http.HandlerFunc(articleController.Create)).ServeHTTP(w, r)
		default:
			methodNotAllowed(builder, w, r)
		}
	})
	mux.HandleFunc("/api/v1/articles/", func(w http.ResponseWriter, r *http.Request) {
		switch pathAction(r, 4) {
		case "":
			authMW.OptionalAuth(http.HandlerFunc(articleController.Get)).ServeHTTP(w, r)
		case "react":
			authMW.RequireAuth(http.HandlerFunc(articleController.React)).ServeHTTP(w, r)
		case "comments":
			if r.Method == http.MethodGet {
				authMW.OptionalAuth(http.HandlerFunc(articleController.ListComments)).ServeHTTP(w, r)
				return
			}
			authMW.RequireAuth(http.HandlerFunc(articleController.AddComment)).ServeHTTP(w, r)
		case "cover":
			authMW.RequireAdmin(http.HandlerFunc(articleController.UploadCover)).ServeHTTP(w, r)
		default:
			builder.WriteError(w, r, services.NewNotFoundError("resource"))
		}
	})

	// ===============================
	// POLL ROUTES
	// ===============================

	mux.HandleFunc("/api/v1/polls", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			pollController.List(w, r)
		case http.MethodPost:
			authMW.RequireAdmin(http.HandlerFunc(pollController.Create)).ServeHTTP(w, r)
		default:
			methodNotAllowed(builder, w, r)
		}
	})
	mux.HandleFunc("/api/v1/polls/", func(w http.ResponseWriter, r *http.Request) {
		switch pathAction(r, 4) {
		case "":
			authMW.OptionalAuth(http.HandlerFunc(pollController.Results)).ServeHTTP(w, r)
		case "vote":
			authMW.RequireAuth(http.HandlerFunc(pollController.Vote)).ServeHTTP(w, r)
		default:
			builder.WriteError(w, r, services.NewNotFoundError("resource"))
		}
	})

	// ===============================
	// NEWSLETTER ROUTES
	// ===============================

	mux.HandleFunc("/api/v1/newsletter/subscribe", newsletterController.Subscribe)
	mux.HandleFunc("/api/v1/newsletter/confirm", newsletterController.Confirm)
	mux.HandleFunc("/api/v1/newsletter/unsubscribe", newsletterController.Unsubscribe)

	// ===============================
	// GLOBAL MIDDLEWARE
	// ===============================

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Recovery(builder, deps.Logger),
		middleware.Logging(deps.Logger),
		deps.RateLimiter.Middleware,
	)
}

// pathAction returns the path segment at idx, or "" when absent.
// For /api/v1/matches/42/finalize, idx 4 yields "finalize".
func pathAction(r *http.Request, idx int) string {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) > idx {
		return parts[idx]
	}
	return ""
}

func methodNotAllowed(builder *response.Builder, w http.ResponseWriter, r *http.Request) {
	builder.WriteError(w, r, services.NewBusinessError("method not allowed", "METHOD_NOT_ALLOWED"))
}

func healthHandler(db *database.Manager, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		status := map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		}

		dbHealth := db.Health(ctx)
		status["database"] = dbHealth
		if dbHealth.Status == database.StatusUnhealthy {
			status["status"] = "unhealthy"
		}

		if err := c.Health(ctx); err != nil {
			status["cache"] = err.Error()
			status["status"] = "degraded"
		} else {
			status["cache"] = "healthy"
		}

		w.Header().Set("Content-Type", "application/json")
		if status["status"] == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(status)
	}
}
