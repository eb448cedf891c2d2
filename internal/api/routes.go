package api

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"locallift/internal/api/middleware"
	"locallift/internal/auth"
	"locallift/internal/catalog"
	"locallift/internal/config"
	"locallift/internal/kv"
	"locallift/internal/monetization"
	"locallift/internal/session"
)

// Deps collects what the routes need. Redis, Queue, Storage and Scanner are
// optional; the routes that depend on them answer 503 or skip the feature.
type Deps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Auth    *auth.AuthService
	KV      kv.Store
	Catalog *catalog.Catalog
	Redis   redis.UniversalClient
	Queue   TaskEnqueuer
	Storage ObjectStorage
	Scanner VirusScanner
	// Rand seeds the ad and affiliate pickers. Nil uses the global source.
	Rand *rand.Rand
}

// SessionOpener restores the session of clientID from its namespace in store.
func SessionOpener(store kv.Store, opts session.Options) middleware.SessionOpener {
	return func(ctx context.Context, clientID string) (*session.Store, error) {
		s := session.NewStore(kv.ForClient(store, clientID), opts)
		if err := s.Restore(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}
}

// RegisterRoutes mounts the API under /v1.
func RegisterRoutes(router *gin.Engine, deps Deps) {
	cfg := deps.Config
	open := SessionOpener(deps.KV, session.Options{Latency: cfg.Session.Latency, Logger: deps.Logger})

	requireSession := middleware.AuthMiddleware(deps.Auth, open)
	requireClient := middleware.ClientMiddleware(deps.Auth, open)
	optional := middleware.OptionalAuthMiddleware(deps.Auth, open)

	var limiter redisRateCounter
	if deps.Redis != nil {
		limiter = deps.Redis
	}

	resourceHandler := NewResourceHandler(deps.Catalog)
	notesHandler := NewNotesHandler(deps.Catalog, deps.KV)
	authHandler := NewAuthHandler(deps.Auth, open, limiter, cfg.Auth.LoginRateLimitPerHour, deps.Storage, deps.Scanner)
	resumeHandler := NewResumeHandler(deps.KV, deps.Queue, deps.Storage)
	rnd := monetization.Synchronized(deps.Rand)
	monetizationHandler := NewMonetizationHandler(
		monetization.NewPicker(rnd),
		monetization.NewAffiliates(cfg.Affiliate.PartnerID, rnd),
		monetization.AdScriptConfig{ClientID: cfg.Ads.ClientID, Enabled: cfg.Ads.Enabled, TestMode: cfg.Ads.TestMode},
	)

	v1 := router.Group("/v1")
	{
		if deps.Redis != nil {
			wsHandler := NewWsHandler(deps.Redis, deps.Auth, deps.Logger, cfg.API.Origins())
			v1.GET("/ws", wsHandler.HandleConnection)
		}

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/client", authHandler.IssueClient)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/signup", authHandler.Signup)
			authGroup.GET("/me", requireSession, authHandler.Me)
			authGroup.POST("/logout", requireClient, authHandler.Logout)
			authGroup.POST("/upgrade", requireClient, authHandler.Upgrade)
			authGroup.POST("/avatar", requireSession, authHandler.UploadAvatar)
		}

		v1.POST("/postcode/validate", resourceHandler.ValidatePostcode)

		resources := v1.Group("/resources")
		{
			resources.GET("", resourceHandler.ListResources)
			resources.GET("/categories", resourceHandler.ListCategories)
			resources.GET("/:id", resourceHandler.GetResource)
			resources.POST("/:id/vote", resourceHandler.Vote)

			resources.GET("/:id/notes", requireSession, notesHandler.ListNotes)
			resources.POST("/:id/notes", requireSession, notesHandler.AddNote)
			resources.DELETE("/:id/notes/:noteID", requireSession, notesHandler.DeleteNote)
			resources.GET("/:id/tasks", requireSession, notesHandler.ListTasks)
			resources.POST("/:id/tasks", requireSession, notesHandler.AddTask)
			resources.POST("/:id/tasks/:taskID/toggle", requireSession, notesHandler.ToggleTask)
			resources.DELETE("/:id/tasks/:taskID", requireSession, notesHandler.DeleteTask)
		}

		v1.GET("/resume/templates", optional, resumeHandler.ListTemplates)
		resumeGroup := v1.Group("/resume")
		resumeGroup.Use(requireClient)
		{
			resumeGroup.GET("", resumeHandler.GetResume)
			resumeGroup.PUT("", resumeHandler.SaveResume)
			resumeGroup.POST("/apply", resumeHandler.ApplyOperations)
			resumeGroup.GET("/preview", resumeHandler.Preview)
			resumeGroup.POST("/suggestions", resumeHandler.Suggestions)
			resumeGroup.POST("/download", resumeHandler.Download)
			resumeGroup.GET("/download-link", resumeHandler.DownloadLink)
		}

		monetizationGroup := v1.Group("")
		monetizationGroup.Use(optional)
		{
			monetizationGroup.GET("/ads", monetizationHandler.GetAd)
			monetizationGroup.GET("/ads/script", monetizationHandler.GetAdScript)
			monetizationGroup.POST("/ads/:adID/click", monetizationHandler.ClickAd)
			monetizationGroup.GET("/affiliates", monetizationHandler.ListAffiliates)
			monetizationGroup.GET("/premium/features", monetizationHandler.PremiumFeatures)
		}
	}
}
