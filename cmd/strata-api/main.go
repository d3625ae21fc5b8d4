package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/rs/zerolog"

	"github.com/dimitrije/strata-api/internal/config"
	"github.com/dimitrije/strata-api/internal/content"
	"github.com/dimitrije/strata-api/internal/database"
	"github.com/dimitrije/strata-api/internal/handlers"
	authmw "github.com/dimitrije/strata-api/internal/middleware"
	"github.com/dimitrije/strata-api/internal/services"
	"github.com/dimitrije/strata-api/internal/sse"
	"github.com/dimitrije/strata-api/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if !cfg.IsProduction() {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	serializer := content.NewSerializer(db.Pool, cfg.AssetBaseURL)

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	projectService := services.NewProjectService(db)
	collectionService := services.NewCollectionService(db)
	fieldService := services.NewFieldService(db)
	entryService := services.NewEntryService(db, serializer)
	assetService := services.NewAssetService(db)
	apiKeyService := services.NewAPIKeyService(db)
	webhookService := services.NewWebhookService(db)
	templateService := services.NewTemplateService(db)

	hub := sse.NewHub()
	go hub.Run()

	dispatcher := webhook.NewDispatcher(webhookService, cfg.WebhookTimeout, log)
	go dispatcher.Run(ctx)

	authHandler := handlers.NewAuthHandler(userService, jwtService)
	projectHandler := handlers.NewProjectHandler(projectService, userService)
	collectionHandler := handlers.NewCollectionHandler(collectionService, projectService)
	fieldHandler := handlers.NewFieldHandler(fieldService, collectionService, projectService)
	entryHandler := handlers.NewEntryHandler(entryService, collectionService, projectService, userService, dispatcher, hub)
	assetHandler := handlers.NewAssetHandler(assetService, projectService)
	apiKeyHandler := handlers.NewAPIKeyHandler(apiKeyService, projectService, userService)
	webhookHandler := handlers.NewWebhookHandler(webhookService, projectService)
	templateHandler := handlers.NewTemplateHandler(templateService, projectService, collectionService)
	contentHandler := handlers.NewContentHandler(collectionService, entryService, serializer)
	sseHandler := handlers.NewSSEHandler(hub, projectService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())
	app.Use(authmw.RequestLog(log))

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Get("/auth/me", authHandler.Me)

	protected.Get("/projects", projectHandler.List)
	protected.Post("/projects", projectHandler.Create)
	protected.Get("/projects/:projectId", projectHandler.Get)
	protected.Patch("/projects/:projectId", projectHandler.Update)
	protected.Delete("/projects/:projectId", projectHandler.Delete)

	protected.Get("/projects/:projectId/collections", collectionHandler.List)
	protected.Post("/projects/:projectId/collections", collectionHandler.Create)
	protected.Get("/collections/:collectionId", collectionHandler.Get)
	protected.Patch("/collections/:collectionId", collectionHandler.Update)
	protected.Delete("/collections/:collectionId", collectionHandler.Delete)

	protected.Get("/collections/:collectionId/fields", fieldHandler.List)
	protected.Post("/collections/:collectionId/fields", fieldHandler.Create)
	protected.Patch("/fields/:fieldId", fieldHandler.Update)
	protected.Patch("/fields/:fieldId/reorder", fieldHandler.Reorder)
	protected.Delete("/fields/:fieldId", fieldHandler.Delete)

	protected.Get("/collections/:collectionId/entries", entryHandler.List)
	protected.Post("/collections/:collectionId/entries", entryHandler.Create)
	protected.Get("/entries/:entryId", entryHandler.Get)
	protected.Patch("/entries/:entryId", entryHandler.Update)
	protected.Post("/entries/:entryId/publish", entryHandler.Publish)
	protected.Post("/entries/:entryId/unpublish", entryHandler.Unpublish)
	protected.Delete("/entries/:entryId", entryHandler.Delete)

	protected.Get("/projects/:projectId/assets", assetHandler.List)
	protected.Post("/projects/:projectId/assets", assetHandler.Register)
	protected.Delete("/assets/:assetId", assetHandler.Delete)

	protected.Get("/projects/:projectId/api-keys", apiKeyHandler.List)
	protected.Post("/projects/:projectId/api-keys", apiKeyHandler.Create)
	protected.Delete("/projects/:projectId/api-keys/:keyId", apiKeyHandler.Revoke)

	protected.Get("/projects/:projectId/webhooks", webhookHandler.List)
	protected.Post("/projects/:projectId/webhooks", webhookHandler.Create)
	protected.Delete("/webhooks/:webhookId", webhookHandler.Delete)

	protected.Get("/templates", templateHandler.List)
	protected.Get("/templates/:templateId", templateHandler.Get)
	protected.Delete("/templates/:templateId", templateHandler.Delete)
	protected.Post("/projects/:projectId/export", templateHandler.ExportProject)
	protected.Post("/collections/:collectionId/export", templateHandler.ExportCollection)
	protected.Post("/projects/:projectId/apply", templateHandler.Apply)

	protected.Get("/projects/:projectId/events", sseHandler.Connect)
	protected.Post("/sse/:clientId/subscribe/:projectId", sseHandler.Subscribe)
	protected.Post("/sse/:clientId/unsubscribe/:projectId", sseHandler.Unsubscribe)

	// Public read-only Content API, guarded by project API keys.
	contentAPI := app.Group("/content/v1")
	contentAPI.Use(authmw.APIKeyAuth(apiKeyService))
	contentAPI.Get("/collections", contentHandler.ListCollections)
	contentAPI.Get("/collections/:slug", contentHandler.GetCollection)
	contentAPI.Get("/collections/:slug/entries", contentHandler.ListEntries)
	contentAPI.Get("/collections/:slug/entries/:entryId", contentHandler.GetEntry)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info().Str("addr", addr).Msg("server starting")
		if err := app.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()
	time.Sleep(100 * time.Millisecond)
}
