package main

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"mailme/blacklist"
	"mailme/config"
	"mailme/handlers/api"
	"mailme/middleware"
	"mailme/service"
	"mailme/storage"
	"mailme/utils"
)

func main() {
	cfg, err := config.LoadConfig("config.toml")
	if err != nil {
		utils.Log.Fatal("Failed to load config: %v", err)
	}
	utils.Log.SetLevel(utils.ParseLevel(cfg.LogLevel))

	db, err := storage.InitDB(cfg.Storage.DataDir)
	if err != nil {
		utils.Log.Fatal("Failed to open database: %v", err)
	}
	defer db.Close()

	// Stores
	mails := storage.NewMailStorage(db)
	statuses := storage.NewStatusStorage(db)
	labels := storage.NewLabelStorage(db)
	users := storage.NewUserStorage(db)

	// Blacklist client + classifier
	blClient := blacklist.NewClient(cfg.BlacklistAddr(), cfg.BlacklistTimeout())
	classifier := blacklist.NewClassifier(blClient)

	// Real-time notifications
	hub := api.NewNotificationHub()

	// Services
	mailService := service.NewMailService(mails, statuses, labels, users, classifier, hub, cfg.Server.Domain)
	statusService := service.NewStatusService(statuses, mails, labels, blClient)
	labelService := service.NewLabelService(labels, statuses)

	// Handlers
	userHandler := api.NewUserHandler(users)
	authHandler := api.NewAuthHandler(cfg, users)
	mailHandler := api.NewMailHandler(mailService, statusService)
	labelHandler := api.NewLabelHandler(labelService)
	blacklistHandler := api.NewBlacklistHandler(blClient)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := err.Error()

			if appErr, ok := err.(*utils.AppError); ok {
				code = appErr.Code
				message = appErr.Message
				if code >= 500 {
					utils.Log.Error("Application error: %v", appErr)
					message = "Internal error"
				}
			} else if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			} else {
				utils.Log.Error("Unhandled error: %v", err)
				message = "Internal error"
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "no-referrer",
	}))
	app.Use(middleware.RateLimiter(cfg.Limits.Requests, time.Duration(cfg.Limits.WindowSeconds)*time.Second))

	// Public routes
	app.Post("/api/users", userHandler.Register)
	app.Post("/api/tokens", authHandler.CreateToken)

	// Protected routes
	protected := app.Group("/api", api.RequireAuth(cfg.Auth.JWTSecret))

	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users/:id/avatar", userHandler.UploadAvatar)
	protected.Get("/users/:id/avatar", userHandler.GetAvatar)

	protected.Get("/mails", mailHandler.List)
	protected.Post("/mails", mailHandler.Create)
	protected.Get("/mails/search/:query", mailHandler.Search)
	protected.Get("/mails/:id", mailHandler.Get)
	protected.Patch("/mails/:id", mailHandler.Update)
	protected.Delete("/mails/:id", mailHandler.Delete)
	protected.Patch("/mails/:id/send", mailHandler.Send)
	protected.Patch("/mails/:id/star", mailHandler.Star)
	protected.Patch("/mails/:id/spam", mailHandler.Spam)
	protected.Patch("/mails/:id/read", mailHandler.Read)
	protected.Post("/mails/:id/labels", mailHandler.AddLabel)
	protected.Delete("/mails/:id/labels/:labelId", mailHandler.RemoveLabel)

	protected.Get("/labels", labelHandler.List)
	protected.Post("/labels", labelHandler.Create)
	protected.Get("/labels/:id", labelHandler.Get)
	protected.Patch("/labels/:id", labelHandler.Rename)
	protected.Delete("/labels/:id", labelHandler.Delete)
	protected.Patch("/labels/:id/color", labelHandler.SetColor)
	protected.Delete("/labels/:id/color", labelHandler.ResetColor)

	protected.Post("/blacklist", blacklistHandler.Add)
	protected.Delete("/blacklist/:token", blacklistHandler.Remove)

	protected.Get("/notifications", hub.HandleSSE)

	// WebSocket notifications
	app.Use("/ws/notifications", api.RequireAuth(cfg.Auth.JWTSecret), api.UpgradeRequired)
	app.Get("/ws/notifications", websocket.New(hub.HandleWebSocket))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	utils.Log.Info("Starting server on port %d...", cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		utils.Log.Fatal("Error starting server: %v", err)
	}
}
