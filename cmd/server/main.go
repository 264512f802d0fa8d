package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	"github.com/benbeisheim/chessrelay-backend/internal/config"
	"github.com/benbeisheim/chessrelay-backend/internal/controller"
	"github.com/benbeisheim/chessrelay-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	log.SetHandler(text.New(os.Stderr))

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.SetLevel(cfg.LogLevel)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))
	// Request logging
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.WithFields(log.Fields{
			"method":   c.Method(),
			"path":     c.Path(),
			"status":   c.Response().StatusCode(),
			"duration": time.Since(start),
		}).Debug("request")
		return err
	})

	// Initialize services
	gameManager := service.NewGameManager()
	gameService := service.NewGameService(gameManager)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gameManager.RunReaper(ctx, time.Minute, cfg.IdleTimeout)

	controller.SetupRoutes(app, gameService, cfg.AllowOrigins)

	log.WithField("addr", cfg.Addr).Info("listening")
	if err := app.Listen(cfg.Addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
