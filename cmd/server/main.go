package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/w-h-a/analyst/config"
	httpapi "github.com/w-h-a/analyst/server/http"
)

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	_ = kong.Parse(&cfg)

	logger := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := cfg.Analyst(logger)
	newsSvc := cfg.News()
	dash := cfg.Dashboard(logger)

	scheduler := dash.Start(ctx, cfg.SnapshotInterval)
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "analyst",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(recover.New())

	httpapi.RegisterRoutes(app, svc, newsSvc, dash, logger)

	go func() {
		logger.Info("http server listening", zap.String("address", cfg.Address))
		if err := app.Listen(cfg.Address); err != nil {
			logger.Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
