package main

import (
	"context"
	"os"
	"time"

	"travel-planner-server/routes"
	"travel-planner-server/storage"
	"travel-planner-server/utils"

	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg("no .env file loaded")
		}
	}
	configureLogging(os.Getenv("LOG_LEVEL"))

	if os.Getenv("ACCESS_TOKEN_SECRET") == "" {
		log.Fatal().Msg("ACCESS_TOKEN_SECRET environment variable is required")
	}

	// Initialize services
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store := storage.InitializeDB(initCtx)
	cancel()
	defer store.Close()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = utils.NewValidator()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	routes.RegisterRoutes(app)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	log.Info().Str("addr", addr).Msg("server starting")

	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func configureLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
