package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dizey-pro/Students-results/src/config"
	"github.com/Dizey-pro/Students-results/src/controllers"
	"github.com/Dizey-pro/Students-results/src/database"
	_ "github.com/Dizey-pro/Students-results/src/docs"
	"github.com/Dizey-pro/Students-results/src/jobs"
	applog "github.com/Dizey-pro/Students-results/src/logger"
	"github.com/Dizey-pro/Students-results/src/middleware"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/routes"
	"github.com/Dizey-pro/Students-results/src/services/advice"
	"github.com/Dizey-pro/Students-results/src/services/auth"
	"github.com/Dizey-pro/Students-results/src/services/profiles"
	"github.com/Dizey-pro/Students-results/src/services/settings"
	"github.com/Dizey-pro/Students-results/src/services/students"
	"github.com/Dizey-pro/Students-results/src/services/transcript"
	"github.com/Dizey-pro/Students-results/src/state"
	"github.com/Dizey-pro/Students-results/src/utils"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/hibiken/asynq"
)

// @title Students Results API
// @version 1.0
// @description Results portal: mark entry, transcripts, GPA and study advice.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	logger := applog.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		level.Error(logger).Log("msg", "store unavailable", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	redisClient, err := database.NewRedis(ctx, cfg.RedisURI)
	if err != nil {
		level.Warn(logger).Log("msg", "redis unavailable, continuing without cache and jobs", "err", err)
		redisClient = nil
	}
	redisURI := ""
	if redisClient != nil {
		redisURI = cfg.RedisURI
		defer redisClient.Close()
	}
	cache := utils.NewRedisCache(redisClient)

	teacherHash, err := auth.HashPassword(cfg.TeacherDefaultPassword)
	if err != nil {
		level.Error(logger).Log("msg", "hash default teacher password", "err", err)
		os.Exit(1)
	}

	st := state.New()
	syncer := &state.Syncer{
		State: st,
		Store: store,
		Log:   log.With(logger, "component", "state"),
		DefaultTeacher: models.TeacherCredentials{
			Username: cfg.TeacherDefaultUsername,
			Password: teacherHash,
		},
	}
	if err := syncer.Run(ctx); err != nil {
		level.Error(logger).Log("msg", "state sync failed", "err", err)
		os.Exit(1)
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	adviceSvc := advice.NewService(
		advice.NewGeminiClient(cfg.GeminiEndpoint, cfg.GeminiModel, cfg.GeminiAPIKey),
		cache, cfg.AdviceCacheTTL, log.With(logger, "component", "advice"),
	)

	asynqClient := database.NewAsynqClient(redisURI)
	if asynqClient != nil {
		defer asynqClient.Close()
	}
	if srv := jobs.NewServer(redisURI, log.With(logger, "component", "jobs")); srv != nil {
		mux := asynq.NewServeMux()
		jobs.RegisterHandlers(mux, adviceSvc, logger)
		if err := srv.Start(mux); err != nil {
			level.Error(logger).Log("msg", "job server failed to start", "err", err)
		} else {
			defer srv.Shutdown()
		}
	}

	h := &controllers.Handler{
		State:     st,
		Store:     store,
		Validator: utils.NewValidator(),
		Auth:      auth.NewService(cfg.AdminUsername, cfg.AdminPassword, st, tokens, cache),
		Profiles:  profiles.NewService(store),
		Students:  students.NewService(store, st),
		Settings:  settings.NewService(store, st),
		Advice:    adviceSvc,
		Jobs:      jobs.NewEnqueuer(asynqClient, logger),
		Printer:   transcript.Printer{ChromePath: cfg.ChromePath},
		Logger:    logger,
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: utils.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
	}))
	app.Get("/swagger/*", swagger.HandlerDefault)
	routes.InitRoutes(app, h, middleware.AuthJWT(tokens, cache, logger))

	go func() {
		<-ctx.Done()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	level.Info(logger).Log("msg", "server listening", "port", cfg.Port, "store", cfg.StoreDriver)
	if err := app.Listen(":" + cfg.Port); err != nil {
		level.Error(logger).Log("msg", "server stopped", "err", err)
	}
}

// openStore connects the configured document store.
func openStore(ctx context.Context, cfg *config.Config, logger log.Logger) (database.Store, func(), error) {
	if cfg.StoreDriver == "memory" {
		level.Warn(logger).Log("msg", "using in-memory store, data is lost on exit")
		return database.NewMemoryStore(), func() {}, nil
	}

	ms, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB, cfg.StorePollInterval, log.With(logger, "component", "mongo"))
	if err != nil {
		return nil, nil, err
	}
	if err := ms.EnsureIndexes(ctx); err != nil {
		level.Warn(logger).Log("msg", "index creation failed", "err", err)
	}
	return ms, func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ms.Close(cctx)
	}, nil
}
