package main

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "shortloop/configs"
	"shortloop/internal/api/handlers"
	"shortloop/internal/api/middleware"
	job "shortloop/internal/jobs"
	"shortloop/internal/models"
	"shortloop/internal/notify"
	"shortloop/internal/platform"
	"shortloop/internal/queue"
	"shortloop/internal/repository"
	"shortloop/internal/scheduler"
	"shortloop/internal/service"
	"shortloop/internal/storage"
	"shortloop/internal/video"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	asynqClient := asynq.NewClient(redisConn)
	defer asynqClient.Close()
	inspector := asynq.NewInspector(redisConn)

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	r2Storage, err := storage.NewR2Storage(*cfg)
	if err != nil {
		log.Fatalf("Failed to set up storage: %v", err)
	}

	publishers := platform.Registry{
		models.PlatformYoutube:   platform.NewYoutubePublisher(*cfg, socialAccountRepo),
		models.PlatformTiktok:    platform.NewTiktokPublisher(*cfg, socialAccountRepo),
		models.PlatformInstagram: platform.NewInstagramPublisher(*cfg, socialAccountRepo),
		models.PlatformFacebook:  platform.NewFacebookPublisher(*cfg, socialAccountRepo),
	}

	queueClient := queue.NewClient(asynqClient, inspector, cfg.Scheduling.QueueAttempts)
	sched := scheduler.New(cfg.Scheduling, postRepo, queueClient)

	postService := service.NewPostService(db, postRepo, videoRepo, sched)
	videoService := service.NewVideoService(videoRepo, r2Storage)
	analyticsService := service.NewAnalyticsService(analyticsRepo, postRepo)
	accountService := service.NewAccountService(socialAccountRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	videoHandler := handlers.NewVideoHandler(videoService)
	api.Post("/videos/upload", videoHandler.UploadVideo)
	api.Get("/videos", videoHandler.ListVideos)
	api.Post("/videos/remove", videoHandler.RemoveVideo)

	postHandler := handlers.NewPostHandler(postService)
	api.Post("/posts/create", postHandler.CreatePosts)
	api.Get("/posts", postHandler.ListPosts)
	api.Patch("/posts/reschedule", postHandler.ReschedulePost)
	api.Post("/posts/remove", postHandler.RemovePost)

	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	api.Get("/analytics/overview", analyticsHandler.Overview)
	api.Get("/analytics/post", analyticsHandler.PostAnalytics)
	api.Get("/analytics/:platform", analyticsHandler.PlatformOverview)

	accountHandler := handlers.NewAccountHandler(accountService)
	api.Get("/accounts", accountHandler.ListAccounts)
	api.Post("/accounts/remove", accountHandler.RemoveAccount)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, publishers)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	notifier := notify.NewLogNotifier(userRepo)
	worker := queue.NewWorker(postRepo, videoRepo, socialAccountRepo, analyticsRepo, publishers, video.NewPassthroughOptimizer(), notifier)

	asynqServer := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
		RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
			// Exponential backoff from the configured base: base, 2*base, 4*base...
			return time.Duration(math.Pow(2, float64(n))) * cfg.Scheduling.RetryBase
		},
	})

	go func() {
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, worker.HandlePublishTask)

		log.Println("Starting the Asynq server...")
		if err := asynqServer.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db, asynqServer, c)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, asynqServer *asynq.Server, c *cron.Cron) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	c.Stop()
	asynqServer.Shutdown()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
