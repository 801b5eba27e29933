package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"bookpulse/internal/cache"
	"bookpulse/internal/config"
	"bookpulse/internal/database"
	"bookpulse/internal/handler"
	"bookpulse/internal/queue"
	"bookpulse/internal/redis"
	"bookpulse/internal/repository"
	"bookpulse/internal/service"
	"bookpulse/internal/worker"
)

// Run wires the whole application together and serves until SIGINT or
// SIGTERM.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	followRepo := repository.NewFollowRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	// Redis-backed infrastructure
	feedCache := cache.NewFeedCache(redisClient.Client)
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)

	// Services
	userService := service.NewUserService(userRepo)
	catalogService := service.NewCatalogService(bookRepo)
	libraryService := service.NewLibraryService(libraryRepo, bookRepo, activityRepo, db)
	activityService := service.NewActivityService(activityRepo, userRepo)
	followService := service.NewFollowService(followRepo, userRepo, publisher)
	feedService := service.NewFeedService(noteRepo, followRepo, userRepo, libraryRepo, feedCache)
	noteService := service.NewNoteService(noteRepo, libraryRepo, publisher)

	// Feed fan-out workers
	workerHandler := worker.NewHandler(feedCache, followRepo, noteRepo)
	manager := worker.NewManager(consumer, workerHandler, worker.ManagerConfig{
		WorkerCount: cfg.FeedWorkerCount,
	})
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start feed workers: %w", err)
	}
	defer manager.Stop()

	router := NewRouter(RouterConfig{
		UserHandler:     handler.NewUserHandler(userService, activityService),
		BookHandler:     handler.NewBookHandler(catalogService),
		LibraryHandler:  handler.NewLibraryHandler(libraryService),
		ActivityHandler: handler.NewActivityHandler(activityService),
		FollowHandler:   handler.NewFollowHandler(followService),
		FeedHandler:     handler.NewFeedHandler(feedService),
		NoteHandler:     handler.NewNoteHandler(noteService),
		JWTSecret:       cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
