package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/workout-tracker/internal/api"
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/geocoding"
	"alcyxob/workout-tracker/internal/location"
	"alcyxob/workout-tracker/internal/persistence"
	"alcyxob/workout-tracker/internal/repository/mongo"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"
	"alcyxob/workout-tracker/internal/view"
)

// @title Workout Tracker API
// @version 1.0
// @description API for logging runs and rides on a map.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of the given password and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := service.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}
		fmt.Println(hash)
		return
	}

	log.Println("Starting Workout Tracker Server...")
	for _, e := range os.Environ() {
		name, _, _ := strings.Cut(e, "=")
		for _, prefix := range []string{"SERVER_", "STORAGE_", "DATABASE_", "S3_", "GEOCODING_", "AUTH_", "LOCATION_"} {
			if strings.HasPrefix(name, prefix) {
				log.Printf("ENV: %s is set", name)
			}
		}
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Initialize Storage ---
	log.Printf("Initializing %s snapshot storage...", cfg.Storage.Driver)
	store, presigner, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize %s storage: %v", cfg.Storage.Driver, err)
	}
	defer closeStore()
	gateway := persistence.NewGateway(store, cfg.Storage.Key)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	geocoder := geocoding.NewClient(cfg.Geocoding)
	board := view.NewBoard()
	locator := location.NewStaticLocator(cfg.Location)
	tracker := service.NewTracker(gateway, geocoder, board, locator)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	if err := tracker.Start(startCtx); err != nil {
		log.Printf("WARN: Starting with an empty workout list: %v", err)
	}
	cancelStart()

	var authService service.AuthService
	if cfg.Auth.Enabled() {
		authService = service.NewAuthService(cfg.Auth, cfg.JWT.Secret, cfg.JWT.Expiration)
		log.Printf("Login required for user '%s'.", cfg.Auth.Username)
	} else {
		log.Println("WARN: auth.password_hash is not set; the API is open.")
	}

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, authService, api.NewWorkoutHandler(tracker, board, gateway, presigner))

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // submit waits on geocoding
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// openStore builds the snapshot store selected by storage.driver. The
// presigner is nil unless the store can hand out download links.
func openStore(cfg config.Config) (storage.ObjectStore, storage.Presigner, func(), error) {
	noop := func() {}

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		log.Println("WARN: Memory storage selected; workouts are lost on restart.")
		return storage.NewMemoryStore(), nil, noop, nil

	case config.StorageFile:
		store, err := storage.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, noop, nil

	case config.StorageS3:
		store, err := storage.NewS3Storage(cfg.S3)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, noop, nil

	case config.StorageMongo:
		dbClient, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			return nil, nil, nil, err
		}
		appDB := dbClient.Database(cfg.Database.Name)
		log.Println("Database connection established.")

		coll := appDB.Collection(cfg.Database.Collection)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			if err := mongo.EnsureSnapshotIndexes(ctx, coll); err != nil {
				log.Printf("ERROR: Failed to ensure snapshot indexes: %v", err)
				return
			}
			log.Println("Index creation process completed.")
		}()

		closeDB := func() {
			log.Println("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
			}
		}
		return mongo.NewMongoSnapshotRepository(appDB, cfg.Database.Collection), nil, closeDB, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
