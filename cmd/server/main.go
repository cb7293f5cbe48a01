package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"property_portal/internal/config"
	"property_portal/internal/handler"
	"property_portal/internal/repository"
	"property_portal/internal/service"
	"property_portal/internal/storage"
	"property_portal/internal/utils"

	"github.com/joho/godotenv"
)

type stores struct {
	properties repository.PropertyRepository
	users      repository.UserRepository
	sessions   repository.SessionRepository
	ping       handler.PingFunc
	close      func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.DBDriver == config.DriverPostgres {
		pool, err := config.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := config.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &stores{
			properties: repository.NewPgPropertyRepository(pool),
			users:      repository.NewPgUserRepository(pool),
			sessions:   repository.NewPgSessionRepository(pool),
			ping:       pool.Ping,
			close:      pool.Close,
		}, nil
	}

	db, err := config.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := config.MigrateSQLite(db); err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("Using SQLite database at %s", cfg.DBPath)
	return &stores{
		properties: repository.NewSQLPropertyRepository(db),
		users:      repository.NewSQLUserRepository(db),
		sessions:   repository.NewSQLSessionRepository(db),
		ping:       db.PingContext,
		close:      func() { db.Close() },
	}, nil
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	images, err := storage.NewImageStore(cfg.UploadsDir)
	if err != nil {
		log.Fatalf("Failed to prepare uploads directory: %v", err)
	}
	log.Printf("Uploads will be stored in: %s", images.Dir())

	// --- Database Connection & Migration ---
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Minute)
	db, err := openStores(startupCtx, cfg)
	if err != nil {
		cancelStartup()
		log.Fatalf("Failed to set up database: %v", err)
	}
	defer db.close()

	// --- Initialize Services ---
	signer := utils.NewSessionSigner(cfg.SessionSecret)
	authService := service.NewAuthService(db.users, db.sessions, signer)
	propertyService := service.NewPropertyService(db.properties, images)

	// --- Seed ---
	if _, err := authService.EnsureAdmin(startupCtx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		cancelStartup()
		log.Fatalf("Failed to ensure admin user: %v", err)
	}
	if cfg.SeedProperties {
		n, err := propertyService.SeedDefaults(startupCtx)
		if err != nil {
			log.Printf("Error seeding properties: %v", err)
		} else if n > 0 {
			log.Printf("Seeded %d sample properties", n)
		}
	}
	cancelStartup()

	// --- Expired session cleanup ---
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := authService.CleanupExpiredSessions(cleanupCtx)
				if err != nil {
					log.Printf("Error cleaning up sessions: %v", err)
				} else if n > 0 {
					log.Printf("Removed %d expired sessions", n)
				}
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	// --- Setup Gin Router ---
	router := handler.NewRouter(handler.Deps{
		Auth:          authService,
		Properties:    propertyService,
		UploadsDir:    images.Dir(),
		SecureCookies: cfg.SecureCookies,
		Ping:          db.ping,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
