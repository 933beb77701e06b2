package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/bookcatalog/internal/access"
	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database"
	auditrepo "github.com/mrlokans/bookcatalog/internal/database/audit"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/database/permissions"
	"github.com/mrlokans/bookcatalog/internal/database/seed"
	http_controllers "github.com/mrlokans/bookcatalog/internal/http"
	"github.com/mrlokans/bookcatalog/internal/scheduler"
	"github.com/mrlokans/bookcatalog/internal/tasks"
	"github.com/mrlokans/bookcatalog/internal/validation"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -2 is SIGINT, plain kill sends SIGTERM. SIGKILL can't be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Background workers stop before the listener does
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// csrfSecret decodes the configured secret, falling back to the raw bytes
// when it is not hex. An empty setting generates a fresh one.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, err
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(secret)
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Book Catalog v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	auditor := audit.NewService(auditrepo.NewRepository(db.DB))
	defer auditor.Wait()

	// Bootstrap runs on every start and only fills in what is missing
	registry := access.DefaultRegistry()
	report, err := seed.NewSeeder(db.DB, registry, seed.Options{
		BookCount:  cfg.Catalog.SeedBookCount,
		BcryptCost: cfg.Auth.BcryptCost,
	}).Run()
	auditor.LogSeed(report.String(), err)
	if err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	perms := permissions.NewRepository(db.DB)
	if err := registry.Validate(perms); err != nil {
		log.Fatalf("Permission table is incomplete (run 'migrate'): %v", err)
	}

	limiter := auth.NewRateLimiter(auth.RateLimitConfigFrom(cfg.Auth))
	defer limiter.Stop()
	authService := auth.NewService(db.DB, cfg.Auth, limiter)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	secret, err := csrfSecret(cfg.Auth.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}

	// Task queue runs the housekeeping jobs
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks, cfg.Audit))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.RegisterMaintenance(auditor, authService)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Scheduler.Enabled {
		if taskClient == nil {
			log.Printf("WARNING: scheduler is enabled but the task queue is not. Maintenance will not run.")
		} else {
			maintenance = scheduler.NewMaintenanceScheduler(taskClient, cfg.Scheduler.MaintenanceSchedule)
			if err := maintenance.Start(context.Background()); err != nil {
				log.Fatalf("Failed to start maintenance scheduler: %v", err)
			}
		}
	}

	bookRepo := books.NewRepository(db.DB)
	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		Books:          bookRepo,
		Permissions:    perms,
		Checker:        access.NewChecker(registry, perms),
		Validator:      validation.New(),
		Auditor:        auditor,
		AuthService:    authService,
		SessionManager: sessionManager,
		CSRFSecret:     secret,
		SecureCookies:  cfg.Auth.SecureCookies,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		PageSize:       cfg.Catalog.PageSize,
		TemplatesPath:  cfg.UI.TemplatesPath,
		Version:        version,
	})

	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
