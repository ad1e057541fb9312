package main

import (
	"context"
	"log"
	"os"
	"time"

	apimod "github.com/example/task-planner/modules/api"
	"github.com/example/task-planner/modules/auth"
	cachemod "github.com/example/task-planner/modules/cache"
	"github.com/example/task-planner/modules/notification"
	taskmod "github.com/example/task-planner/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	redisAddr := os.Getenv("REDIS_ADDR")
	cacheTTL := getEnvDuration("CACHE_TTL", time.Minute)
	cachePrefix := getEnv("CACHE_PREFIX", "tasks:")
	apiPort := getEnv("API_PORT", "3000")

	log.Println("=== Task Planner ===")
	if redisAddr != "" {
		log.Printf("Redis: %s", redisAddr)
	} else {
		log.Println("Redis: disabled (set REDIS_ADDR to enable list caching)")
	}
	log.Printf("HTTP Port: %s", apiPort)

	// Create modules
	authModule := auth.NewModule()
	taskModule := taskmod.NewModule()
	notificationModule := notification.NewModule()
	apiModule := apimod.NewModule()

	var cacheModule *cachemod.Module
	if redisAddr != "" {
		cacheModule = cachemod.NewModule(redisAddr, cachePrefix, cacheTTL)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	if cacheModule != nil {
		app.Register(cacheModule)
	}
	app.Register(authModule)
	app.Register(taskModule)
	app.Register(notificationModule)
	app.Register(apiModule) // Depends on auth and task modules

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wire up the cache after start; the task module falls back to the
	// database when no cache is attached
	if cacheModule != nil {
		taskModule.SetCache(cacheModule.GetCache())
	}

	printStartupInfo(apiPort)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(port string) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  POST   /api/auth/register  - Register a new user")
	log.Println("  POST   /api/auth/login     - Login and get tokens")
	log.Println("  POST   /api/auth/refresh   - Refresh access token")
	log.Println("  GET    /health             - Health check")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  GET    /api/tasks          - List tasks (?status=, ?search=)")
	log.Println("  POST   /api/tasks          - Create a task")
	log.Println("  GET    /api/tasks/:id      - Get a task")
	log.Println("  PUT    /api/tasks/:id      - Update a task")
	log.Println("  DELETE /api/tasks/:id      - Delete a task")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration returns the environment variable as a duration or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
