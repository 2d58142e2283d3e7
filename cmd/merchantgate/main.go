package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuelReschke/merchantgate/app/repository"
	"github.com/ManuelReschke/merchantgate/app/repository/memory"
	"github.com/ManuelReschke/merchantgate/internal/pkg/cache"
	"github.com/ManuelReschke/merchantgate/internal/pkg/database"
	"github.com/ManuelReschke/merchantgate/internal/pkg/deliveryqueue"
	"github.com/ManuelReschke/merchantgate/internal/pkg/env"
	"github.com/ManuelReschke/merchantgate/internal/pkg/metrics"
	"github.com/ManuelReschke/merchantgate/internal/pkg/router"
	"github.com/ManuelReschke/merchantgate/internal/pkg/session"
)

func main() {
	app := NewApplication()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	if err != nil {
		log.Fatal(err)
	}
	if err := cache.Close(); err != nil {
		log.Printf("Closing cache: %v", err)
	}
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	factory := setupRepositories()
	cache.SetupCache()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatalf("Registering metrics: %v", err)
	}

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/merchantgate to project root
		"../../../", // Fallback
	}
	basePath := "./"
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public/docs/v1/openapi.yml"); err == nil {
			basePath = path
			break
		}
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName:   "merchantgate",
		BodyLimit: 1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber monitor and prometheus metrics
	metricsAuth := basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "change-me"),
		},
	})
	app.Get("/monitor", metricsAuth, monitor.New())
	app.Get("/metrics", metricsAuth, adaptor.HTTPHandler(promhttp.Handler()))

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	services := router.NewServices(
		factory,
		deliveryqueue.NewQueue(cache.GetClient()),
		session.NewSessionStore(),
	)
	if database.GetDB() != nil {
		services.Health["database"] = pingDatabase
	}
	services.Health["cache"] = cache.Ping
	router.InstallRouter(app, services)

	return app
}

// setupRepositories connects the configured database, or keeps everything in
// process memory when DB_DRIVER=memory.
func setupRepositories() *repository.Factory {
	if database.ConfigFromEnv().Driver == database.DriverMemory {
		log.Println("DB_DRIVER=memory: state is kept in process and lost on restart")
		return repository.NewFactoryWith(memory.NewStore().Repositories())
	}
	database.SetupDatabase()
	return repository.NewFactory(database.GetDB())
}

func pingDatabase(ctx context.Context) error {
	sqlDB, err := database.GetDB().DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
