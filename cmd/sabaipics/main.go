package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/sabaipics/sabaipics/app/controllers"
	"github.com/sabaipics/sabaipics/app/repository"
	"github.com/sabaipics/sabaipics/internal/pkg/admission"
	"github.com/sabaipics/sabaipics/internal/pkg/billing"
	"github.com/sabaipics/sabaipics/internal/pkg/cache"
	"github.com/sabaipics/sabaipics/internal/pkg/credits"
	"github.com/sabaipics/sabaipics/internal/pkg/database"
	"github.com/sabaipics/sabaipics/internal/pkg/env"
	"github.com/sabaipics/sabaipics/internal/pkg/jobqueue"
	"github.com/sabaipics/sabaipics/internal/pkg/normalize"
	"github.com/sabaipics/sabaipics/internal/pkg/objstorage"
	"github.com/sabaipics/sabaipics/internal/pkg/presign"
	"github.com/sabaipics/sabaipics/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	if env.IsDev() {
		fiberlog.SetLevel(fiberlog.LevelDebug)
	}
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	repos := repository.NewRepositories(db)

	storageCfg, err := objstorage.LoadConfig()
	if err != nil {
		log.Fatalf("object storage config: %v", err)
	}
	storage, err := objstorage.NewClient(storageCfg)
	if err != nil {
		log.Fatalf("object storage client: %v", err)
	}

	normalizer, err := normalize.New(normalize.Config{
		Backend:      env.GetEnv("NORMALIZE_BACKEND", normalize.BackendCodec),
		TransformURL: env.GetEnv("NORMALIZE_TRANSFORM_URL", ""),
	})
	if err != nil {
		log.Fatalf("normalizer: %v", err)
	}

	creditEngine := credits.NewEngine(db)
	queue := jobqueue.NewProducer()
	settler := admission.NewLedgerSettler(db, creditEngine, repos.Photos)

	admissionSvc := admission.NewService(repos.Events, repos.Photos, creditEngine, normalizer, storage, settler, queue)
	presignSvc := presign.NewService(repos.Events, repos.Intents, creditEngine, storage)
	billingSvc := billing.NewService(db, creditEngine, repos.Photographers)

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: presign.MaxContentLength,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app, router.Deps{
		Repos:    repos,
		Uploads:  controllers.NewUploadController(admissionSvc),
		Presigns: controllers.NewPresignController(presignSvc),
		Billing:  controllers.NewBillingController(billingSvc),
	})

	return app
}
