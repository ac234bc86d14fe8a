package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/flywheel/pkg/eventbus"
	"github.com/dukex/flywheel/pkg/persistence"
	"github.com/dukex/flywheel/pkg/services"
	"github.com/dukex/flywheel/pkg/web"
	"github.com/dukex/flywheel/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	builder     *workflow.Builder
	generator   services.ContentGenerator
	twitter     services.Twitter
	validate    *validator.Validate
}

// NewAPI wires the HTTP API. A nil generator or twitter client leaves the
// matching routes answering 503.
func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	builder *workflow.Builder,
	generator services.ContentGenerator,
	twitter services.Twitter,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		builder:     builder,
		generator:   generator,
		twitter:     twitter,
		validate:    web.NewValidator(),
	}
}

func (a *API) App() *fiber.App {
	workflowService := services.NewWorkflow(a.persistence, a.eventBus, a.builder, a.logger)
	contentService := services.NewContent(a.generator, a.eventBus, a.logger)
	socialService := services.NewSocial(a.twitter, a.eventBus, a.logger)
	activityService := services.NewActivity(a.persistence, a.logger)

	handlers := web.NewAPIHandlers(workflowService, contentService, socialService, activityService, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flywheel API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
