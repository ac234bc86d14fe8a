// Package web provides the HTTP handlers of the flywheel API.
package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/flywheel/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	workflowService *services.Workflow
	contentService  *services.Content
	socialService   *services.Social
	activityService *services.Activity
	validator       *validator.Validate
	logger          *slog.Logger
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	contentService *services.Content,
	socialService *services.Social,
	activityService *services.Activity,
	validator *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		contentService:  contentService,
		socialService:   socialService,
		activityService: activityService,
		validator:       validator,
		logger:          logger,
	}
}

// Register mounts every API route on router.
func (h *APIHandlers) Register(router fiber.Router) {
	api := router.Group("/api")
	api.Post("/generate", h.GenerateContent)
	api.Post("/workflow", h.BuildWorkflow)
	api.Get("/workflow/:versionId", h.DownloadWorkflow)
	api.Get("/workflows", h.ListWorkflows)
	api.Get("/activity", h.ListActivity)

	tw := api.Group("/twitter")
	tw.Post("/publish", h.PublishTweet)
	tw.Post("/engage", h.Engage)
	tw.Post("/dm", h.SendDirectMessages)

	router.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Flywheel API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Flywheel API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GenerateContent(c fiber.Ctx) error {
	var req GenerateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, describeValidation(err))
	}

	result, err := h.contentService.Generate(c.Context(), req.toGeneratorRequest())
	if err != nil {
		return h.fail(c, "api/generate", err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) BuildWorkflow(c fiber.Ctx) error {
	var req WorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	req.ApplyDefaults()

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Invalid workflow configuration: "+describeValidation(err))
	}

	result, err := h.workflowService.Build(c.Context(), req.Options())
	if err != nil {
		return h.fail(c, "api/workflow", err)
	}

	return c.JSON(result)
}

// DownloadWorkflow serves the stored n8n document, without its build
// metadata, as a file named after the workflow.
func (h *APIHandlers) DownloadWorkflow(c fiber.Ctx) error {
	versionID := c.Params("versionId")
	if versionID == "" {
		return badRequest(c, "Workflow version ID is required")
	}

	stored, err := h.workflowService.FetchByVersionID(c.Context(), versionID)
	if err != nil {
		return h.fail(c, "api/workflow", err)
	}

	c.Attachment(stored.DownloadName)

	return c.JSON(stored.Result.Workflow)
}

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	summaries, err := h.workflowService.List(c.Context())
	if err != nil {
		return h.fail(c, "api/workflows", err)
	}

	return c.JSON(fiber.Map{
		"workflows":   summaries,
		"total_count": len(summaries),
	})
}

func (h *APIHandlers) ListActivity(c fiber.Ctx) error {
	limit := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid query parameters: limit must be an integer")
		}

		limit = parsed
	}

	activities, err := h.activityService.Recent(c.Context(), limit)
	if err != nil {
		return h.fail(c, "api/activity", err)
	}

	return c.JSON(fiber.Map{"activities": activities})
}

func (h *APIHandlers) PublishTweet(c fiber.Ctx) error {
	var req PublishRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, describeValidation(err))
	}

	result, err := h.socialService.Publish(c.Context(), req.toTwitterRequest())
	if err != nil {
		return h.fail(c, "api/twitter/publish", err)
	}

	return c.JSON(fiber.Map{
		"status":  "posted",
		"tweet":   result.Tweet,
		"mediaId": result.MediaID,
		"thread":  result.Thread,
	})
}

func (h *APIHandlers) Engage(c fiber.Ctx) error {
	var req EngageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, describeValidation(err))
	}

	results, err := h.socialService.Engage(c.Context(), req.toTwitterRequests())
	if err != nil {
		return h.fail(c, "api/twitter/engage", err)
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"results": results,
	})
}

func (h *APIHandlers) SendDirectMessages(c fiber.Ctx) error {
	var req DMRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, describeValidation(err))
	}

	outcomes, err := h.socialService.SendDirectMessages(c.Context(), req.Message, req.toRecipients())
	if err != nil {
		return h.fail(c, "api/twitter/dm", err)
	}

	return c.JSON(fiber.Map{
		"status":   "sent",
		"outcomes": outcomes,
	})
}

// fail logs server-side failures under their route and writes the problem
// response.
func (h *APIHandlers) fail(c fiber.Ctx, route string, err error) error {
	if !services.IsValidationError(err) && !services.IsNotFoundError(err) {
		h.logger.ErrorContext(c.Context(), "Request failed", "route", route, "error", err)
	}

	return handleServiceError(c, err)
}
