package controller

import (
	"errors"

	"ai-scheduler-be/internal/dto"
	"ai-scheduler-be/internal/mapper"
	"ai-scheduler-be/internal/pkg/serverutils"
	"ai-scheduler-be/internal/service"
	"ai-scheduler-be/pkg/contactimport"
	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/pending"

	"github.com/gofiber/fiber/v2"
)

type IIntentController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	Resolve(ctx *fiber.Ctx) error
	GetPending(ctx *fiber.Ctx) error
	ClearPending(ctx *fiber.Ctx) error
	Vocabulary(ctx *fiber.Ctx) error
}

type intentController struct {
	service service.IIntentService
	mapper  *mapper.IntentMapper
}

func init() {
	serverutils.RegisterStatusMapper(intentErrorStatus)
}

// intentErrorStatus maps intent-flow errors to HTTP statuses
func intentErrorStatus(err error) int {
	switch {
	case errors.Is(err, pending.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, pending.ErrTokenMismatch),
		errors.Is(err, pending.ErrExpired),
		errors.Is(err, service.ErrTurnSuperseded),
		errors.Is(err, contactimport.ErrUnresolved),
		errors.Is(err, contactimport.ErrEmptyBatch):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrMissingIdentity):
		return fiber.StatusBadRequest
	}
	return 0
}

func NewIntentController(service service.IIntentService) IIntentController {
	return &intentController{service: service, mapper: mapper.NewIntentMapper()}
}

func (c *intentController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/intent/v1")
	h.Get("/vocabulary", c.Vocabulary)

	protected := h.Group("", jwtMiddleware)
	protected.Post("/resolve", c.Resolve)
	protected.Get("/pending", c.GetPending)
	protected.Get("/pending/:threadId", c.GetPending)
	protected.Delete("/pending", c.ClearPending)
	protected.Delete("/pending/:threadId", c.ClearPending)
}

func userIdOf(ctx *fiber.Ctx) (string, error) {
	userId, ok := ctx.Locals("user_id").(string)
	if !ok || userId == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Missing user")
	}
	return userId, nil
}

func (c *intentController) Resolve(ctx *fiber.Ctx) error {
	userId, err := userIdOf(ctx)
	if err != nil {
		return err
	}

	var req dto.ResolveIntentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Resolve(ctx.UserContext(), c.mapper.ResolveRequestFromDTO(userId, &req))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resolve intent", c.mapper.ResolveResponseToDTO(res)))
}

// GetPending returns the record the thread is waiting on. Without a thread
// id it reads the user's global slot.
func (c *intentController) GetPending(ctx *fiber.Ctx) error {
	userId, err := userIdOf(ctx)
	if err != nil {
		return err
	}

	state, err := c.service.GetPending(ctx.UserContext(), userId, ctx.Params("threadId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get pending", c.mapper.PendingToDTO(state)))
}

func (c *intentController) ClearPending(ctx *fiber.Ctx) error {
	userId, err := userIdOf(ctx)
	if err != nil {
		return err
	}

	if err := c.service.ClearPending(ctx.UserContext(), userId, ctx.Params("threadId")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear pending", nil))
}

func (c *intentController) Vocabulary(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get vocabulary", dto.VocabularyResponse{
		Version: intent.VocabularyVersion,
		Intents: intent.Catalog(),
	}))
}
