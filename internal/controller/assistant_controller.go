package controller

import (
	"drive-copilot-be/internal/dto"
	"drive-copilot-be/internal/pkg/serverutils"
	"drive-copilot-be/internal/service"
	"drive-copilot-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	ResetConversation(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
	auth             fiber.Handler
}

func NewAssistantController(assistantService service.IAssistantService, auth fiber.Handler) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
		auth:             auth,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	r.Post("/ask", c.auth, c.Ask)
	r.Delete("/conversation", c.auth, c.ResetConversation)
}

func (c *assistantController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Wrap(apperror.KindBadRequest, "Invalid request body", err)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.Ask(ctx.UserContext(), serverutils.UserID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *assistantController) ResetConversation(ctx *fiber.Ctx) error {
	if err := c.assistantService.ResetConversation(ctx.UserContext(), serverutils.UserID(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversation cleared", nil))
}
