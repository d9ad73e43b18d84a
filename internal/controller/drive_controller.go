package controller

import (
	"drive-copilot-be/internal/pkg/serverutils"
	"drive-copilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDriveController interface {
	RegisterRoutes(r fiber.Router)
	CacheStatus(ctx *fiber.Ctx) error
	InitialContext(ctx *fiber.Ctx) error
	Refresh(ctx *fiber.Ctx) error
}

type driveController struct {
	driveIndexService service.IDriveIndexService
	auth              fiber.Handler
}

func NewDriveController(driveIndexService service.IDriveIndexService, auth fiber.Handler) IDriveController {
	return &driveController{
		driveIndexService: driveIndexService,
		auth:              auth,
	}
}

func (c *driveController) RegisterRoutes(r fiber.Router) {
	r.Get("/cache-status", c.auth, c.CacheStatus)
	r.Get("/initial-context", c.auth, c.InitialContext)
	r.Post("/drive/refresh", c.auth, c.Refresh)
}

func (c *driveController) CacheStatus(ctx *fiber.Ctx) error {
	res, err := c.driveIndexService.Status(ctx.UserContext(), serverutils.UserID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *driveController) InitialContext(ctx *fiber.Ctx) error {
	res, err := c.driveIndexService.InitialContext(ctx.UserContext(), serverutils.UserID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *driveController) Refresh(ctx *fiber.Ctx) error {
	res, err := c.driveIndexService.RequestRefresh(ctx.UserContext(), serverutils.UserID(ctx))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(res)
}
