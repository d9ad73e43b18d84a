package controller

import (
	"fmt"
	"net/url"
	"time"

	"drive-copilot-be/internal/pkg/serverutils"
	"drive-copilot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const oauthStateCookie = "oauth_state"

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
	UserInfo(ctx *fiber.Ctx) error
}

type oauthController struct {
	service      service.IOAuthService
	auth         fiber.Handler
	clientURL    string
	secureCookie bool
}

func NewOAuthController(service service.IOAuthService, auth fiber.Handler, clientURL string, secureCookie bool) IOAuthController {
	return &oauthController{
		service:      service,
		auth:         auth,
		clientURL:    clientURL,
		secureCookie: secureCookie,
	}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	// e.g., /auth/google
	h := r.Group("/auth")
	h.Get("/:provider", c.Login)
	h.Get("/:provider/callback", c.Callback)

	r.Get("/userinfo", c.auth, c.UserInfo)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	loginURL, state, err := c.service.GetLoginURL(ctx.Params("provider"))
	if err != nil {
		return err
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HTTPOnly: true,
		Secure:   c.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctx.Redirect(loginURL, fiber.StatusTemporaryRedirect)
}

func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	state := ctx.Query("state")
	expected := ctx.Cookies(oauthStateCookie)
	if state == "" || state != expected {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Invalid login state. Please try again."))
	}
	ctx.ClearCookie(oauthStateCookie)

	res, err := c.service.HandleCallback(ctx.UserContext(), ctx.Params("provider"), ctx.Query("code"))
	if err != nil {
		return err
	}

	redirectURL := fmt.Sprintf("%s/app?token=%s", c.clientURL, url.QueryEscape(res.AccessToken))
	return ctx.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (c *oauthController) UserInfo(ctx *fiber.Ctx) error {
	res, err := c.service.GetUserInfo(ctx.UserContext(), serverutils.UserID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
