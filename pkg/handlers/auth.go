package handlers

import (
	"github.com/gofiber/fiber/v2"

	"folio/pkg/models"
	"folio/pkg/services"
)

type AuthHandler struct {
	svc services.AuthService
}

func NewAuth(svc services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	resp, err := h.svc.Register(req, c.Get("User-Agent"), c.IP())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	resp, err := h.svc.Login(req, c.Get("User-Agent"), c.IP())
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	resp, err := h.svc.Refresh(req.RefreshToken)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(resp)
}

// Session restores a session from either a still-valid access token or a
// refresh token, whichever the client has.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	tokenStr := ""
	auth := c.Get("Authorization")
	if len(auth) > 7 && auth[:7] == "Bearer " {
		tokenStr = auth[7:]
	}

	resp, err := h.svc.Session(tokenStr, c.Query("refresh_token"))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int)

	user, err := h.svc.Me(userID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(user)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	c.BodyParser(&req)

	userID, _ := c.Locals("user_id").(int)
	h.svc.Logout(req.RefreshToken, userID)
	return c.JSON(fiber.Map{"ok": true})
}

func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int)
	if err := h.svc.LogoutAll(userID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *AuthHandler) Sessions(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int)

	sessions, err := h.svc.Sessions(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}
	return c.JSON(sessions)
}
