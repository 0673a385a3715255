package api

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"mailme/blacklist"
	"mailme/utils"
)

// BlacklistHandler exposes blacklist administration: adding and removing
// tokens on the remote server directly.
type BlacklistHandler struct {
	client *blacklist.Client
}

// NewBlacklistHandler creates a new blacklist handler
func NewBlacklistHandler(client *blacklist.Client) *BlacklistHandler {
	return &BlacklistHandler{client: client}
}

// Add handles POST /api/blacklist
func (h *BlacklistHandler) Add(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return utils.BadRequestError("token is required", err)
	}

	res := h.client.Add(c.Context(), strings.TrimSpace(req.Token))
	if !res.OK {
		return utils.NewAppError(fiber.StatusBadGateway, res.Message, nil)
	}

	return c.SendStatus(fiber.StatusCreated)
}

// Remove handles DELETE /api/blacklist/:token
func (h *BlacklistHandler) Remove(c *fiber.Ctx) error {
	token, err := url.PathUnescape(c.Params("token"))
	if err != nil {
		token = c.Params("token")
	}

	res := h.client.Remove(c.Context(), token)
	if !res.OK {
		switch res.Reason {
		case blacklist.ReasonNotFound:
			return utils.NotFoundError(res.Message, nil)
		case blacklist.ReasonBadRequest:
			return utils.BadRequestError(res.Message, nil)
		}
		return utils.NewAppError(fiber.StatusBadGateway, res.Message, nil)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
