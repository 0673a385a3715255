package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"mailme/service"
	"mailme/utils"
)

// LabelHandler handles label management requests
type LabelHandler struct {
	labels *service.LabelService
}

// NewLabelHandler creates a new label handler
func NewLabelHandler(labels *service.LabelService) *LabelHandler {
	return &LabelHandler{labels: labels}
}

type labelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Create handles POST /api/labels
func (h *LabelHandler) Create(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req labelRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}
	if req.Name == "" {
		return utils.BadRequestError("Name is required", nil)
	}

	label, err := h.labels.Create(userID, req.Name)
	if err != nil {
		return serviceError(err, "Label not found")
	}

	c.Location(fmt.Sprintf("/api/labels/%s", label.ID))
	return c.Status(fiber.StatusCreated).JSON(label)
}

// List handles GET /api/labels
func (h *LabelHandler) List(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	labels, err := h.labels.List(userID)
	if err != nil {
		return serviceError(err, "Label not found")
	}

	return c.JSON(labels)
}

// Get handles GET /api/labels/:id
func (h *LabelHandler) Get(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	label, err := h.labels.Get(userID, c.Params("id"))
	if err != nil {
		return serviceError(err, "Label not found")
	}

	return c.JSON(label)
}

// Rename handles PATCH /api/labels/:id
func (h *LabelHandler) Rename(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req labelRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}
	if req.Name == "" {
		return utils.BadRequestError("Name is required", nil)
	}

	if err := h.labels.Rename(userID, c.Params("id"), req.Name); err != nil {
		return serviceError(err, "Label not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete handles DELETE /api/labels/:id
func (h *LabelHandler) Delete(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.labels.Delete(userID, c.Params("id")); err != nil {
		return serviceError(err, "Label not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SetColor handles PATCH /api/labels/:id/color
func (h *LabelHandler) SetColor(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req labelRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}
	if !utils.IsValidHexColor(req.Color) {
		return utils.BadRequestError("Color must be a 6-digit hex code like #AABBCC", nil)
	}

	if err := h.labels.SetColor(userID, c.Params("id"), req.Color); err != nil {
		return serviceError(err, "Label not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ResetColor handles DELETE /api/labels/:id/color
func (h *LabelHandler) ResetColor(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.labels.ResetColor(userID, c.Params("id")); err != nil {
		return serviceError(err, "Label not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
