package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"mailme/service"
	"mailme/utils"
)

// MailHandler exposes the mail state machine over HTTP
type MailHandler struct {
	mails    *service.MailService
	statuses *service.StatusService
}

// NewMailHandler creates a new mail handler
func NewMailHandler(mails *service.MailService, statuses *service.StatusService) *MailHandler {
	return &MailHandler{mails: mails, statuses: statuses}
}

type composeRequest struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	IsDraft bool     `json:"isDraft"`
}

// Create handles POST /api/mails: create a draft or send a new mail
func (h *MailHandler) Create(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req composeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	if !req.IsDraft && len(req.To) == 0 {
		return utils.BadRequestError("Recipients are required for sending mails", nil)
	}

	outcome, err := h.mails.CreateMail(c.Context(), userID, req.To, req.Subject, req.Body, req.IsDraft)
	if err != nil {
		if errors.Is(err, service.ErrNoRecipients) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":         "Mail was not sent. None of the recipients exist.",
				"invalidEmails": outcome.InvalidEmails,
			})
		}
		return serviceError(err, "Mail not found")
	}

	resp := fiber.Map{"id": outcome.MailID}
	if outcome.Warning != "" {
		resp["warning"] = outcome.Warning
		resp["invalidEmails"] = outcome.InvalidEmails
	}

	c.Location(fmt.Sprintf("/api/mails/%s", outcome.MailID))
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Get handles GET /api/mails/:id
func (h *MailHandler) Get(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	summary, err := h.mails.GetMail(c.Params("id"), userID)
	if err != nil {
		return serviceError(err, "Mail not found")
	}

	return c.JSON(summary)
}

// Update handles PATCH /api/mails/:id: edit a draft's subject or body
func (h *MailHandler) Update(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}
	if _, ok := fields["from"]; ok {
		return utils.BadRequestError("You cannot modify this field", nil)
	}
	if _, ok := fields["to"]; ok {
		return utils.BadRequestError("You cannot modify this field", nil)
	}

	var upd service.DraftUpdate
	if raw, ok := fields["subject"]; ok {
		var subject string
		if err := json.Unmarshal(raw, &subject); err != nil {
			return utils.BadRequestError("Invalid subject", err)
		}
		upd.Subject = &subject
	}
	if raw, ok := fields["body"]; ok {
		var body string
		if err := json.Unmarshal(raw, &body); err != nil {
			return utils.BadRequestError("Invalid body", err)
		}
		upd.Body = &body
	}

	if err := h.mails.UpdateDraft(c.Params("id"), userID, upd); err != nil {
		return serviceError(err, "Mail not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete handles DELETE /api/mails/:id: removes the caller's copy only
func (h *MailHandler) Delete(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.mails.DeleteMail(c.Params("id"), userID); err != nil {
		return serviceError(err, "Mail not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Send handles PATCH /api/mails/:id/send: draft -> sent transition
func (h *MailHandler) Send(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req composeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	outcome, err := h.mails.SendDraft(c.Context(), c.Params("id"), userID, req.To, req.Subject, req.Body)
	if err != nil {
		if errors.Is(err, service.ErrNoRecipients) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":         "Mail was not sent. None of the recipients exist.",
				"invalidEmails": outcome.InvalidEmails,
			})
		}
		return serviceError(err, "Mail not found")
	}

	if outcome.Warning != "" {
		return c.JSON(fiber.Map{
			"warning":       outcome.Warning,
			"invalidEmails": outcome.InvalidEmails,
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Star handles PATCH /api/mails/:id/star
func (h *MailHandler) Star(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.statuses.ToggleStar(c.Params("id"), userID); err != nil {
		return serviceError(err, "Mail not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Spam handles PATCH /api/mails/:id/spam
func (h *MailHandler) Spam(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req struct {
		IsSpam *bool `json:"isSpam"`
	}
	if err := c.BodyParser(&req); err != nil || req.IsSpam == nil {
		return utils.BadRequestError("isSpam is required", err)
	}

	if err := h.statuses.SetSpam(c.Context(), c.Params("id"), userID, *req.IsSpam); err != nil {
		return serviceError(err, "Mail not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Read handles PATCH /api/mails/:id/read
func (h *MailHandler) Read(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.statuses.MarkRead(c.Params("id"), userID); err != nil {
		return serviceError(err, "Mail not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AddLabel handles POST /api/mails/:id/labels
func (h *MailHandler) AddLabel(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req struct {
		LabelID string `json:"labelId"`
	}
	if err := c.BodyParser(&req); err != nil || req.LabelID == "" {
		return utils.BadRequestError("labelId is required", err)
	}

	if err := h.statuses.AddLabel(c.Params("id"), userID, req.LabelID); err != nil {
		return serviceError(err, "Mail or label not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveLabel handles DELETE /api/mails/:id/labels/:labelId
func (h *MailHandler) RemoveLabel(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.statuses.RemoveLabel(c.Params("id"), userID, c.Params("labelId")); err != nil {
		return serviceError(err, "Mail not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// List handles GET /api/mails with folder/label filters and pagination
func (h *MailHandler) List(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	if labelID := c.Query("label"); labelID != "" {
		page, err := h.mails.ListByLabel(userID, labelID, limit, offset)
		if err != nil {
			return serviceError(err, "Label not found")
		}
		return c.JSON(page)
	}

	page, err := h.mails.ListFolder(userID, c.Query("folder", service.FolderAll), limit, offset)
	if err != nil {
		return serviceError(err, "Folder not found")
	}
	return c.JSON(page)
}

// Search handles GET /api/mails/search/:query
func (h *MailHandler) Search(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	q, err := url.PathUnescape(c.Params("query"))
	if err != nil {
		q = c.Params("query")
	}
	if q == "" {
		return utils.BadRequestError("Search query cannot be empty", nil)
	}

	page, err := h.mails.SearchMails(userID, q, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return serviceError(err, "Mail not found")
	}
	return c.JSON(page)
}
