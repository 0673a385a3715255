package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"mailme/service"
	"mailme/utils"
)

// currentUser returns the authenticated user ID set by the auth middleware.
func currentUser(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		return "", utils.UnauthorizedError("User not authenticated", nil)
	}
	return userID, nil
}

// serviceError maps service sentinels onto HTTP errors.
func serviceError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return utils.NotFoundError(notFoundMsg, nil)
	case errors.Is(err, service.ErrSpamLocked):
		return utils.BadRequestError("Mail is marked as spam", nil)
	case errors.Is(err, service.ErrNotRecipient):
		return utils.BadRequestError("Mail was not received by this user", nil)
	case errors.Is(err, service.ErrNotDraft):
		return utils.BadRequestError("Mail is not a draft", nil)
	case errors.Is(err, service.ErrNameTaken):
		return utils.BadRequestError("Name already exists", nil)
	case errors.Is(err, service.ErrForbidden):
		return utils.ForbiddenError("Access denied", nil)
	}
	return utils.InternalServerError("Internal error", err)
}
