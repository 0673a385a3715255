package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"mailme/models"
	"mailme/storage"
	"mailme/utils"
)

const maxAvatarWidth = 256

// UserHandler handles registration and public profiles
type UserHandler struct {
	users *storage.UserStorage
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *storage.UserStorage) *UserHandler {
	return &UserHandler{users: users}
}

type registerRequest struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func validUserID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// Register creates a new account
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if !validUserID(req.UserID) {
		return utils.BadRequestError("userId must contain only letters, digits, '.', '_' or '-'", nil)
	}
	if req.Name == "" {
		return utils.BadRequestError("Name is required", nil)
	}
	if len(req.Password) < 8 {
		return utils.BadRequestError("Password must be at least 8 characters", nil)
	}

	user := &models.User{ID: req.UserID, Name: req.Name}
	if err := h.users.Create(user, req.Password); err != nil {
		return serviceError(err, "User not found")
	}

	c.Location(fmt.Sprintf("/api/users/%s", user.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": user.ID})
}

// GetUser returns the public profile of a user
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.Get(c.Params("id"))
	if err != nil {
		return utils.NotFoundError("User not found", nil)
	}

	return c.JSON(user.Public())
}

// UploadAvatar stores a downscaled profile image for the caller
func (h *UserHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if !strings.EqualFold(c.Params("id"), userID) {
		return utils.ForbiddenError("Access denied", nil)
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return utils.BadRequestError("Avatar file required", err)
	}
	if !utils.IsImage(fileHeader.Header.Get("Content-Type")) {
		return utils.BadRequestError("Avatar must be a JPEG or PNG image", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.BadRequestError("Failed to read avatar", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.BadRequestError("Failed to read avatar", err)
	}

	optimized, err := utils.OptimizeImage(data, maxAvatarWidth)
	if err != nil {
		return utils.BadRequestError("Invalid image data", err)
	}

	if err := h.users.SaveAvatar(userID, optimized); err != nil {
		return utils.InternalServerError("Failed to store avatar", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetAvatar serves a user's profile image
func (h *UserHandler) GetAvatar(c *fiber.Ctx) error {
	data, err := h.users.GetAvatar(c.Params("id"))
	if err != nil {
		return utils.NotFoundError("Avatar not found", nil)
	}

	c.Set(fiber.HeaderContentType, http.DetectContentType(data))
	return c.Send(data)
}
