package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"mailme/config"
	"mailme/storage"
	"mailme/utils"
)

// AuthHandler issues JWTs for registered users
type AuthHandler struct {
	config *config.Config
	users  *storage.UserStorage
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.Config, users *storage.UserStorage) *AuthHandler {
	return &AuthHandler{config: cfg, users: users}
}

type tokenRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// CreateToken verifies credentials and returns a signed JWT
func (h *AuthHandler) CreateToken(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	if req.UserID == "" || req.Password == "" {
		return utils.BadRequestError("userId and password are required", nil)
	}

	user, err := h.users.Authenticate(req.UserID, req.Password)
	if err != nil {
		return utils.UnauthorizedError("Invalid credentials", nil)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.config.TokenTTL())),
	})

	signed, err := token.SignedString([]byte(h.config.Auth.JWTSecret))
	if err != nil {
		return utils.InternalServerError("Failed to sign token", err)
	}

	return c.JSON(fiber.Map{"token": signed})
}

// RequireAuth validates the Bearer token and stores the user ID in Locals
func RequireAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return utils.UnauthorizedError("Missing bearer token", nil)
		}

		token, err := jwt.ParseWithClaims(
			strings.TrimPrefix(header, "Bearer "),
			&jwt.RegisteredClaims{},
			func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			},
		)
		if err != nil || !token.Valid {
			return utils.UnauthorizedError("Invalid token", err)
		}

		claims := token.Claims.(*jwt.RegisteredClaims)
		if claims.Subject == "" {
			return utils.UnauthorizedError("Invalid token", nil)
		}

		c.Locals("userId", claims.Subject)
		return c.Next()
	}
}
