package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"alfredoptarigan/ats-resume-analyzer/internal/models"
	"alfredoptarigan/ats-resume-analyzer/internal/repositories"
	"alfredoptarigan/ats-resume-analyzer/internal/services"
)

const userIDKey = "user_id"

type AuthHandler struct {
	auth  services.AuthService
	store *session.Store
}

func NewAuthHandler(auth services.AuthService, store *session.Store) *AuthHandler {
	return &AuthHandler{
		auth:  auth,
		store: store,
	}
}

// Register mounts the account routes on r.
func (h *AuthHandler) Register(r fiber.Router) {
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
	r.Get("/me", h.RequireLogin, h.HandleMe)
}

// HandleRegister handles POST /register
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	user, err := h.auth.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	log.Printf("✅ User %q registered\n", user.Username)
	return c.Status(fiber.StatusCreated).JSON(models.UserResponse{
		Success: true,
		User:    user,
		Message: "Registration successful. Please log in.",
	})
}

// HandleLogin handles POST /login
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "Invalid request payload")
	}

	user, err := h.auth.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := sess.Regenerate(); err != nil {
		return respondError(c, err)
	}
	sess.Set(userIDKey, user.ID)
	if err := sess.Save(); err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.UserResponse{
		Success: true,
		User:    user,
		Message: "Login successful",
	})
}

// HandleLogout handles POST /logout
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := sess.Destroy(); err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.UserResponse{
		Success: true,
		Message: "Logged out",
	})
}

// HandleMe handles GET /me
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	id, ok := SessionOwner(c).User()
	if !ok {
		return failure(c, fiber.StatusUnauthorized, "Login required")
	}

	user, err := h.auth.FindUser(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return failure(c, fiber.StatusUnauthorized, "Login required")
		}
		return respondError(c, err)
	}

	return c.JSON(models.UserResponse{
		Success: true,
		User:    user,
	})
}

// RequireLogin rejects requests without a logged-in session and exposes the
// user id to later handlers through Locals.
func (h *AuthHandler) RequireLogin(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return respondError(c, err)
	}

	id, ok := sess.Get(userIDKey).(uint)
	if !ok || id == 0 {
		return failure(c, fiber.StatusUnauthorized, "Login required")
	}

	c.Locals(userIDKey, id)
	return c.Next()
}
