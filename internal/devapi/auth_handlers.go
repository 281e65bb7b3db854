package devapi

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "agora-devapi"
	tokenAudience = "agora-client"
)

// Register creates an account after the same checks the client runs.
func (s *Server) Register(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if msg := validation.ValidateRegistration(validation.Registration{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.Password,
	}); msg != "" {
		return respondWithError(c, fiber.StatusBadRequest, msg)
	}

	usernameTaken, emailTaken, err := s.userRepo.Exists(ctx, req.Username, req.Email)
	if err != nil {
		return err
	}
	if usernameTaken {
		return respondWithError(c, fiber.StatusBadRequest, "Username is already taken!")
	}
	if emailTaken {
		return respondWithError(c, fiber.StatusBadRequest, "Email is already in use!")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "user registered", slog.Int64("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(user.toModel())
}

// Login accepts a username or email and issues a token and session cookie.
func (s *Server) Login(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return respondWithError(c, fiber.StatusBadRequest, "Username and password are required")
	}

	user, err := s.userRepo.GetByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return respondWithError(c, fiber.StatusUnauthorized, "Invalid username or password")
	}

	token, expires, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	s.logger.InfoContext(ctx, "user logged in", slog.Int64("user_id", user.ID))
	return c.JSON(models.LoginResponse{
		Token:    token,
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Type:     "Bearer",
		Success:  true,
		Message:  "Login successful",
	})
}

// Logout clears the session cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"success": true, "message": "Logged out"})
}

func (s *Server) generateToken(userID int64, username string) (string, time.Time, error) {
	if s.config.JWTSecret == "" {
		return "", time.Time{}, fmt.Errorf("JWT secret not configured")
	}

	now := s.now()
	expires := now.Add(tokenTTL)
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(userID, 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      expires.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}
