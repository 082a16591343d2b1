package server

import (
	"log/slog"
	"strconv"
	"time"

	"terrascore/internal/middleware"
	"terrascore/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "terrascore-api"
	tokenAudience = "terrascore-client"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// generateToken creates a signed JWT for the user.
func (s *Server) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(time.Duration(s.config.JWTExpiryHours) * time.Hour).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
		"role":     string(user.Role),
		"username": user.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// Login authenticates a user by username and password and issues a JWT.
// Accounts only exist once an admin has approved the registration request,
// so an unknown username and a pending request look identical to the caller.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return respondError(c, models.NewValidationError("username and password are required"))
	}

	user, err := s.userRepo.GetByUsername(c.UserContext(), req.Username)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return respondError(c, models.NewUnauthorizedError("Invalid credentials"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return respondError(c, models.NewUnauthorizedError("Invalid credentials"))
	}

	token, err := s.generateToken(user)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(loginResponse{Token: token, User: user})
}

// Logout revokes the caller's token by blacklisting its JTI until expiry.
func (s *Server) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	tokenString := ""
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		tokenString = authHeader[7:]
	}

	if tokenString != "" && s.redis != nil {
		token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
		if err == nil {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				jti, _ := claims["jti"].(string)
				exp, _ := claims["exp"].(float64)
				if jti != "" && exp > 0 {
					ttl := time.Until(time.Unix(int64(exp), 0))
					if ttl > 0 {
						if err := s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl).Err(); err != nil {
							// The token stays valid until expiry; surface the
							// failed revocation instead of silently succeeding.
							middleware.Logger.ErrorContext(c.UserContext(), "failed to blacklist token",
								slog.String("jti", jti),
								slog.Any("error", err),
							)
							return respondError(c, models.NewInternalError(err))
						}
					}
				}
			}
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "Logged out"})
}

// Me returns the authenticated user's profile.
func (s *Server) Me(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}
