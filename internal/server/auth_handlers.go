package server

import (
	"strconv"
	"strings"
	"time"

	"friendnet/internal/cache"
	"friendnet/internal/middleware"
	"friendnet/internal/models"
	"friendnet/internal/observability"
	"friendnet/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// issueToken signs a JWT of the given type for the user.
func (s *Server) issueToken(userID uint, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": middleware.TokenIssuer,
		"aud": middleware.TokenAudience,
		"typ": typ,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *Server) issueTokenPair(userID uint) (*tokenPair, error) {
	access, err := s.issueToken(userID, "access", s.config.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issueToken(userID, "refresh", s.config.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &tokenPair{Access: access, Refresh: refresh}, nil
}

// Signup handles POST /api/auth/signup
// @Summary Register a new user
// @Description Create a user account and return the stored profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string,confirm_password=string,first_name=string,last_name=string} true "Signup request"
// @Success 201 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return respondError(c, models.NewValidationError("Username, email, password and confirm_password are required"))
	}
	if err := validation.ValidateUsername(req.Username); err != nil {
		return respondError(c, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return respondError(c, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return respondError(c, models.NewValidationError(err.Error()))
	}
	if req.Password != req.ConfirmPassword {
		return respondError(c, models.NewValidationError("Passwords do not match."))
	}

	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		observability.RecordAuthAttempt("signup", false)
		return respondError(c, err)
	}
	if existing != nil {
		observability.RecordAuthAttempt("signup", false)
		return respondError(c, models.NewValidationError("User with this email already exists."))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	user := &models.User{
		Username:  req.Username,
		Email:     strings.ToLower(req.Email),
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := s.userRepo.Create(c.Context(), user); err != nil {
		observability.RecordAuthAttempt("signup", false)
		return respondError(c, err)
	}

	observability.RecordAuthAttempt("signup", true)
	return respond(c, fiber.StatusCreated, "User created successfully.", user)
}

// Login handles POST /api/auth/login
// @Summary Authenticate a user
// @Description Verify credentials and return an access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return respondError(c, err)
	}
	// Credential failures are reported as 400, not 401.
	if user == nil {
		observability.RecordAuthAttempt("login", false)
		return respondError(c, models.NewAuthenticationError("Invalid Credentials"))
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		observability.RecordAuthAttempt("login", false)
		return respondError(c, models.NewAuthenticationError("Invalid Credentials"))
	}

	pair, err := s.issueTokenPair(user.ID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	observability.RecordAuthAttempt("login", true)
	return c.Status(fiber.StatusOK).JSON(models.NewEnvelope(true, "Login successful.", pair, nil))
}

// Refresh handles POST /api/auth/refresh
// @Summary Refresh the access token
// @Description Exchange a valid refresh token for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh=string} true "Refresh token"
// @Success 200 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Router /auth/refresh [post]
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.BodyParser(&req); err != nil || req.Refresh == "" {
		return respondError(c, models.NewUnauthorizedError("Refresh token required"))
	}

	claims, err := middleware.ParseToken(req.Refresh)
	if err != nil {
		return respondError(c, models.NewUnauthorizedError("Invalid or expired token"))
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return respondError(c, models.NewUnauthorizedError("Invalid token type"))
	}
	jti, _ := claims["jti"].(string)
	if cache.IsTokenRevoked(c.Context(), jti) {
		return respondError(c, models.NewUnauthorizedError("Token has been revoked"))
	}
	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return respondError(c, models.NewUnauthorizedError("Invalid token subject"))
	}

	access, err := s.issueToken(uint(userID), "access", s.config.AccessTokenTTL)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusOK).JSON(models.NewEnvelope(true, "Token refreshed.",
		fiber.Map{"access": access}, nil))
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Revoke the presented token until its natural expiry
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return respondError(c, models.NewUnauthorizedError("Authorization header required"))
	}

	claims, err := middleware.ParseToken(parts[1])
	if err != nil {
		return respondError(c, models.NewUnauthorizedError("Invalid or expired token"))
	}

	jti, _ := claims["jti"].(string)
	var ttl time.Duration
	if exp, ok := claims["exp"].(float64); ok {
		ttl = time.Until(time.Unix(int64(exp), 0))
	}
	if jti != "" && ttl > 0 {
		if err := cache.RevokeToken(c.Context(), jti, ttl); err != nil {
			return respondError(c, models.NewInternalError(err))
		}
		observability.ActiveTokensRevoked.Inc()
	}

	return respond(c, fiber.StatusOK, "Logged out.", nil)
}
