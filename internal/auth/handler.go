package auth

import (
    "errors"
    "log/slog"
    "net/http"
    "strings"

    "github.com/gofiber/fiber/v2"

    "github.com/docuhero/docuhero-api/internal/identity"
    "github.com/docuhero/docuhero-api/internal/metrics"
    "github.com/docuhero/docuhero-api/internal/validate"
)

// Handler exposes the public /auth endpoints.
type Handler struct {
    ids      *identity.Service
    tokens   *TokenService
    validate *validate.Validator
    metrics  *metrics.Metrics
    logger   *slog.Logger
}

func NewHandler(ids *identity.Service, tokens *TokenService, v *validate.Validator, m *metrics.Metrics, logger *slog.Logger) *Handler {
    return &Handler{ids: ids, tokens: tokens, validate: v, metrics: m, logger: logger}
}

type syncUserRequest struct {
    FirebaseUID string `json:"firebaseUid" validate:"required"`
    Email       string `json:"email" validate:"omitempty,email"`
    Phone       string `json:"phone"`
    FirstName   string `json:"firstName" validate:"required"`
    LastName    string `json:"lastName" validate:"required"`
    Role        string `json:"role" validate:"required,oneof=AGENCY_ADMIN EMPLOYEE GUARDIAN CASE_MANAGER"`
    AgencyID    string `json:"agencyId"`
}

// bcrypt refuses passwords longer than 72 bytes.
type signupRequest struct {
    Email     string `json:"email" validate:"required,email"`
    Password  string `json:"password" validate:"required,min=8,maxbytes=72"`
    FirstName string `json:"firstName" validate:"required"`
    LastName  string `json:"lastName" validate:"required"`
    Role      string `json:"role" validate:"required,oneof=CLIENT PROVIDER SUPERVISOR AGENCY_ADMIN"`
}

type loginRequest struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
}

type verifyRequest struct {
    Token string `json:"token"`
}

type authResponse struct {
    Message string        `json:"message"`
    User    identity.User `json:"user"`
    Token   string        `json:"token"`
}

// SyncUser upserts a Firebase-authenticated user and returns an API token.
func (h *Handler) SyncUser(c *fiber.Ctx) error {
    var req syncUserRequest
    if err := parseBody(c, &req); err != nil {
        return err
    }
    req.FirebaseUID = strings.TrimSpace(req.FirebaseUID)
    req.Email = normalizeEmail(req.Email)
    req.Phone = strings.TrimSpace(req.Phone)
    req.FirstName = strings.TrimSpace(req.FirstName)
    req.LastName = strings.TrimSpace(req.LastName)
    if err := h.validate.Struct(req); err != nil {
        return err
    }

    user, err := h.ids.Sync(c.UserContext(), identity.SyncInput{
        FirebaseUID: req.FirebaseUID,
        Email:       req.Email,
        Phone:       req.Phone,
        FirstName:   req.FirstName,
        LastName:    req.LastName,
        Role:        req.Role,
        AgencyID:    strings.TrimSpace(req.AgencyID),
    })
    if errors.Is(err, identity.ErrEmailTaken) {
        return fiber.NewError(http.StatusConflict, "Email already registered")
    }
    if err != nil {
        h.logger.Error("user sync failed", slog.String("firebase_uid", req.FirebaseUID), slog.Any("error", err))
        return fiber.NewError(http.StatusInternalServerError, "Failed to sync user")
    }

    return h.respondWithToken(c, http.StatusOK, "sync", "User synced successfully", user)
}

// Signup registers a password-based user.
func (h *Handler) Signup(c *fiber.Ctx) error {
    var req signupRequest
    if err := parseBody(c, &req); err != nil {
        return err
    }
    req.Email = normalizeEmail(req.Email)
    req.FirstName = strings.TrimSpace(req.FirstName)
    req.LastName = strings.TrimSpace(req.LastName)
    if err := h.validate.Struct(req); err != nil {
        return err
    }

    user, err := h.ids.Register(c.UserContext(), identity.Registration{
        Email:     req.Email,
        Password:  req.Password,
        FirstName: req.FirstName,
        LastName:  req.LastName,
        Role:      req.Role,
    })
    if errors.Is(err, identity.ErrEmailTaken) {
        return fiber.NewError(http.StatusConflict, "Email already registered")
    }
    if errors.Is(err, identity.ErrPasswordTooLong) {
        return &validate.Error{Fields: []validate.FieldError{{Field: "password", Message: "must be at most 72 bytes"}}}
    }
    if err != nil {
        h.logger.Error("signup failed", slog.Any("error", err))
        return fiber.NewError(http.StatusInternalServerError, "Failed to create user")
    }

    return h.respondWithToken(c, http.StatusCreated, "signup", "User created successfully", user)
}

// Login exchanges email and password for a token.
func (h *Handler) Login(c *fiber.Ctx) error {
    var req loginRequest
    if err := parseBody(c, &req); err != nil {
        return err
    }
    req.Email = normalizeEmail(req.Email)
    if err := h.validate.Struct(req); err != nil {
        return err
    }

    user, err := h.ids.Authenticate(c.UserContext(), req.Email, req.Password)
    if errors.Is(err, identity.ErrInvalidCredentials) {
        return fiber.NewError(http.StatusUnauthorized, "Invalid credentials")
    }
    if err != nil {
        h.logger.Error("login failed", slog.Any("error", err))
        return fiber.NewError(http.StatusInternalServerError, "Login failed")
    }

    return h.respondWithToken(c, http.StatusOK, "login", "Login successful", user)
}

// Verify decodes a token supplied in the body.
func (h *Handler) Verify(c *fiber.Ctx) error {
    var req verifyRequest
    if err := parseBody(c, &req); err != nil {
        return err
    }
    if strings.TrimSpace(req.Token) == "" {
        return fiber.NewError(http.StatusBadRequest, "Token required")
    }

    claims, err := h.tokens.Verify(strings.TrimSpace(req.Token))
    if err != nil {
        return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"valid": false, "error": "Invalid or expired token"})
    }
    return c.Status(http.StatusOK).JSON(fiber.Map{"valid": true, "user": claims})
}

func (h *Handler) respondWithToken(c *fiber.Ctx, status int, flow, message string, user identity.User) error {
    token, err := h.tokens.Issue(Payload{UserID: user.ID, Email: user.Identity(), Role: user.Role})
    if err != nil {
        h.logger.Error("token issue failed", slog.String("user_id", user.ID), slog.Any("error", err))
        return fiber.NewError(http.StatusInternalServerError, "Failed to issue token")
    }
    h.metrics.TokenIssued(flow)
    h.logger.Info("auth."+flow+" completed", slog.String("user_id", user.ID), slog.String("role", user.Role), slog.Int("status", status))
    return c.Status(status).JSON(authResponse{Message: message, User: user, Token: token})
}

func parseBody(c *fiber.Ctx, dst any) error {
    if len(c.Body()) == 0 {
        return nil
    }
    if err := c.BodyParser(dst); err != nil {
        return fiber.NewError(http.StatusBadRequest, "Invalid request body")
    }
    return nil
}

func normalizeEmail(email string) string {
    return strings.ToLower(strings.TrimSpace(email))
}
