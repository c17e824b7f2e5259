package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/auth-microservice/internal/application"
	repo "github.com/oksasatya/auth-microservice/internal/domain/repository"
	"github.com/oksasatya/auth-microservice/internal/infrastructure/postgres"
	"github.com/oksasatya/auth-microservice/pkg/response"
	"github.com/oksasatya/auth-microservice/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
	Audit  *postgres.AuditStore
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger, audit *postgres.AuditStore) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Audit: audit}
}

type registerRequest struct {
	Username        string `json:"username" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email,maildomain"`
	Password        string `json:"password" binding:"required,min=8,upperchar,lowerchar,digitchar,specialchar"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

type verifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func (h *AuthHandler) audit(c *gin.Context, userID, email, action string, metadata map[string]any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Insert(c.Request.Context(), postgres.AuditEntry{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  metadata,
	})
	if err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}

// Register POST /register
// Validation (domain allowlist, password policy, confirm match) runs in the
// binding layer, before any side effect.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail), errors.Is(err, repo.ErrDuplicateUsername):
			h.audit(c, "", req.Email, "register_conflict", map[string]any{"reason": err.Error()})
			response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
		default:
			if h.Logger != nil {
				h.Logger.WithError(err).WithField("email", req.Email).Error("register failed")
			}
			response.Error[any](c, http.StatusInternalServerError, "failed to create user", nil)
		}
		return
	}

	h.audit(c, u.ID, u.Email, "register", map[string]any{"role": string(u.Role)})
	response.Success(c, http.StatusOK, gin.H{
		"id":          u.ID,
		"username":    u.Username,
		"email":       u.Email,
		"role":        u.Role,
		"is_verified": u.IsVerified,
	}, "user registered", nil)
}

// Verify POST /verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.Verify(c.Request.Context(), req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, application.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
		case errors.Is(err, application.ErrInvalidCode):
			h.audit(c, "", req.Email, "verify_failed", nil)
			response.Error[any](c, http.StatusBadRequest, "invalid verification code", nil)
		default:
			if h.Logger != nil {
				h.Logger.WithError(err).WithField("email", req.Email).Error("verify failed")
			}
			response.Error[any](c, http.StatusInternalServerError, "failed to verify account", nil)
		}
		return
	}

	h.audit(c, "", req.Email, "verify", nil)
	response.Success[any](c, http.StatusOK, nil, "account verified successfully", nil)
}

// Login POST /login
// Absent user and wrong password both map to 403; unverified maps to 401.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidCredentials):
			h.audit(c, "", req.Email, "login_failed", nil)
			response.Error[any](c, http.StatusForbidden, "invalid credentials", nil)
		case errors.Is(err, application.ErrAccountNotVerified):
			h.audit(c, "", req.Email, "login_unverified", nil)
			response.Error[any](c, http.StatusUnauthorized, "account not verified", nil)
		default:
			if h.Logger != nil {
				h.Logger.WithError(err).WithField("email", req.Email).Error("login failed")
			}
			response.Error[any](c, http.StatusInternalServerError, "failed to log in", nil)
		}
		return
	}

	h.audit(c, u.ID, u.Email, "login", nil)
	response.Success(c, http.StatusOK, gin.H{
		"access_token": token.AccessToken,
		"token_type":   token.TokenType,
	}, "login successful", map[string]any{"expires_at": token.ExpiresAt})
}
