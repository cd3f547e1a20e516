package auth_http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
	ports "feedstack-post-service/internal/domain/ports/output"
	"feedstack-post-service/internal/infrastructure/inbound/http/response"

	"github.com/gin-gonic/gin"
)

type LoginIssuer interface {
	Login(ctx context.Context, req *model.LoginDTO) (string, error)
}

type LoginHandler struct {
	authService LoginIssuer
	log         ports.Logger
}

func NewLoginHandler(authService LoginIssuer, log ports.Logger) *LoginHandler {
	return &LoginHandler{authService: authService, log: log}
}

func (h *LoginHandler) Handle(c *gin.Context) {
	var req model.LoginDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrUserValidation):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, custom_errors.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "user not found")
		case errors.Is(err, custom_errors.ErrInvalidCredentials):
			response.Error(c, http.StatusForbidden, "invalid credentials")
		default:
			h.log.Error("Login failed", slog.String("error", err.Error()))
			response.Error(c, http.StatusInternalServerError, "error logging in")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token})
}
