package auth_http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
	ports "feedstack-post-service/internal/domain/ports/output"
	"feedstack-post-service/internal/infrastructure/inbound/http/middleware"
	"feedstack-post-service/internal/infrastructure/inbound/http/response"

	"github.com/gin-gonic/gin"
)

type AccountManager interface {
	Profile(ctx context.Context, userID int64) (*model.User, error)
	DeleteAccount(ctx context.Context, userID int64) error
	ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordDTO) error
}

// AccountHandler serves the routes acting on the caller's own account.
type AccountHandler struct {
	authService AccountManager
	log         ports.Logger
}

func NewAccountHandler(authService AccountManager, log ports.Logger) *AccountHandler {
	return &AccountHandler{authService: authService, log: log}
}

func (h *AccountHandler) Profile(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	user, err := h.authService.Profile(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "Profile lookup failed", userID, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *AccountHandler) Delete(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), userID); err != nil {
		h.fail(c, "Account deletion failed", userID, err)
		return
	}

	response.Message(c, http.StatusOK, "account deleted successfully")
}

func (h *AccountHandler) ChangePassword(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	var req model.ChangePasswordDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrUserValidation):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, custom_errors.ErrInvalidCredentials):
			response.Error(c, http.StatusBadRequest, "current password is incorrect")
		default:
			h.fail(c, "Password change failed", userID, err)
		}
		return
	}

	response.Message(c, http.StatusOK, "password updated successfully")
}

func (h *AccountHandler) fail(c *gin.Context, msg string, userID int64, err error) {
	if errors.Is(err, custom_errors.ErrUserNotFound) {
		response.Error(c, http.StatusNotFound, "user not found")
		return
	}
	h.log.Error(msg, slog.Int64("user_id", userID), slog.String("error", err.Error()))
	response.Error(c, http.StatusInternalServerError, "server error")
}

func caller(c *gin.Context) (int64, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "access denied: no token provided")
	}
	return userID, ok
}
