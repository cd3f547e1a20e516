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

type Registrar interface {
	Signup(ctx context.Context, req *model.SignupDTO) (*model.User, error)
}

type SignupHandler struct {
	authService Registrar
	log         ports.Logger
}

func NewSignupHandler(authService Registrar, log ports.Logger) *SignupHandler {
	return &SignupHandler{authService: authService, log: log}
}

func (h *SignupHandler) Handle(c *gin.Context) {
	var req model.SignupDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrUserValidation):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, custom_errors.ErrEmailTaken):
			response.Error(c, http.StatusConflict, "email already in use")
		default:
			h.log.Error("Signup failed", slog.String("error", err.Error()))
			response.Error(c, http.StatusInternalServerError, "error creating user")
		}
		return
	}

	c.JSON(http.StatusCreated, SignupResponse{Message: "user created successfully", User: newUserResponse(user)})
}
