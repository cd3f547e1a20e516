package auth_http

import (
	auth_service "feedstack-post-service/internal/domain/ports/input/auth"
	ports "feedstack-post-service/internal/domain/ports/output"
	"feedstack-post-service/internal/infrastructure/inbound/http/middleware"

	"github.com/gin-gonic/gin"
)

type AuthHTTPService struct {
	authService    auth_service.Service
	log            ports.Logger
	signupHandler  *SignupHandler
	loginHandler   *LoginHandler
	accountHandler *AccountHandler
}

func NewAuthHTTPService(authService auth_service.Service, log ports.Logger) *AuthHTTPService {
	return &AuthHTTPService{
		authService:    authService,
		log:            log,
		signupHandler:  NewSignupHandler(authService, log),
		loginHandler:   NewLoginHandler(authService, log),
		accountHandler: NewAccountHandler(authService, log),
	}
}

func (s *AuthHTTPService) Register(rg *gin.RouterGroup) {
	rg.POST("/signup", s.signupHandler.Handle)
	rg.POST("/login", s.loginHandler.Handle)

	account := rg.Group("", middleware.RequireAuth(s.authService, s.log))
	account.GET("/profile", s.accountHandler.Profile)
	account.DELETE("/delete", s.accountHandler.Delete)
	account.POST("/change-password", s.accountHandler.ChangePassword)
}
