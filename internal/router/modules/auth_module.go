package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/auth-microservice/internal/interface/http"
)

// AuthModule wires the public authentication endpoints.
// POST /register, POST /verify, POST /login
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/register", m.Handler.Register)
	rg.POST("/verify", m.Handler.Verify)
	rg.POST("/login", m.Handler.Login)
}
