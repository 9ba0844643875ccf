package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"farm-market-api/internal/core/auth"
	"farm-market-api/internal/core/server"
	mdw "farm-market-api/internal/transport/http/middleware"
)

// NewAdminEngine 管理端引擎，统一要求 admin 角色
func NewAdminEngine(l *zap.Logger, db *gorm.DB, jwter *auth.JWTer) *gin.Engine {
	r := server.NewRouter(l)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, auth.RoleAdmin))

	MountAllAdmin(admin)
	MountAdminActions(admin, db)

	return r
}
