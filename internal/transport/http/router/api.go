package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"farm-market-api/internal/core/auth"
	"farm-market-api/internal/transport/http/handler"
	mdw "farm-market-api/internal/transport/http/middleware"
)

// NewAPIEngine 面向移动端的引擎。路径保持老客户端认识的形状：
// /market 公共读、带 token 写；/users 注册登录与个人资料。
func NewAPIEngine(l *zap.Logger, jwter *auth.JWTer, marketH *handler.MarketHandler, authH *handler.AuthHandler, maxBody int64) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(maxBody),
		mdw.Timeout(10*time.Second),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	root := r.Group("")

	// 市场：读公开，写要登录
	root.GET("/market", marketH.List)
	root.GET("/market/:id", marketH.Get)

	// 写路径（带图上传最重）再按 IP 单独限一道
	authed := root.Group("")
	authed.Use(mdw.AuthJWT(jwter, ""), mdw.RateLimitPerIP(20, 50))
	authed.POST("/market", marketH.Create)
	authed.PUT("/market/:id", marketH.Update)
	authed.DELETE("/market/:id", marketH.Delete)

	// 用户
	root.POST("/users/register", authH.Register)
	root.POST("/users/login", authH.Login)
	authed.GET("/users/me", authH.Me)
	authed.PUT("/users/profile", authH.UpdateProfile)

	// 其余模块（农事日记等）走注册器
	MountAllAPI(root)

	return r
}
