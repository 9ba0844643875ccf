package diary

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"farm-market-api/internal/core/auth"
	"farm-market-api/internal/transport/http/ez"
	mdw "farm-market-api/internal/transport/http/middleware"
)

// Module 以注册器方式挂到 API 引擎上；日记全部接口都要登录
type Module struct {
	DB  *gorm.DB
	JWT *auth.JWTer
}

func (m Module) MountAPI(g *gin.RouterGroup) {
	authed := g.Group("")
	authed.Use(mdw.AuthJWT(m.JWT, ""))

	ez.Crud[EntryModel](ez.CrudConfig[EntryModel]{
		DB:      m.DB,
		Group:   authed,
		Path:    "/diary",
		New:     func() *EntryModel { return &EntryModel{} },
		OrderBy: "date DESC",
	})
}
