package ez

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"farm-market-api/pkg/utils"
)

// CrudHooks 给个别接口留的口子
type CrudHooks[T any] struct {
	BeforeCreate func(c *gin.Context, m *T) error
	BeforeUpdate func(c *gin.Context, m *T) error
	ScopeList    func(c *gin.Context, q *gorm.DB) *gorm.DB
}

// CrudConfig 按 owner 圈定的 JSON CRUD；所有操作只见调用方自己的数据
type CrudConfig[T any] struct {
	DB    *gorm.DB
	Group *gin.RouterGroup // 已鉴权分组（能拿 userId）
	Path  string
	New   func() *T

	Hooks CrudHooks[T]

	IDField    string // 默认 "ID"
	OwnerField string // 默认 "OwnerID"

	IDGen func() string // 默认 utils.NewID

	OrderBy string // 列表排序，如 "date DESC"
}

func (c *CrudConfig[T]) idCandidates() []string {
	if c.IDField != "" {
		return []string{c.IDField, "ID", "Id"}
	}
	return []string{"ID", "Id"}
}

func (c *CrudConfig[T]) ownerCandidates() []string {
	if c.OwnerField != "" {
		return []string{c.OwnerField, "OwnerID", "UserID"}
	}
	return []string{"OwnerID", "UserID"}
}

func getStringFieldPtr(obj any, candidates []string) (*string, bool) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr {
		return nil, false
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // 未导出字段跳过
			continue
		}
		for _, cand := range candidates {
			if f.Name == cand {
				fv := v.Field(i)
				if fv.Kind() == reflect.String && fv.CanSet() {
					return fv.Addr().Interface().(*string), true
				}
			}
		}
	}
	return nil, false
}

func readStringField(obj any, candidates []string) (string, bool) {
	p, ok := getStringFieldPtr(obj, candidates)
	if !ok {
		return "", false
	}
	return *p, true
}

func writeStringField(obj any, candidates []string, val string) bool {
	p, ok := getStringFieldPtr(obj, candidates)
	if !ok {
		return false
	}
	*p = val
	return true
}

// Crud 注册 POST / GET / PUT /:id / DELETE /:id，全部按调用方 owner 过滤
func Crud[T any](cfg CrudConfig[T]) {
	if cfg.IDGen == nil {
		cfg.IDGen = utils.NewID
	}
	idFields := cfg.idCandidates()
	ownerFields := cfg.ownerCandidates()

	// Create
	cfg.Group.POST(cfg.Path, func(c *gin.Context) {
		m := cfg.New()
		if err := c.ShouldBindJSON(m); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		uid := c.GetString("userId")
		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}
		if id, ok := readStringField(m, idFields); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"message": "id field not found"})
			return
		} else if strings.TrimSpace(id) == "" {
			_ = writeStringField(m, idFields, cfg.IDGen())
		}
		if !writeStringField(m, ownerFields, uid) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "owner field not found"})
			return
		}
		if cfg.Hooks.BeforeCreate != nil {
			if err := cfg.Hooks.BeforeCreate(c, m); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
		}
		if err := cfg.DB.WithContext(c).Create(m).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusCreated, m)
	})

	// List（只看自己的）
	cfg.Group.GET(cfg.Path, func(c *gin.Context) {
		uid := c.GetString("userId")
		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}
		ownerFilter := cfg.New()
		if !writeStringField(ownerFilter, ownerFields, uid) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "owner field not found"})
			return
		}
		q := cfg.DB.WithContext(c).Model(cfg.New()).Where(ownerFilter)
		if cfg.Hooks.ScopeList != nil {
			q = cfg.Hooks.ScopeList(c, q)
		}
		if cfg.OrderBy != "" {
			q = q.Order(cfg.OrderBy)
		}
		var items []T
		if err := q.Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, items)
	})

	// Update（owner + id 同时命中才改）
	cfg.Group.PUT(cfg.Path+"/:id", func(c *gin.Context) {
		uid := c.GetString("userId")
		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}
		id := c.Param("id")

		check := cfg.New()
		_ = writeStringField(check, idFields, id)
		_ = writeStringField(check, ownerFields, uid)
		if err := cfg.DB.WithContext(c).Where(check).First(check).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
			return
		}

		in := cfg.New()
		if err := c.ShouldBindJSON(in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		// 强制保持 ID/Owner
		_ = writeStringField(in, idFields, id)
		_ = writeStringField(in, ownerFields, uid)

		if cfg.Hooks.BeforeUpdate != nil {
			if err := cfg.Hooks.BeforeUpdate(c, in); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
		}
		if err := cfg.DB.WithContext(c).Model(cfg.New()).Where(check).Updates(in).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, in)
	})

	// Delete
	cfg.Group.DELETE(cfg.Path+"/:id", func(c *gin.Context) {
		uid := c.GetString("userId")
		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}
		id := c.Param("id")

		filter := cfg.New()
		_ = writeStringField(filter, idFields, id)
		_ = writeStringField(filter, ownerFields, uid)

		res := cfg.DB.WithContext(c).Where(filter).Delete(cfg.New())
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	})
}
