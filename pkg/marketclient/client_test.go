package marketclient_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"farm-market-api/internal/core/auth"
	"farm-market-api/internal/feature/market"
	"farm-market-api/internal/feature/user"
	"farm-market-api/internal/repo"
	"farm-market-api/internal/service"
	"farm-market-api/internal/transport/http/handler"
	"farm-market-api/internal/transport/http/router"
	"farm-market-api/pkg/listcache"
	"farm-market-api/pkg/marketclient"
)

type nopUploader struct{}

func (nopUploader) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func startServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&user.UserModel{}, &market.PostModel{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	seed := user.UserModel{ID: "u1", Username: "kamal", Email: "kamal@farm.test", PasswordHash: "x", Role: "user"}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour}
	marketSvc := service.NewMarketService(repo.NewMarketRepo(db), nopUploader{}, nil, 0, zap.NewNop())
	userSvc := service.NewUserService(repo.NewUserRepo(db), jwter, zap.NewNop())
	engine := router.NewAPIEngine(zap.NewNop(), jwter,
		handler.NewMarketHandler(marketSvc), handler.NewAuthHandler(userSvc), 16<<20)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	tok, err := jwter.Issue("u1", "user")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return srv, tok
}

// 完整走一圈：拉列表、发帖、改帖、删帖，本地缓存跟着服务端状态收敛。
func TestClientDrivesListCache(t *testing.T) {
	srv, tok := startServer(t)
	cli := marketclient.New(srv.URL, tok, srv.Client())
	ctx := context.Background()

	cache := listcache.New()
	cache = cache.FetchStarted()
	posts, err := cli.FetchPosts(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	cache = cache.FetchSucceeded(posts)
	if cache.Status != listcache.Loaded || len(cache.Posts) != 0 {
		t.Fatalf("unexpected state after first fetch: %+v", cache)
	}

	created, err := cli.CreatePost(ctx, marketclient.Fields{
		ProductName:       "Carrot",
		Description:       "Organic",
		Price:             120,
		Location:          "Nuwara Eliya",
		AvailableQuantity: "20 kg",
		ContactNumber:     "0770000000",
	}, &marketclient.Image{Filename: "c.jpg", ContentType: "image/jpeg", Data: []byte("img")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.OwnerID != "u1" || created.Image == "" {
		t.Fatalf("unexpected created post: %+v", created)
	}
	cache = cache.PostCreated(*created)
	if len(cache.Posts) != 1 {
		t.Fatalf("cache missed the new post")
	}

	updated, err := cli.UpdatePost(ctx, created.ID, marketclient.Fields{
		ProductName:       "Carrot",
		Description:       "Organic, washed",
		Price:             110,
		Location:          "Nuwara Eliya",
		AvailableQuantity: "18 kg",
		ContactNumber:     "0770000000",
	}, created.Image, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 110 || updated.Image != created.Image {
		t.Fatalf("unexpected updated post: %+v", updated)
	}
	cache = cache.PostUpdated(*updated)
	if cache.Posts[0].Price != 110 {
		t.Fatalf("cache kept stale price")
	}
	if mine := cache.MyPosts("u1"); len(mine) != 1 {
		t.Fatalf("expected my post in filter, got %d", len(mine))
	}

	if err := cli.DeletePost(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	cache = cache.PostDeleted(created.ID)
	if len(cache.Posts) != 0 || len(cache.MyPosts("u1")) != 0 {
		t.Fatalf("cache kept deleted post")
	}

	// 服务端也确认没了
	posts, err = cli.FetchPosts(ctx)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("server still lists deleted post")
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv, tok := startServer(t)
	ctx := context.Background()

	anon := marketclient.New(srv.URL, "", srv.Client())
	if _, err := anon.CreatePost(ctx, marketclient.Fields{ProductName: "x"}, nil); err == nil {
		t.Fatalf("expected error without token")
	}

	cli := marketclient.New(srv.URL, tok, srv.Client())
	if err := cli.DeletePost(ctx, "missing"); err == nil {
		t.Fatalf("expected not-found error")
	}
}
