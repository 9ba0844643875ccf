package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"farm-market-api/internal/domain"
	"farm-market-api/internal/feature/market"
	"farm-market-api/internal/feature/user"
	"farm-market-api/internal/repo"
)

type fakeUploader struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (f *fakeUploader) Upload(ctx context.Context, key string, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.fail {
		return "", errors.New("remote rejected payload")
	}
	return "https://cdn.test/" + key, nil
}

func newTestService(t *testing.T, up *fakeUploader) (*MarketService, *gorm.DB) {
	t.Helper()
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
	for _, u := range []user.UserModel{
		{ID: "u1", Username: "kamal", Email: "kamal@farm.test", PasswordHash: "x", Role: "user"},
		{ID: "u2", Username: "nimal", Email: "nimal@farm.test", PasswordHash: "x", Role: "user"},
		{ID: "adm", Username: "boss", Email: "boss@farm.test", PasswordHash: "x", Role: "admin"},
	} {
		if err := db.Create(&u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	svc := NewMarketService(repo.NewMarketRepo(db), up, nil, 0, nil)
	return svc, db
}

var (
	kamal = Principal{ID: "u1", Role: "user"}
	nimal = Principal{ID: "u2", Role: "user"}
	boss  = Principal{ID: "adm", Role: "admin"}
)

func riceFields() domain.MarketFields {
	return domain.MarketFields{ProductName: "Rice", Description: "Fresh", Price: 45.5}
}

func TestCreateRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, &fakeUploader{})
	ctx := context.Background()

	post, err := svc.Create(ctx, kamal, riceFields(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.ID == "" {
		t.Fatalf("expected generated id")
	}
	if post.ProductName != "Rice" || post.Description != "Fresh" || post.Price != 45.5 {
		t.Fatalf("fields changed: %+v", post)
	}
	if post.Image != "" {
		t.Fatalf("image should be absent, got %q", post.Image)
	}
	if post.OwnerID != kamal.ID {
		t.Fatalf("ownerId should be caller's, got %q", post.OwnerID)
	}
}

func TestCreateValidatesProductName(t *testing.T) {
	up := &fakeUploader{}
	svc, _ := newTestService(t, up)

	_, err := svc.Create(context.Background(), kamal, domain.MarketFields{ProductName: "  "}, nil)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	// 校验失败要发生在任何副作用之前
	if up.calls != 0 {
		t.Fatalf("uploader must not be called, got %d calls", up.calls)
	}
}

func TestCreateWithImage(t *testing.T) {
	svc, _ := newTestService(t, &fakeUploader{})
	img := &ImageUpload{Filename: "rice.jpg", ContentType: "image/jpeg", Data: []byte("bytes")}

	post, err := svc.Create(context.Background(), kamal, riceFields(), img)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.Image == "" {
		t.Fatalf("expected resolved image url")
	}
}

func TestUploadFailureAbortsCreate(t *testing.T) {
	svc, _ := newTestService(t, &fakeUploader{fail: true})
	ctx := context.Background()
	img := &ImageUpload{Filename: "rice.jpg", ContentType: "image/jpeg", Data: []byte("bytes")}

	_, err := svc.Create(ctx, kamal, riceFields(), img)
	var ue *domain.UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UploadError, got %v", err)
	}

	posts, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("no partial post may be persisted, got %d", len(posts))
	}
}

func TestUpdatePreservesImageViaExistingImage(t *testing.T) {
	svc, _ := newTestService(t, &fakeUploader{})
	ctx := context.Background()
	img := &ImageUpload{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte("b")}
	created, err := svc.Create(ctx, kamal, riceFields(), img)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	f := riceFields()
	f.ProductName = "Red Rice"
	f.Image = created.Image // 客户端把旧 URL 原样回传
	updated, err := svc.Update(ctx, kamal, created.ID, f, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Image != created.Image {
		t.Fatalf("image must survive: want %q got %q", created.Image, updated.Image)
	}
	if updated.ProductName != "Red Rice" {
		t.Fatalf("name not updated: %+v", updated)
	}
}

func TestUpdateClearsImageWhenOmitted(t *testing.T) {
	// 不带新文件也不回传 existingImage 时，旧图会被清掉
	svc, _ := newTestService(t, &fakeUploader{})
	ctx := context.Background()
	img := &ImageUpload{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte("b")}
	created, err := svc.Create(ctx, kamal, riceFields(), img)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Image == "" {
		t.Fatalf("precondition: image set")
	}

	updated, err := svc.Update(ctx, kamal, created.ID, riceFields(), nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Image != "" {
		t.Fatalf("omitting image must overwrite to empty, got %q", updated.Image)
	}
}

func TestUpdateRejectsNonOwner(t *testing.T) {
	svc, _ := newTestService(t, &fakeUploader{})
	ctx := context.Background()
	created, _ := svc.Create(ctx, kamal, riceFields(), nil)

	_, err := svc.Update(ctx, nimal, created.ID, riceFields(), nil)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// admin 可以
	if _, err := svc.Update(ctx, boss, created.ID, riceFields(), nil); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestDeleteRemovesFromList(t *testing.T) {
	svc, _ := newTestService(t, &fakeUploader{})
	ctx := context.Background()
	a, _ := svc.Create(ctx, kamal, riceFields(), nil)
	b, _ := svc.Create(ctx, kamal, riceFields(), nil)

	if err := svc.Delete(ctx, kamal, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	posts, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != b.ID {
		t.Fatalf("expected only %s left, got %+v", b.ID, posts)
	}
}

func TestDeleteNonexistent(t *testing.T) {
	svc, _ := newTestService(t, &fakeUploader{})
	ctx := context.Background()
	created, _ := svc.Create(ctx, kamal, riceFields(), nil)

	err := svc.Delete(ctx, kamal, "does-not-exist")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// 库里不能有任何变化
	posts, _ := svc.List(ctx)
	if len(posts) != 1 || posts[0].ID != created.ID {
		t.Fatalf("store changed: %+v", posts)
	}
}

func TestDeleteRejectsNonOwner(t *testing.T) {
	svc, _ := newTestService(t, &fakeUploader{})
	ctx := context.Background()
	created, _ := svc.Create(ctx, kamal, riceFields(), nil)

	if err := svc.Delete(ctx, nimal, created.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestConcurrentUpdatesLastWriteWins(t *testing.T) {
	svc, _ := newTestService(t, &fakeUploader{})
	ctx := context.Background()
	created, err := svc.Create(ctx, kamal, riceFields(), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	prices := []float64{10, 99}
	var wg sync.WaitGroup
	errs := make([]error, len(prices))
	for i, price := range prices {
		i, price := i, price
		wg.Add(1)
		go func() {
			defer wg.Done()
			f := riceFields()
			f.Price = price
			_, errs[i] = svc.Update(ctx, kamal, created.ID, f, nil)
		}()
	}
	wg.Wait()
	for i, e := range errs {
		if e != nil {
			t.Fatalf("update %d errored: %v", i, e)
		}
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Price != 10 && got.Price != 99 {
		t.Fatalf("final price must be one of the writers', got %v", got.Price)
	}
}

func TestStoreFailureSurfacesAsStoreError(t *testing.T) {
	svc, db := newTestService(t, &fakeUploader{})
	ctx := context.Background()

	// 把表拆掉，模拟持久层整体不可用
	if err := db.Migrator().DropTable(&market.PostModel{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	var se *domain.StoreError
	if _, err := svc.List(ctx); !errors.As(err, &se) {
		t.Fatalf("list: expected StoreError, got %v", err)
	}
	if _, err := svc.Create(ctx, kamal, riceFields(), nil); !errors.As(err, &se) {
		t.Fatalf("create: expected StoreError, got %v", err)
	}
	if _, err := svc.Get(ctx, "any"); !errors.As(err, &se) {
		t.Fatalf("get: expected StoreError, got %v", err)
	}
}

func TestCancelledContextAbortsCreate(t *testing.T) {
	up := &fakeUploader{}
	svc, _ := newTestService(t, up)
	img := &ImageUpload{Filename: "rice.jpg", ContentType: "image/jpeg", Data: []byte("bytes")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Create(ctx, kamal, riceFields(), img)
	var ue *domain.UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UploadError, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cause must be the context error, got %v", err)
	}

	posts, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("no partial post may be persisted, got %d", len(posts))
	}
}

func TestGetMissing(t *testing.T) {
	svc, _ := newTestService(t, &fakeUploader{})
	_, err := svc.Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
