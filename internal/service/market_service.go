package service

import (
	"context"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"farm-market-api/internal/core/auth"
	"farm-market-api/internal/core/cache"
	"farm-market-api/internal/core/storage"
	"farm-market-api/internal/domain"
	"farm-market-api/pkg/utils"
)

const listCacheKey = "market:posts:all"

// Principal 已验签 token 里的调用方身份，这里完全信任它
type Principal struct {
	ID   string
	Role string
}

// ImageUpload 随表单提交的图片原始字节
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type MarketService struct {
	repo     domain.MarketRepository
	uploader storage.Uploader
	cache    *cache.Cache // 可为 nil（本地/测试不接 redis）
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewMarketService(repo domain.MarketRepository, up storage.Uploader, c *cache.Cache, ttl time.Duration, log *zap.Logger) *MarketService {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &MarketService{repo: repo, uploader: up, cache: c, cacheTTL: ttl, log: log}
}

// Create 先传图（若带图），传图失败整个请求中止、不落库；
// 成功后以 caller 为 owner 落库。
func (s *MarketService) Create(ctx context.Context, caller Principal, f domain.MarketFields, img *ImageUpload) (*domain.MarketPost, error) {
	if strings.TrimSpace(f.ProductName) == "" {
		return nil, &domain.ValidationError{Field: "productName"}
	}
	if f.Price < 0 {
		return nil, &domain.ValidationError{Field: "price"}
	}

	if img != nil {
		url, err := s.uploadImage(ctx, img)
		if err != nil {
			return nil, err
		}
		f.Image = url
	}

	post := &domain.MarketPost{
		ID:                utils.NewID(),
		OwnerID:           caller.ID,
		ProductName:       f.ProductName,
		Description:       f.Description,
		Price:             f.Price,
		Location:          f.Location,
		AvailableQuantity: f.AvailableQuantity,
		ContactNumber:     f.ContactNumber,
		Image:             f.Image,
	}
	if err := s.repo.Insert(ctx, post); err != nil {
		return nil, err
	}
	s.invalidateList(ctx)
	s.log.Info("market post created", zap.String("id", post.ID), zap.String("owner", caller.ID))
	return post, nil
}

func (s *MarketService) Get(ctx context.Context, id string) (*domain.MarketPost, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// List 全量返回；接了 redis 时走读穿缓存，写路径负责失效
func (s *MarketService) List(ctx context.Context) ([]domain.MarketPost, error) {
	if s.cache == nil {
		return s.repo.ListAll(ctx)
	}
	return cache.GetOrLoadSliceJSON[domain.MarketPost](s.cache, ctx, listCacheKey, s.cacheTTL, s.repo.ListAll)
}

// Update 图片取值顺序：新上传的文件 > 表单里回传的 existingImage（已放进 f.Image）。
// 两者都缺时 f.Image 为空串，整体覆盖会把旧图清掉，客户端靠回传保图。
func (s *MarketService) Update(ctx context.Context, caller Principal, id string, f domain.MarketFields, img *ImageUpload) (*domain.MarketPost, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.authorize(caller, existing.OwnerID); err != nil {
		return nil, err
	}

	if img != nil {
		url, uerr := s.uploadImage(ctx, img)
		if uerr != nil {
			return nil, uerr
		}
		f.Image = url
	}

	updated, err := s.repo.Replace(ctx, id, f)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// 和并发删除撞上了
		return nil, domain.ErrNotFound
	}
	s.invalidateList(ctx)
	return updated, nil
}

func (s *MarketService) Delete(ctx context.Context, caller Principal, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	if err := s.authorize(caller, existing.OwnerID); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	s.invalidateList(ctx)
	s.log.Info("market post deleted", zap.String("id", id), zap.String("by", caller.ID))
	return nil
}

// authorize 只有 owner 本人或 admin 能改/删
func (s *MarketService) authorize(caller Principal, ownerID string) error {
	if caller.ID == ownerID || caller.Role == auth.RoleAdmin {
		return nil
	}
	return domain.ErrForbidden
}

func (s *MarketService) uploadImage(ctx context.Context, img *ImageUpload) (string, error) {
	if s.uploader == nil {
		return "", &domain.UploadError{Err: errNoUploader}
	}
	key := "market/" + utils.NewID() + strings.ToLower(path.Ext(img.Filename))
	url, err := s.uploader.Upload(ctx, key, img.Data, img.ContentType)
	if err != nil {
		s.log.Warn("image upload failed", zap.Error(err))
		return "", &domain.UploadError{Err: err}
	}
	return url, nil
}

func (s *MarketService) invalidateList(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, listCacheKey)
	}
}
