package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"farm-market-api/internal/domain"
	"farm-market-api/internal/feature/market"
)

// replaceCols Replace 覆盖的全部可变列；owner_id 永不在内
var replaceCols = []string{
	"product_name", "description", "price",
	"location", "available_quantity", "contact_number", "image",
	"updated_at",
}

type MarketRepo struct{ db *gorm.DB }

func NewMarketRepo(db *gorm.DB) *MarketRepo { return &MarketRepo{db: db} }

func (r *MarketRepo) Insert(ctx context.Context, p *domain.MarketPost) error {
	m := market.FromDomain(p)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return &domain.StoreError{Op: "insert", Err: err}
	}
	// 回填库里生成的时间戳
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *MarketRepo) FindByID(ctx context.Context, id string) (*domain.MarketPost, error) {
	var m market.PostModel
	err := r.db.WithContext(ctx).Preload("Owner").First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "find", Err: err}
	}
	return m.ToDomain(), nil
}

func (r *MarketRepo) ListAll(ctx context.Context) ([]domain.MarketPost, error) {
	var ms []market.PostModel
	if err := r.db.WithContext(ctx).Preload("Owner").Find(&ms).Error; err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}
	out := make([]domain.MarketPost, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out, nil
}

// Replace 整体覆盖可变字段（含零值，所以省略 image 就是清空 image），
// 然后重读带 owner 的最新一行。单行内原子，不开跨行事务。
func (r *MarketRepo) Replace(ctx context.Context, id string, f domain.MarketFields) (*domain.MarketPost, error) {
	upd := market.PostModel{
		ProductName:       f.ProductName,
		Description:       f.Description,
		Price:             f.Price,
		Location:          f.Location,
		AvailableQuantity: f.AvailableQuantity,
		ContactNumber:     f.ContactNumber,
		Image:             f.Image,
	}
	res := r.db.WithContext(ctx).Model(&market.PostModel{}).
		Where("id = ?", id).
		Select(replaceCols).
		Updates(upd)
	if res.Error != nil {
		return nil, &domain.StoreError{Op: "replace", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *MarketRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&market.PostModel{})
	if res.Error != nil {
		return false, &domain.StoreError{Op: "delete", Err: res.Error}
	}
	return res.RowsAffected > 0, nil
}
