package domain

import (
	"context"
	"time"
)

// MarketPost 市场帖子（一条农产品出售信息）
type MarketPost struct {
	ID                string      `json:"id"`
	OwnerID           string      `json:"ownerId"`
	Owner             *PublicUser `json:"owner,omitempty"`
	ProductName       string      `json:"productName"`
	Description       string      `json:"description"`
	Price             float64     `json:"price"`
	Location          string      `json:"location"`
	AvailableQuantity string      `json:"availableQuantity"` // 展示用字符串，如 "50 kg"
	ContactNumber     string      `json:"contactNumber"`
	Image             string      `json:"image"` // 对象存储的公开 URL，可为空
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// PublicUser 帖子关联的卖家公开信息
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// MarketFields 可变字段集合；Replace 只覆盖这些列，OwnerID 永不在内
type MarketFields struct {
	ProductName       string
	Description       string
	Price             float64
	Location          string
	AvailableQuantity string
	ContactNumber     string
	Image             string
}

type MarketRepository interface {
	// Insert 持久化新帖子（调用方负责 ID/OwnerID）
	Insert(ctx context.Context, p *MarketPost) error
	// FindByID 不存在时返回 (nil, nil)
	FindByID(ctx context.Context, id string) (*MarketPost, error)
	// ListAll 全量返回，不承诺顺序
	ListAll(ctx context.Context) ([]MarketPost, error)
	// Replace 整体覆盖可变字段；不存在时返回 (nil, nil)
	Replace(ctx context.Context, id string, f MarketFields) (*MarketPost, error)
	// Delete 硬删除；返回是否真的删到了
	Delete(ctx context.Context, id string) (bool, error)
}
