package market

import (
	"time"

	"farm-market-api/internal/domain"
	"farm-market-api/internal/feature/user"
)

type PostModel struct {
	ID                string `gorm:"primaryKey;type:varchar(32)"`
	OwnerID           string `gorm:"index;size:32;not null"`
	ProductName       string `gorm:"size:255;not null"`
	Description       string `gorm:"type:text"`
	Price             float64
	Location          string `gorm:"size:255"`
	AvailableQuantity string `gorm:"size:64"`
	ContactNumber     string `gorm:"size:32"`
	Image             string `gorm:"size:512"`

	Owner *user.UserModel `gorm:"foreignKey:OwnerID"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (PostModel) TableName() string { return "market_posts" }

func (m *PostModel) ToDomain() *domain.MarketPost {
	p := &domain.MarketPost{
		ID:                m.ID,
		OwnerID:           m.OwnerID,
		ProductName:       m.ProductName,
		Description:       m.Description,
		Price:             m.Price,
		Location:          m.Location,
		AvailableQuantity: m.AvailableQuantity,
		ContactNumber:     m.ContactNumber,
		Image:             m.Image,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.Owner != nil {
		p.Owner = &domain.PublicUser{ID: m.Owner.ID, Username: m.Owner.Username, Email: m.Owner.Email}
	}
	return p
}

func FromDomain(p *domain.MarketPost) *PostModel {
	return &PostModel{
		ID:                p.ID,
		OwnerID:           p.OwnerID,
		ProductName:       p.ProductName,
		Description:       p.Description,
		Price:             p.Price,
		Location:          p.Location,
		AvailableQuantity: p.AvailableQuantity,
		ContactNumber:     p.ContactNumber,
		Image:             p.Image,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
