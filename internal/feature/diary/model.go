package diary

import "time"

// EntryModel 农事日记：一天的天气/农活/问题/开销记录
type EntryModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(32)" json:"id"`
	OwnerID    string    `gorm:"index;size:32;not null" json:"ownerId"`
	Date       time.Time `gorm:"not null" json:"date" binding:"required"`
	Weather    string    `gorm:"size:64" json:"weather"`
	Activities string    `gorm:"type:text" json:"activities"`
	Issues     string    `gorm:"type:text" json:"issues"`
	Expenses   string    `gorm:"size:64" json:"expenses"` // 展示用字符串，沿用帖子里数量字段的做法
	Notes      string    `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (EntryModel) TableName() string { return "farm_diaries" }
