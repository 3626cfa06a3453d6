package models

import "time"

// Category groups transactions. UserID nil marks a global default shared by
// every user; names are unique per owner.
type Category struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    *uint  `gorm:"index;uniqueIndex:idx_category_user_name"`
	Name      string `gorm:"size:100;not null;uniqueIndex:idx_category_user_name"`
}

// IsGlobal reports whether the category is a seeded default.
func (c Category) IsGlobal() bool { return c.UserID == nil }
