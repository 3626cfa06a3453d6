package models

import (
	"time"
)

// ReceiptScan records one receipt extraction attempt. Failed scans are kept
// so they can be reviewed.
type ReceiptScan struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uint   `gorm:"index;not null"`
	User         User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	FileName     string `gorm:"size:255;not null"`
	StorePath    string `gorm:"column:store_path;size:512"`
	ContentType  string `gorm:"size:128"`
	Source       string `gorm:"size:32"`
	Engine       string `gorm:"size:32"`
	Items        int    `gorm:"not null;default:0"`
	TotalMinor   *int64
	DateDetected bool   `gorm:"default:false"`
	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
}
