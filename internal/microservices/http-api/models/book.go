package models

import "time"

// Book is the local copy of a catalog volume, keyed by its external id.
// Rows are written once on first review and never refreshed.
type Book struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ExternalID string    `json:"external_id" gorm:"uniqueIndex;not null;size:64"`
	Title      string    `json:"title" gorm:"not null"`
	Author     string    `json:"author" gorm:"not null"`
	ImageURL   *string   `json:"image,omitempty"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Book) TableName() string {
	return "books"
}
