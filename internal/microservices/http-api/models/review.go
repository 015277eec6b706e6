package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusReading = "lendo"
	StatusRead    = "lido"
)

// IsValidStatus reports whether s is one of the reading statuses a review may hold.
func IsValidStatus(s string) bool {
	return s == StatusReading || s == StatusRead
}

// Review is a user's rating, comment and reading status for one book.
// (user_id, book_id) is unique.
type Review struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_reviews_user_book"`
	BookID    int64     `json:"book_id" gorm:"not null;uniqueIndex:idx_reviews_user_book;index"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment   string    `json:"comment"`
	Status    string    `json:"status" gorm:"not null;default:'lendo'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Book Book `json:"book,omitempty" gorm:"foreignKey:BookID;constraint:OnDelete:RESTRICT;"`
}

// BeforeCreate assigns a fresh id so a review recreated after deletion gets a new identity.
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

func (Review) TableName() string {
	return "reviews"
}
