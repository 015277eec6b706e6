package repository

import (
	"context"
	"fmt"

	"booksync/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookRepository interface {
	FindByExternalID(ctx context.Context, externalID string) (*models.Book, error)
	// CreateIfAbsent inserts book unless a row with the same external id exists.
	// It reports whether this call inserted the row.
	CreateIfAbsent(ctx context.Context, book *models.Book) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) FindByExternalID(ctx context.Context, externalID string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&book).Error; err != nil {
		return nil, fmt.Errorf("find book %s: %w", externalID, err)
	}
	return &book, nil
}

func (r *bookRepository) CreateIfAbsent(ctx context.Context, book *models.Book) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoNothing: true,
		}).
		Create(book)
	if result.Error != nil {
		return false, fmt.Errorf("create book %s: %w", book.ExternalID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Book{}).Count(&count).Error
	return count, err
}
