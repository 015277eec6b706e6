package repository

import (
	"context"
	"fmt"

	"booksync/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	Find(ctx context.Context, userID string, bookID int64) (*models.Review, error)
	FindByExternalID(ctx context.Context, userID, externalID string) (*models.Review, error)
	ListByUser(ctx context.Context, userID string) ([]models.Review, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	UpdateStatus(ctx context.Context, review *models.Review, status string) error
	Delete(ctx context.Context, review *models.Review) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Find(ctx context.Context, userID string, bookID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&review).Error
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	return &review, nil
}

// FindByExternalID joins through books so callers need not resolve the book first.
func (r *reviewRepository) FindByExternalID(ctx context.Context, userID, externalID string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		InnerJoins("Book").
		Where(clause.Eq{Column: clause.Column{Table: "Book", Name: "external_id"}, Value: externalID}).
		Where("reviews.user_id = ?", userID).
		First(&review).Error
	if err != nil {
		return nil, fmt.Errorf("find review for %s: %w", externalID, err)
	}
	return &review, nil
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at ASC, book_id ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error
	if isDuplicateError(err) {
		return ErrDuplicateReview
	}
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// Update overwrites rating, comment and status in place, zero values included.
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).
		Model(review).
		Omit(clause.Associations).
		Select("Rating", "Comment", "Status").
		Updates(review).Error
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *reviewRepository) UpdateStatus(ctx context.Context, review *models.Review, status string) error {
	err := r.db.WithContext(ctx).Model(review).Update("status", status).Error
	if err != nil {
		return fmt.Errorf("update review status: %w", err)
	}
	review.Status = status
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, review *models.Review) error {
	result := r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", review.ID)
	if result.Error != nil {
		return fmt.Errorf("delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete review: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *reviewRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
