package service

import (
	"context"
	"errors"
	"log/slog"

	"booksync/internal/metrics"
	"booksync/internal/microservices/http-api/dto"
	"booksync/internal/microservices/http-api/models"
	"booksync/internal/microservices/http-api/repository"
)

var (
	ErrInvalidStatus  = errors.New("invalid status")
	ErrInvalidPayload = errors.New("invalid review payload")
	ErrBookNotFound   = errors.New("book not found")
	ErrReviewNotFound = errors.New("review not found")
	ErrReviewConflict = errors.New("review already exists for this book")
)

const (
	minRating = 1
	maxRating = 5
)

// ReviewService keeps a user's reviews in step with the local book catalog.
// All writes of a call run inside a single store transaction; catalog lookups happen before it opens.
type ReviewService interface {
	Create(ctx context.Context, userID, externalID string, req dto.ReviewRequest) (*dto.ReviewResponse, error)
	// Upsert reports created=true when no review existed and one was inserted.
	Upsert(ctx context.Context, userID, externalID string, req dto.ReviewRequest) (resp *dto.ReviewResponse, created bool, err error)
	PatchStatus(ctx context.Context, userID, externalID, status string) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, userID, externalID string) error
	List(ctx context.Context, userID string) ([]dto.UserBookResponse, error)
}

type reviewService struct {
	store   repository.Store
	catalog *CatalogCache
	logger  *slog.Logger
}

func NewReviewService(store repository.Store, catalog *CatalogCache, logger *slog.Logger) ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &reviewService{store: store, catalog: catalog, logger: logger}
}

func (s *reviewService) Create(ctx context.Context, userID, externalID string, req dto.ReviewRequest) (resp *dto.ReviewResponse, err error) {
	defer func() { metrics.ObserveReviewOperation("create", err) }()

	status, err := validateReview(req)
	if err != nil {
		return nil, err
	}

	fetched, err := s.fetchBook(ctx, externalID)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		book, err := s.catalog.Persist(ctx, tx.Books(), fetched)
		if err != nil {
			return err
		}

		if _, err := tx.Reviews().Find(ctx, userID, book.ID); err == nil {
			return ErrReviewConflict
		} else if !repository.IsNotFound(err) {
			return err
		}

		review := &models.Review{
			UserID:  userID,
			BookID:  book.ID,
			Rating:  req.Rating,
			Comment: req.Comment,
			Status:  status,
		}
		if err := tx.Reviews().Create(ctx, review); err != nil {
			return err
		}
		review.Book = *book
		resp = dto.FromModelToReviewResponse(review)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review_created", "user_id", userID, "external_id", externalID, "review_id", resp.ID)
	return resp, nil
}

func (s *reviewService) Upsert(ctx context.Context, userID, externalID string, req dto.ReviewRequest) (resp *dto.ReviewResponse, created bool, err error) {
	defer func() { metrics.ObserveReviewOperation("upsert", err) }()

	status, err := validateReview(req)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.store.Reviews().FindByExternalID(ctx, userID, externalID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, false, err
	}

	var fetched *models.Book
	if existing == nil {
		if fetched, err = s.fetchBook(ctx, externalID); err != nil {
			return nil, false, err
		}
	}

	resp, created, err = s.upsertOnce(ctx, userID, externalID, fetched, req, status)
	if errors.Is(err, repository.ErrDuplicateReview) {
		// A concurrent upsert inserted first; apply this one as an update.
		resp, created, err = s.upsertOnce(ctx, userID, externalID, fetched, req, status)
	}
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("review_upserted", "user_id", userID, "external_id", externalID, "created", created)
	return resp, created, nil
}

// upsertOnce updates the caller's review if it exists, otherwise stores fetched and
// inserts a new review. A nil fetched book is read from the local cache.
func (s *reviewService) upsertOnce(ctx context.Context, userID, externalID string, fetched *models.Book, req dto.ReviewRequest, status string) (resp *dto.ReviewResponse, created bool, err error) {
	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		review, err := tx.Reviews().FindByExternalID(ctx, userID, externalID)
		if err != nil && !repository.IsNotFound(err) {
			return err
		}

		if review != nil {
			review.Rating = req.Rating
			review.Comment = req.Comment
			review.Status = status
			if err := tx.Reviews().Update(ctx, review); err != nil {
				return err
			}
			resp = dto.FromModelToReviewResponse(review)
			return nil
		}

		var book *models.Book
		if fetched != nil {
			book, err = s.catalog.Persist(ctx, tx.Books(), fetched)
		} else {
			// the review vanished after the pre-check; its book row is still cached
			book, err = s.catalog.Find(ctx, tx.Books(), externalID)
			if err == nil && book == nil {
				err = ErrBookNotFound
			}
		}
		if err != nil {
			return err
		}

		review = &models.Review{
			UserID:  userID,
			BookID:  book.ID,
			Rating:  req.Rating,
			Comment: req.Comment,
			Status:  status,
		}
		if err := tx.Reviews().Create(ctx, review); err != nil {
			return err
		}
		review.Book = *book
		resp = dto.FromModelToReviewResponse(review)
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return resp, created, nil
}

// PatchStatus changes only the status. It never creates a book or a review
// and never consults the external catalog.
func (s *reviewService) PatchStatus(ctx context.Context, userID, externalID, status string) (resp *dto.ReviewResponse, err error) {
	defer func() { metrics.ObserveReviewOperation("patch_status", err) }()

	if !models.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		book, err := s.catalog.Find(ctx, tx.Books(), externalID)
		if err != nil {
			return err
		}
		if book == nil {
			return ErrReviewNotFound
		}

		review, err := tx.Reviews().Find(ctx, userID, book.ID)
		if repository.IsNotFound(err) {
			return ErrReviewNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Reviews().UpdateStatus(ctx, review, status); err != nil {
			return err
		}
		review.Book = *book
		resp = dto.FromModelToReviewResponse(review)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review_status_changed", "user_id", userID, "external_id", externalID, "status", status)
	return resp, nil
}

func (s *reviewService) Delete(ctx context.Context, userID, externalID string) (err error) {
	defer func() { metrics.ObserveReviewOperation("delete", err) }()

	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		review, err := tx.Reviews().FindByExternalID(ctx, userID, externalID)
		if repository.IsNotFound(err) {
			return ErrReviewNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Reviews().Delete(ctx, review); err != nil {
			if repository.IsNotFound(err) {
				return ErrReviewNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("review_deleted", "user_id", userID, "external_id", externalID)
	return nil
}

func (s *reviewService) List(ctx context.Context, userID string) ([]dto.UserBookResponse, error) {
	var out []dto.UserBookResponse
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		reviews, err := tx.Reviews().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		out = make([]dto.UserBookResponse, 0, len(reviews))
		for i := range reviews {
			out = append(out, dto.FromModelToUserBookResponse(&reviews[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// fetchBook resolves externalID to a cached book or to catalog metadata not yet stored.
// It runs outside any transaction so a slow catalog never holds a connection.
func (s *reviewService) fetchBook(ctx context.Context, externalID string) (*models.Book, error) {
	book, err := s.catalog.Fetch(ctx, s.store.Books(), externalID)
	if errors.Is(err, ErrCatalogMiss) {
		return nil, ErrBookNotFound
	}
	return book, err
}

// validateReview checks the rating range and returns the status to store.
func validateReview(req dto.ReviewRequest) (string, error) {
	status := req.Status
	if status == "" {
		status = models.StatusReading
	}
	if !models.IsValidStatus(status) {
		return "", ErrInvalidStatus
	}
	if req.Rating < minRating || req.Rating > maxRating {
		return "", ErrInvalidPayload
	}
	return status, nil
}
