package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories the review workflow writes through.
// Repositories obtained from the Store passed to WithinTransaction share its transaction.
type Store interface {
	Books() BookRepository
	Reviews() ReviewRepository
	// WithinTransaction runs fn in one database transaction. Any error returned
	// by fn, or a panic inside it, rolls the whole transaction back.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Books() BookRepository {
	return NewBookRepository(s.db)
}

func (s *gormStore) Reviews() ReviewRepository {
	return NewReviewRepository(s.db)
}

func (s *gormStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
