package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"booksync/internal/catalog"
	"booksync/internal/microservices/http-api/models"

	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockLookup mocks the catalog.Lookup interface
type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) LookupByID(ctx context.Context, id string) (*catalog.Volume, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Volume), args.Error(1)
}

func (m *MockLookup) Search(ctx context.Context, query string) (json.RawMessage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// MockBookRepository mocks the repository.BookRepository interface
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) FindByExternalID(ctx context.Context, externalID string) (*models.Book, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) CreateIfAbsent(ctx context.Context, book *models.Book) (bool, error) {
	args := m.Called(ctx, book)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
