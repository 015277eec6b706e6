package service

import (
	"context"
	"fmt"
	"testing"

	"booksync/internal/catalog"
	"booksync/internal/microservices/http-api/models"
	"booksync/internal/microservices/http-api/repository"
	"booksync/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCatalogCache_GetOrCreateIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	books := repository.NewBookRepository(db)
	lookup := new(MockLookup)
	lookup.On("LookupByID", mock.Anything, "X1").
		Return(&catalog.Volume{ID: "X1", Title: "Foo", Authors: []string{"A", "B"}, ImageURL: "http://img/x1"}, nil).Once()

	cache := NewCatalogCache(lookup, discardLogger())
	ctx := context.Background()

	first, err := cache.GetOrCreate(ctx, books, "X1")
	require.NoError(t, err)
	assert.Equal(t, "Foo", first.Title)
	assert.Equal(t, "A, B", first.Author)
	require.NotNil(t, first.ImageURL)
	assert.Equal(t, "http://img/x1", *first.ImageURL)

	second, err := cache.GetOrCreate(ctx, books, "X1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, err := books.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	lookup.AssertExpectations(t)
}

func TestCatalogCache_Placeholders(t *testing.T) {
	db := testutil.NewTestDB(t)
	lookup := new(MockLookup)
	lookup.On("LookupByID", mock.Anything, "X9").Return(&catalog.Volume{ID: "X9"}, nil)

	book, err := NewCatalogCache(lookup, discardLogger()).GetOrCreate(context.Background(), repository.NewBookRepository(db), "X9")
	require.NoError(t, err)
	assert.Equal(t, "Título desconhecido", book.Title)
	assert.Equal(t, "Autor desconhecido", book.Author)
	assert.Nil(t, book.ImageURL)
}

func TestCatalogCache_Miss(t *testing.T) {
	db := testutil.NewTestDB(t)
	books := repository.NewBookRepository(db)
	lookup := new(MockLookup)
	lookup.On("LookupByID", mock.Anything, "nope").Return(nil, catalog.ErrNotFound)

	_, err := NewCatalogCache(lookup, discardLogger()).GetOrCreate(context.Background(), books, "nope")
	assert.ErrorIs(t, err, ErrCatalogMiss)

	count, err := books.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCatalogCache_Unavailable(t *testing.T) {
	db := testutil.NewTestDB(t)
	lookup := new(MockLookup)
	lookup.On("LookupByID", mock.Anything, "X1").Return(nil, fmt.Errorf("%w: timeout", catalog.ErrUnavailable))

	_, err := NewCatalogCache(lookup, discardLogger()).GetOrCreate(context.Background(), repository.NewBookRepository(db), "X1")
	assert.ErrorIs(t, err, ErrLookupUnavailable)
	assert.NotErrorIs(t, err, ErrCatalogMiss)
}

func TestCatalogCache_FindNeverCallsCatalog(t *testing.T) {
	db := testutil.NewTestDB(t)
	lookup := new(MockLookup)

	book, err := NewCatalogCache(lookup, discardLogger()).Find(context.Background(), repository.NewBookRepository(db), "X1")
	require.NoError(t, err)
	assert.Nil(t, book)
	lookup.AssertNotCalled(t, "LookupByID", mock.Anything, mock.Anything)
}

func TestCatalogCache_LosingCreatorReadsWinner(t *testing.T) {
	notFound := fmt.Errorf("find book X1: %w", gorm.ErrRecordNotFound)
	winner := &models.Book{ID: 42, ExternalID: "X1", Title: "Foo", Author: "A, B"}

	books := new(MockBookRepository)
	books.On("FindByExternalID", mock.Anything, "X1").Return(nil, notFound).Once()
	books.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*models.Book")).Return(false, nil).Once()
	books.On("FindByExternalID", mock.Anything, "X1").Return(winner, nil).Once()

	lookup := new(MockLookup)
	lookup.On("LookupByID", mock.Anything, "X1").Return(&catalog.Volume{ID: "X1", Title: "Foo", Authors: []string{"A", "B"}}, nil)

	book, err := NewCatalogCache(lookup, discardLogger()).GetOrCreate(context.Background(), books, "X1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), book.ID)
	books.AssertExpectations(t)
}
