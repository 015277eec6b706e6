package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"booksync/internal/catalog"
	"booksync/internal/metrics"
	"booksync/internal/microservices/http-api/models"
	"booksync/internal/microservices/http-api/repository"
)

var (
	ErrCatalogMiss       = errors.New("book not found in catalog")
	ErrLookupUnavailable = errors.New("book catalog unavailable")
)

// CatalogCache maps external catalog ids to local Book rows, creating them lazily.
// It operates on whichever BookRepository it is handed so callers control the transaction.
type CatalogCache struct {
	lookup catalog.Lookup
	logger *slog.Logger
}

func NewCatalogCache(lookup catalog.Lookup, logger *slog.Logger) *CatalogCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogCache{lookup: lookup, logger: logger}
}

// Find returns the local book or nil when it has not been cached. It never calls the catalog.
func (c *CatalogCache) Find(ctx context.Context, books repository.BookRepository, externalID string) (*models.Book, error) {
	book, err := books.FindByExternalID(ctx, externalID)
	if repository.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// GetOrCreate returns the local book, fetching and persisting it on first use.
// A concurrent creator winning the insert is resolved by re-reading its row.
func (c *CatalogCache) GetOrCreate(ctx context.Context, books repository.BookRepository, externalID string) (*models.Book, error) {
	book, err := c.Fetch(ctx, books, externalID)
	if err != nil {
		return nil, err
	}
	return c.Persist(ctx, books, book)
}

// Fetch returns the cached book, or an unsaved Book (ID 0) built from the
// external catalog. It holds no transaction while the catalog is consulted.
func (c *CatalogCache) Fetch(ctx context.Context, books repository.BookRepository, externalID string) (*models.Book, error) {
	book, err := c.Find(ctx, books, externalID)
	if err != nil {
		return nil, err
	}
	if book != nil {
		metrics.ObserveCatalogLookup(metrics.LookupHit)
		return book, nil
	}

	vol, err := c.lookup.LookupByID(ctx, externalID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			metrics.ObserveCatalogLookup(metrics.LookupMiss)
			return nil, ErrCatalogMiss
		}
		metrics.ObserveCatalogLookup(metrics.LookupUnavailable)
		c.logger.Warn("catalog_lookup_failed", "external_id", externalID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLookupUnavailable, err)
	}

	book = &models.Book{
		ExternalID: externalID,
		Title:      vol.DisplayTitle(),
		Author:     vol.DisplayAuthor(),
	}
	if vol.ImageURL != "" {
		image := vol.ImageURL
		book.ImageURL = &image
	}
	return book, nil
}

// Persist inserts a book returned by Fetch unless it is already stored.
// Losing the insert to a concurrent creator yields the winner's row.
func (c *CatalogCache) Persist(ctx context.Context, books repository.BookRepository, book *models.Book) (*models.Book, error) {
	if book.ID != 0 {
		return book, nil
	}

	// Insert a copy so a rolled-back transaction leaves book reusable.
	row := *book
	inserted, err := books.CreateIfAbsent(ctx, &row)
	if err != nil {
		return nil, err
	}
	if !inserted {
		metrics.ObserveCatalogLookup(metrics.LookupRaced)
		return books.FindByExternalID(ctx, row.ExternalID)
	}

	metrics.ObserveCatalogLookup(metrics.LookupFetched)
	c.logger.Info("book_cached", "external_id", row.ExternalID, "book_id", row.ID)
	return &row, nil
}
