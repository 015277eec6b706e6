package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"booksync/internal/catalog"
	"booksync/internal/microservices/http-api/dto"
	"booksync/internal/microservices/http-api/models"
	"booksync/internal/microservices/http-api/repository"
	"booksync/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

type reviewFixture struct {
	db      *gorm.DB
	store   repository.Store
	lookup  *MockLookup
	service ReviewService
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := repository.NewStore(db)
	lookup := new(MockLookup)
	return &reviewFixture{
		db:      db,
		store:   store,
		lookup:  lookup,
		service: NewReviewService(store, NewCatalogCache(lookup, discardLogger()), discardLogger()),
	}
}

func (f *reviewFixture) bookCount(t *testing.T) int64 {
	t.Helper()
	count, err := f.store.Books().Count(context.Background())
	require.NoError(t, err)
	return count
}

func (f *reviewFixture) expectVolume(id, title string, authors ...string) {
	f.lookup.On("LookupByID", mock.Anything, id).
		Return(&catalog.Volume{ID: id, Title: title, Authors: authors}, nil)
}

func TestReviewService_CreateScenario(t *testing.T) {
	f := newReviewFixture(t)
	f.lookup.On("LookupByID", mock.Anything, "X1").
		Return(&catalog.Volume{ID: "X1", Title: "Foo", Authors: []string{"A", "B"}}, nil).Once()
	ctx := context.Background()

	resp, err := f.service.Create(ctx, alice, "X1", dto.ReviewRequest{Rating: 5, Comment: "ok", Status: "lido"})
	require.NoError(t, err)
	assert.Equal(t, "X1", resp.ExternalID)
	assert.Equal(t, "Foo", resp.Title)
	assert.Equal(t, "A, B", resp.Author)
	assert.Equal(t, 5, resp.Rating)
	assert.Equal(t, "lido", resp.Status)

	_, err = f.service.Create(ctx, alice, "X1", dto.ReviewRequest{Rating: 3, Status: "lendo"})
	assert.ErrorIs(t, err, ErrReviewConflict)

	assert.Equal(t, int64(1), f.bookCount(t))
	f.lookup.AssertExpectations(t)
}

func TestReviewService_CreateReusesCachedBook(t *testing.T) {
	f := newReviewFixture(t)
	f.lookup.On("LookupByID", mock.Anything, "X1").
		Return(&catalog.Volume{ID: "X1", Title: "Foo"}, nil).Once()
	ctx := context.Background()

	_, err := f.service.Create(ctx, alice, "X1", dto.ReviewRequest{Rating: 4})
	require.NoError(t, err)
	resp, err := f.service.Create(ctx, bob, "X1", dto.ReviewRequest{Rating: 2})
	require.NoError(t, err)

	assert.Equal(t, "lendo", resp.Status)
	assert.Equal(t, int64(1), f.bookCount(t))
	f.lookup.AssertExpectations(t)
}

func TestReviewService_CreateBookNotFound(t *testing.T) {
	f := newReviewFixture(t)
	f.lookup.On("LookupByID", mock.Anything, "nope").Return(nil, catalog.ErrNotFound)

	_, err := f.service.Create(context.Background(), alice, "nope", dto.ReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.Zero(t, f.bookCount(t))
}

func TestReviewService_CreateLookupUnavailable(t *testing.T) {
	f := newReviewFixture(t)
	f.lookup.On("LookupByID", mock.Anything, "X1").Return(nil, fmt.Errorf("%w: 503", catalog.ErrUnavailable))

	_, err := f.service.Create(context.Background(), alice, "X1", dto.ReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, ErrLookupUnavailable)
}

func TestReviewService_CreateRejectsBadInput(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, alice, "X1", dto.ReviewRequest{Rating: 4, Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.service.Create(ctx, alice, "X1", dto.ReviewRequest{Rating: 0})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = f.service.Create(ctx, alice, "X1", dto.ReviewRequest{Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	f.lookup.AssertNotCalled(t, "LookupByID", mock.Anything, mock.Anything)
}

func TestReviewService_UpsertCreatesThenUpdates(t *testing.T) {
	f := newReviewFixture(t)
	f.expectVolume("X1", "Foo", "A")
	ctx := context.Background()

	resp, created, err := f.service.Upsert(ctx, alice, "X1", dto.ReviewRequest{Rating: 3, Comment: "first"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "lendo", resp.Status)
	firstID := resp.ID

	resp, created, err = f.service.Upsert(ctx, alice, "X1", dto.ReviewRequest{Rating: 5, Comment: "", Status: "lido"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, firstID, resp.ID)
	assert.Equal(t, 5, resp.Rating)
	assert.Empty(t, resp.Comment)
	assert.Equal(t, "lido", resp.Status)
	assert.Equal(t, "Foo", resp.Title)

	_, created, err = f.service.Upsert(ctx, alice, "X1", dto.ReviewRequest{Rating: 5, Status: "lido"})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestReviewService_UpsertValidatesStatusOnUpdate(t *testing.T) {
	f := newReviewFixture(t)
	f.expectVolume("X1", "Foo", "A")
	ctx := context.Background()

	_, _, err := f.service.Upsert(ctx, alice, "X1", dto.ReviewRequest{Rating: 3})
	require.NoError(t, err)

	_, _, err = f.service.Upsert(ctx, alice, "X1", dto.ReviewRequest{Rating: 3, Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	list, err := f.service.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "lendo", list[0].Status)
}

func TestReviewService_UpsertBookNotFound(t *testing.T) {
	f := newReviewFixture(t)
	f.lookup.On("LookupByID", mock.Anything, "nope").Return(nil, catalog.ErrNotFound)

	_, _, err := f.service.Upsert(context.Background(), alice, "nope", dto.ReviewRequest{Rating: 3})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestReviewService_PatchStatusNeverCreates(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	_, err := f.service.PatchStatus(ctx, alice, "X1", "lido")
	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.Zero(t, f.bookCount(t))
	f.lookup.AssertNotCalled(t, "LookupByID", mock.Anything, mock.Anything)
}

func TestReviewService_PatchStatusOtherUsersBook(t *testing.T) {
	f := newReviewFixture(t)
	f.expectVolume("X1", "Foo", "A")
	ctx := context.Background()

	_, err := f.service.Create(ctx, alice, "X1", dto.ReviewRequest{Rating: 4})
	require.NoError(t, err)

	_, err = f.service.PatchStatus(ctx, bob, "X1", "lido")
	assert.ErrorIs(t, err, ErrReviewNotFound)

	resp, err := f.service.PatchStatus(ctx, alice, "X1", "lido")
	require.NoError(t, err)
	assert.Equal(t, "lido", resp.Status)
	assert.Equal(t, 4, resp.Rating)
}

func TestReviewService_PatchStatusInvalid(t *testing.T) {
	f := newReviewFixture(t)
	f.expectVolume("X1", "Foo", "A")
	ctx := context.Background()

	_, err := f.service.PatchStatus(ctx, alice, "X1", "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.service.Create(ctx, alice, "X1", dto.ReviewRequest{Rating: 4})
	require.NoError(t, err)

	_, err = f.service.PatchStatus(ctx, alice, "X1", "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.service.PatchStatus(ctx, alice, "X1", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestReviewService_DeleteThenCreateGetsFreshID(t *testing.T) {
	f := newReviewFixture(t)
	f.expectVolume("X1", "Foo", "A")
	ctx := context.Background()

	first, err := f.service.Create(ctx, alice, "X1", dto.ReviewRequest{Rating: 4})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, alice, "X1"))
	assert.ErrorIs(t, f.service.Delete(ctx, alice, "X1"), ErrReviewNotFound)

	second, err := f.service.Create(ctx, alice, "X1", dto.ReviewRequest{Rating: 2})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(1), f.bookCount(t))
}

func TestReviewService_DeleteMissing(t *testing.T) {
	f := newReviewFixture(t)

	err := f.service.Delete(context.Background(), alice, "X1")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestReviewService_List(t *testing.T) {
	f := newReviewFixture(t)
	f.expectVolume("X1", "Foo", "A", "B")
	f.expectVolume("X2", "Bar", "C")
	ctx := context.Background()

	_, err := f.service.Create(ctx, alice, "X1", dto.ReviewRequest{Rating: 5, Status: "lido"})
	require.NoError(t, err)
	_, err = f.service.Create(ctx, alice, "X2", dto.ReviewRequest{Rating: 3, Comment: "hmm"})
	require.NoError(t, err)
	_, err = f.service.Create(ctx, bob, "X2", dto.ReviewRequest{Rating: 1})
	require.NoError(t, err)

	list, err := f.service.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, dto.UserBookResponse{ExternalID: "X1", Title: "Foo", Author: "A, B", Rating: 5, Status: "lido"}, list[0])
	assert.Equal(t, "hmm", list[1].Comment)

	empty, err := f.service.List(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

var errReviewWrite = errors.New("review write failed")

// failingReviewStore wraps a Store so review inserts fail after the book is written.
type failingReviewStore struct {
	repository.Store
}

func (s failingReviewStore) Reviews() repository.ReviewRepository {
	return failingReviews{s.Store.Reviews()}
}

func (s failingReviewStore) WithinTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.WithinTransaction(ctx, func(tx repository.Store) error {
		return fn(failingReviewStore{tx})
	})
}

type failingReviews struct {
	repository.ReviewRepository
}

func (failingReviews) Create(context.Context, *models.Review) error {
	return errReviewWrite
}

func TestReviewService_FailedCreateRollsBackBook(t *testing.T) {
	f := newReviewFixture(t)
	f.expectVolume("X1", "Foo", "A")
	svc := NewReviewService(failingReviewStore{f.store}, NewCatalogCache(f.lookup, discardLogger()), discardLogger())

	_, err := svc.Create(context.Background(), alice, "X1", dto.ReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, errReviewWrite)
	assert.Zero(t, f.bookCount(t))

	_, _, err = svc.Upsert(context.Background(), alice, "X1", dto.ReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, errReviewWrite)
	assert.Zero(t, f.bookCount(t))
}

func TestReviewService_SlowLookupDoesNotBlockOtherRequests(t *testing.T) {
	f := newReviewFixture(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.lookup.On("LookupByID", mock.Anything, "X1").
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&catalog.Volume{ID: "X1", Title: "Foo", Authors: []string{"A"}}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Create(context.Background(), alice, "X1", dto.ReviewRequest{Rating: 5})
		done <- err
	}()
	<-entered

	// the test database has a single connection; a lookup holding it would starve this call
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	list, listErr := f.service.List(ctx, bob)

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, listErr)
	assert.Empty(t, list)
	assert.Equal(t, int64(1), f.bookCount(t))
}

// staleReviewStore hides the caller's existing review from the first misses
// lookups, as if a concurrent upsert committed right after they ran.
type staleReviewStore struct {
	repository.Store
	misses *int
}

func (s staleReviewStore) Reviews() repository.ReviewRepository {
	return staleReviews{ReviewRepository: s.Store.Reviews(), misses: s.misses}
}

func (s staleReviewStore) WithinTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.WithinTransaction(ctx, func(tx repository.Store) error {
		return fn(staleReviewStore{Store: tx, misses: s.misses})
	})
}

type staleReviews struct {
	repository.ReviewRepository
	misses *int
}

func (r staleReviews) FindByExternalID(ctx context.Context, userID, externalID string) (*models.Review, error) {
	if *r.misses > 0 {
		*r.misses--
		return nil, fmt.Errorf("find review for %s: %w", externalID, gorm.ErrRecordNotFound)
	}
	return r.ReviewRepository.FindByExternalID(ctx, userID, externalID)
}

func TestReviewService_UpsertLosingInsertRaceUpdates(t *testing.T) {
	f := newReviewFixture(t)
	f.expectVolume("X1", "Foo", "A")
	ctx := context.Background()

	first, err := f.service.Create(ctx, alice, "X1", dto.ReviewRequest{Rating: 5, Status: "lido"})
	require.NoError(t, err)

	misses := 2
	svc := NewReviewService(staleReviewStore{Store: f.store, misses: &misses}, NewCatalogCache(f.lookup, discardLogger()), discardLogger())

	resp, created, err := svc.Upsert(ctx, alice, "X1", dto.ReviewRequest{Rating: 2, Comment: "meh", Status: "lendo"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, resp.ID)
	assert.Equal(t, 2, resp.Rating)
	assert.Equal(t, "lendo", resp.Status)
	assert.Zero(t, misses)

	count, err := f.store.Reviews().CountByUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	f.lookup.AssertNumberOfCalls(t, "LookupByID", 1)
}
