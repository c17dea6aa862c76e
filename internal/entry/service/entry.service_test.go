package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"notepost/config/database"
	"notepost/internal/apperr"
	"notepost/internal/entry/model"
	"notepost/internal/entry/repository"
	"notepost/socket"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFeed struct {
	mu     sync.Mutex
	events []socket.Event
}

func (f *recordingFeed) Publish(ev socket.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func setup(t *testing.T) (*EntryService, *recordingFeed, *database.Scope) {
	t.Helper()
	store, err := database.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, database.InitSchema(context.Background(), store))

	scope := store.NewScope()
	t.Cleanup(func() { scope.Close() })

	feed := &recordingFeed{}
	return NewEntryService(repository.NewEntryRepository(), feed), feed, scope
}

func TestValidateEntry(t *testing.T) {
	assert.Equal(t, ErrTitleRequired, ValidateEntry(model.AddEntryRequest{}))
	assert.Equal(t, ErrTitleRequired, ValidateEntry(model.AddEntryRequest{Text: "x"}))
	assert.Equal(t, ErrTextRequired, ValidateEntry(model.AddEntryRequest{Title: "x"}))
	assert.NoError(t, ValidateEntry(model.AddEntryRequest{Title: "x", Text: "y"}))

	assert.True(t, apperr.IsValidation(ErrTitleRequired))
	assert.Equal(t, "Title is required.", ErrTitleRequired.Error())
	assert.Equal(t, "Text is required.", ErrTextRequired.Error())
}

func TestAddAndListNewestFirst(t *testing.T) {
	svc, feed, scope := setup(t)
	ctx := context.Background()

	entries, err := svc.ListEntries(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, entries)

	first, err := svc.AddEntry(ctx, scope, model.AddEntryRequest{Title: "one", Text: "1"})
	require.NoError(t, err)
	second, err := svc.AddEntry(ctx, scope, model.AddEntryRequest{Title: "two", Text: "2"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	entries, err = svc.ListEntries(ctx, scope)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "two", entries[0].Title)
	assert.Equal(t, "one", entries[1].Title)

	require.Len(t, feed.events, 2)
	assert.Equal(t, socket.EntryAddedType, feed.events[1].Type)
	assert.Equal(t, second, feed.events[1].Entry)
}

func TestAddEntryValidationLeavesStoreUntouched(t *testing.T) {
	svc, feed, scope := setup(t)
	ctx := context.Background()

	_, err := svc.AddEntry(ctx, scope, model.AddEntryRequest{Text: "no title"})
	assert.Equal(t, ErrTitleRequired, err)
	_, err = svc.AddEntry(ctx, scope, model.AddEntryRequest{Title: "no text"})
	assert.Equal(t, ErrTextRequired, err)

	entries, err := svc.ListEntries(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, feed.events)
}

func TestDeleteEntry(t *testing.T) {
	svc, feed, scope := setup(t)
	ctx := context.Background()

	added, err := svc.AddEntry(ctx, scope, model.AddEntryRequest{Title: "gone", Text: "soon"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEntry(ctx, scope, added.ID))
	entries, err := svc.ListEntries(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.Len(t, feed.events, 2)
	assert.Equal(t, socket.EntryDeletedType, feed.events[1].Type)
	assert.Equal(t, added.ID, feed.events[1].Entry.ID)

	// Unknown ids delete nothing and publish nothing.
	require.NoError(t, svc.DeleteEntry(ctx, scope, 9999))
	assert.Len(t, feed.events, 2)
}

func TestAddEntryStorageFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("database is locked")
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO entries").WithArgs("t", "x").WillReturnError(boom)
	mock.ExpectRollback()

	scope := database.New(db, database.SQLite).NewScope()
	defer scope.Close()

	feed := &recordingFeed{}
	svc := NewEntryService(repository.NewEntryRepository(), feed)
	_, err = svc.AddEntry(context.Background(), scope, model.AddEntryRequest{Title: "t", Text: "x"})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, feed.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNilFeed(t *testing.T) {
	svc, _, scope := setup(t)
	svc.Feed = nil
	_, err := svc.AddEntry(context.Background(), scope, model.AddEntryRequest{Title: "t", Text: "x"})
	assert.NoError(t, err)
}
