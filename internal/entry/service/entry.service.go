package service

import (
	"context"

	"notepost/config/database"
	"notepost/internal/apperr"
	"notepost/internal/entry/model"
	"notepost/internal/entry/repository"
	"notepost/socket"
	"notepost/store"
)

// Add validation failures. Title is checked first.
var (
	ErrTitleRequired = &apperr.ValidationError{Field: "title", Message: "Title is required."}
	ErrTextRequired  = &apperr.ValidationError{Field: "text", Message: "Text is required."}
)

// Publisher receives committed entry changes.
type Publisher interface {
	Publish(ev socket.Event)
}

type EntryService struct {
	Repo *repository.EntryRepository
	Feed Publisher
}

func NewEntryService(repo *repository.EntryRepository, feed Publisher) *EntryService {
	return &EntryService{Repo: repo, Feed: feed}
}

func (s *EntryService) ListEntries(ctx context.Context, db *database.Scope) ([]store.Entry, error) {
	return s.Repo.List(ctx, db)
}

// ValidateEntry returns the first missing field, if any.
func ValidateEntry(req model.AddEntryRequest) error {
	if req.Title == "" {
		return ErrTitleRequired
	}
	if req.Text == "" {
		return ErrTextRequired
	}
	return nil
}

// AddEntry validates and stores a new entry. Validation errors never touch
// the database.
func (s *EntryService) AddEntry(ctx context.Context, db *database.Scope, req model.AddEntryRequest) (store.Entry, error) {
	if err := ValidateEntry(req); err != nil {
		return store.Entry{}, err
	}

	id, err := s.Repo.Create(ctx, db, req.Title, req.Text)
	if err != nil {
		return store.Entry{}, err
	}

	entry := store.Entry{ID: id, Title: req.Title, Text: req.Text}
	s.publish(socket.EntryAddedType, entry)
	return entry, nil
}

// DeleteEntry removes the entry with id. Deleting an unknown id succeeds.
func (s *EntryService) DeleteEntry(ctx context.Context, db *database.Scope, id int64) error {
	affected, err := s.Repo.Delete(ctx, db, id)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.publish(socket.EntryDeletedType, store.Entry{ID: id})
	}
	return nil
}

func (s *EntryService) publish(kind string, entry store.Entry) {
	if s.Feed == nil {
		return
	}
	s.Feed.Publish(socket.Event{Type: kind, Entry: entry})
}
