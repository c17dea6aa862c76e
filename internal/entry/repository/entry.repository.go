package repository

import (
	"context"

	"notepost/config/database"
	"notepost/pkg/logger"
	"notepost/store"
)

type EntryRepository struct{}

func NewEntryRepository() *EntryRepository {
	return &EntryRepository{}
}

// List returns every entry, most recent first.
func (r *EntryRepository) List(ctx context.Context, db *database.Scope) ([]store.Entry, error) {
	rows, err := db.Query(ctx, "SELECT id, title, text FROM entries ORDER BY id DESC")
	if err != nil {
		logger.Sugar.Errorf("Failed to list entries: %v", err)
		return nil, err
	}
	defer rows.Close()

	entries := []store.Entry{}
	for rows.Next() {
		var e store.Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.Text); err != nil {
			logger.Sugar.Errorf("Failed to scan entry: %v", err)
			return nil, &database.StorageError{Op: "scan", Err: err}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		logger.Sugar.Errorf("Failed to read entries: %v", err)
		return nil, &database.StorageError{Op: "query", Err: err}
	}
	return entries, nil
}

// Create inserts an entry and commits. On failure the transaction is
// rolled back before Create returns.
func (r *EntryRepository) Create(ctx context.Context, db *database.Scope, title, text string) (int64, error) {
	var id int64
	err := db.InTx(ctx, func(tx *database.Tx) error {
		return tx.QueryRow(ctx, "INSERT INTO entries (title, text) VALUES (?, ?) RETURNING id", title, text).Scan(&id)
	})
	if err != nil {
		logger.Sugar.Errorf("Failed to create entry: %v", err)
		return 0, err
	}
	return id, nil
}

// Delete removes the entry with id and commits. A missing id deletes
// nothing and is not an error.
func (r *EntryRepository) Delete(ctx context.Context, db *database.Scope, id int64) (int64, error) {
	var affected int64
	err := db.InTx(ctx, func(tx *database.Tx) error {
		res, err := tx.Exec(ctx, "DELETE FROM entries WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		logger.Sugar.Errorf("Failed to delete entry %d: %v", id, err)
		return 0, err
	}
	return affected, nil
}
