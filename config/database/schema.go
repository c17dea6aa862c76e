package database

import (
	"context"
	"embed"
	"fmt"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Schema returns the DDL script for the dialect.
func Schema(d Dialect) (string, error) {
	b, err := schemaFS.ReadFile("schema/" + string(d) + ".sql")
	if err != nil {
		return "", fmt.Errorf("no schema for dialect %q: %w", d, err)
	}
	return string(b), nil
}

// InitSchema drops and recreates the entries table.
//
// WARNING: every existing entry is lost. Only the init-db command calls this;
// no request handler does.
func InitSchema(ctx context.Context, store *Store) error {
	script, err := Schema(store.dialect)
	if err != nil {
		return err
	}

	scope := store.NewScope()
	defer scope.Close()

	if _, err := scope.Exec(ctx, script); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}
