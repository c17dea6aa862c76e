package database

import "errors"

var (
	// ErrStorageUnavailable means the store could not be opened or a
	// connection could not be borrowed.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrScopeClosed is returned when a Scope is used after Close.
	ErrScopeClosed = errors.New("database scope closed")

	// ErrNoScope means the request context carries no Scope.
	ErrNoScope = errors.New("no database scope in context")
)

// StorageError wraps a failed query, statement or transaction.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
