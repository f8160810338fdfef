package registry

import (
	"errors"
	"fmt"
)

// StorageError reports a failed round trip to the persistent store. A failed
// refresh never touches the cache; a failed insert never triggers a refresh.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("registry %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// StaleError is returned together with a valid row count when the insert
// committed but the follow-up refresh failed. The cache still holds the
// pre-insert snapshot.
type StaleError struct {
	Inserted int64
	Err      error
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("registry stale after inserting %d models: %v", e.Inserted, e.Err)
}

func (e *StaleError) Unwrap() error {
	return e.Err
}

func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func IsStale(err error) bool {
	var se *StaleError
	return errors.As(err, &se)
}
