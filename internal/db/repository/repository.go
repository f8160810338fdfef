package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/uptrace/bun/driver/pgdriver"
)

var ErrDuplicateModel = errors.New("model already registered")

// Repository covers the only two operations the server runs against a table:
// a full scan and a batched insert.
type Repository[T any] interface {
	ListAll(ctx context.Context) ([]T, error)
	InsertBatch(ctx context.Context, rows []T) (int64, error)
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}

	// sqlite and libsql report constraint failures only through the message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
