package server

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/cozy-creator/model-server/internal/db/repository"
	"github.com/cozy-creator/model-server/internal/dispatch"
	"github.com/cozy-creator/model-server/internal/pool"
	"github.com/cozy-creator/model-server/internal/registry"
	"github.com/cozy-creator/model-server/internal/stream"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StaleTrailer is set to "true" when models were stored but the registry
// could not be reloaded afterwards.
const StaleTrailer = "x-registry-stale"

// toStatus converts an internal error into a gRPC status error.
func toStatus(err error) error {
	if err == nil {
		return nil
	}

	if s, ok := status.FromError(err); ok {
		return s.Err()
	}

	if de, ok := dispatch.IsDispatchError(err); ok {
		switch de.Reason {
		case dispatch.ReasonOverloaded:
			return status.Error(codes.ResourceExhausted, err.Error())
		case dispatch.ReasonTimeout:
			return status.Error(codes.DeadlineExceeded, err.Error())
		default:
			return status.Error(codes.Unavailable, err.Error())
		}
	}

	var se *registry.StorageError
	if errors.As(err, &se) {
		switch {
		case errors.Is(se, repository.ErrDuplicateModel):
			return status.Error(codes.AlreadyExists, err.Error())
		case isUnavailable(se):
			return status.Error(codes.Unavailable, err.Error())
		default:
			return status.Error(codes.Internal, err.Error())
		}
	}

	switch {
	case errors.Is(err, pool.ErrPoolClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, stream.ErrConsumerGone), errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	return status.Error(codes.Internal, err.Error())
}

// isUnavailable reports whether a store error comes from reaching the store
// rather than from the statement itself.
func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
