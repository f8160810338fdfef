package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/cozy-creator/model-server/internal/pool"
	"github.com/cozy-creator/model-server/internal/types"
)

type Reason string

const (
	ReasonClosed     Reason = "closed"
	ReasonOverloaded Reason = "overloaded"
	ReasonTimeout    Reason = "timeout"
	ReasonRejected   Reason = "rejected"
)

// DispatchError is a synchronous rejection of a job by the pool.
type DispatchError struct {
	Kind   types.JobKind
	Reason Reason
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s job: %s: %v", e.Kind, e.Reason, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

func newDispatchError(kind types.JobKind, err error) *DispatchError {
	reason := ReasonRejected
	switch {
	case errors.Is(err, pool.ErrPoolClosed):
		reason = ReasonClosed
	case errors.Is(err, pool.ErrPoolOverloaded):
		reason = ReasonOverloaded
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		reason = ReasonTimeout
	}

	return &DispatchError{Kind: kind, Reason: reason, Err: err}
}

func IsDispatchError(err error) (*DispatchError, bool) {
	var de *DispatchError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
