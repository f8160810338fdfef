package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const (
	MethodUnary        = "unary"
	MethodServerStream = "server-stream"
	MethodClientStream = "client-stream"
	MethodBidiStream   = "bidi-stream"
)

type spanKey struct{}

// SpanID returns the correlation id of the request handled under ctx.
func SpanID(ctx context.Context) string {
	id, _ := ctx.Value(spanKey{}).(string)
	return id
}

func withSpan(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(ctx, spanKey{}, id), id
}

// UnaryTracing logs one span per unary call.
func UnaryTracing(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, id := withSpan(ctx)
		span := logger.With(
			zap.String("span_id", id),
			zap.String("method", MethodUnary),
			zap.String("path", info.FullMethod),
		)

		start := time.Now()
		span.Info("request started")

		resp, err := handler(ctx, req)
		span.Info("request finished",
			zap.Duration("duration", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		)
		return resp, err
	}
}

type tracedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *tracedStream) Context() context.Context {
	return s.ctx
}

// StreamTracing logs one span per streaming call.
func StreamTracing(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, id := withSpan(ss.Context())
		span := logger.With(
			zap.String("span_id", id),
			zap.String("method", streamKind(info)),
			zap.String("path", info.FullMethod),
		)

		start := time.Now()
		span.Info("request started")

		err := handler(srv, &tracedStream{ServerStream: ss, ctx: ctx})
		span.Info("request finished",
			zap.Duration("duration", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		)
		return err
	}
}

func streamKind(info *grpc.StreamServerInfo) string {
	switch {
	case info.IsClientStream && info.IsServerStream:
		return MethodBidiStream
	case info.IsClientStream:
		return MethodClientStream
	default:
		return MethodServerStream
	}
}
