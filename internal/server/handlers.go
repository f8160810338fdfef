package server

import (
	"context"
	"errors"
	"io"

	modelserverv1 "github.com/cozy-creator/model-server/api/modelserver/v1"
	"github.com/cozy-creator/model-server/internal/dispatch"
	"github.com/cozy-creator/model-server/internal/registry"
	"github.com/cozy-creator/model-server/internal/stream"
	"github.com/cozy-creator/model-server/internal/types"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Inferencer implements the modelserver.v1.Inferencer service.
type Inferencer struct {
	modelserverv1.UnimplementedInferencerServer

	registry *registry.Cache
	gateway  *dispatch.Gateway
	logger   *zap.Logger
}

func NewInferencer(cache *registry.Cache, gateway *dispatch.Gateway, logger *zap.Logger) *Inferencer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Inferencer{
		registry: cache,
		gateway:  gateway,
		logger:   logger,
	}
}

func (s *Inferencer) RunInference(ctx context.Context, req *modelserverv1.InferenceRequest) (*modelserverv1.InferenceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "RunInference is not implemented")
}

// ListModels streams the registry snapshot taken when the call arrives.
func (s *Inferencer) ListModels(_ *emptypb.Empty, srv grpc.ServerStreamingServer[modelserverv1.ModelSpec]) error {
	ctx := srv.Context()
	snapshot := s.registry.List()

	sink, st := stream.New[types.ModelDescriptor](s.gateway.Capacity(types.JobKindList))
	defer st.Close()

	go func() {
		defer sink.Close()
		for _, d := range snapshot {
			if err := sink.Send(ctx, d); err != nil {
				return
			}
		}
	}()

	for {
		item, err := st.Recv(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return toStatus(err)
		}
		if item.Err != nil {
			return toStatus(item.Err)
		}

		spec := &modelserverv1.ModelSpec{ModelId: item.Value.ID, ModelType: item.Value.Type}
		if err := srv.Send(spec); err != nil {
			return err
		}
	}
}

// AddModels reads the whole client stream and stores it as one batch.
func (s *Inferencer) AddModels(srv grpc.ClientStreamingServer[modelserverv1.ModelSpec, wrapperspb.UInt64Value]) error {
	ctx := srv.Context()
	logger := s.logger.With(zap.String("span_id", SpanID(ctx)))

	var (
		batch   []types.ModelDescriptor
		dropped int
	)
	for {
		spec, err := srv.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		d := types.ModelDescriptor{ID: spec.GetModelId(), Type: spec.GetModelType()}
		if !d.Valid() {
			dropped++
			continue
		}
		batch = append(batch, d)
	}

	if dropped > 0 {
		logger.Debug("dropped incomplete model specs", zap.Int("dropped", dropped))
	}

	n, err := s.registry.AddBatch(ctx, batch)
	if err != nil {
		if !registry.IsStale(err) {
			logger.Error("failed to add models", zap.Int("models", len(batch)), zap.Error(err))
			return toStatus(err)
		}
		logger.Warn("models stored but registry is stale", zap.Int64("inserted", n), zap.Error(err))
		srv.SetTrailer(metadata.Pairs(StaleTrailer, "true"))
	}

	return srv.SendAndClose(wrapperspb.UInt64(uint64(n)))
}

// GenerateStreaming dispatches the prompt and relays every chunk until the
// pool ends the stream.
func (s *Inferencer) GenerateStreaming(req *wrapperspb.StringValue, srv grpc.ServerStreamingServer[wrapperspb.StringValue]) error {
	ctx := srv.Context()
	logger := s.logger.With(zap.String("span_id", SpanID(ctx)))
	logger.Debug("generation state", zap.String("state", string(types.StreamRequested)))

	final := func(state types.StreamState, chunks int, err error) {
		fields := []zap.Field{zap.String("state", string(state)), zap.Int("chunks", chunks)}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		logger.Info("generation finished", fields...)
	}

	st, err := s.gateway.Submit(ctx, dispatch.Spec{Kind: types.JobKindGenerate, Prompt: req.GetValue()})
	if err != nil {
		final(types.StreamFailed, 0, err)
		return toStatus(err)
	}
	defer st.Close()
	logger.Debug("generation state", zap.String("state", string(types.StreamDispatched)))

	chunks := 0
	for {
		item, err := st.Recv(ctx)
		switch {
		case errors.Is(err, io.EOF):
			final(types.StreamCompleted, chunks, nil)
			return nil
		case err != nil:
			final(types.StreamCancelled, chunks, err)
			return toStatus(err)
		case item.Err != nil:
			final(types.StreamFailed, chunks, item.Err)
			return toStatus(item.Err)
		}

		if chunks == 0 {
			logger.Debug("generation state", zap.String("state", string(types.StreamStreaming)))
		}
		if err := srv.Send(wrapperspb.String(item.Value)); err != nil {
			final(types.StreamCancelled, chunks, err)
			return err
		}
		chunks++
	}
}
