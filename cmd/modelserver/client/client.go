// Package client holds the subcommands that talk to a running server.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	modelserverv1 "github.com/cozy-creator/model-server/api/modelserver/v1"
	"github.com/cozy-creator/model-server/internal/server"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	DefaultAddr    = "localhost:50051"
	DefaultTimeout = 30 * time.Second
)

var ModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect and extend the model registry of a running server",
}

var GenerateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Stream a generation from a running server",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered models",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add <model_id=model_type>...",
	Short: "Register models in one batch",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

func init() {
	for _, cmd := range []*cobra.Command{ModelsCmd, GenerateCmd} {
		cmd.PersistentFlags().String("addr", DefaultAddr, "Address of the model server")
		cmd.PersistentFlags().Duration("timeout", DefaultTimeout, "Deadline for the whole call")
	}

	ModelsCmd.AddCommand(listCmd, addCmd)
}

func dial(cmd *cobra.Command) (modelserverv1.InferencerClient, func(), error) {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return nil, nil, err
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	return modelserverv1.NewInferencerClient(conn), func() { conn.Close() }, nil
}

func timeout(cmd *cobra.Command) time.Duration {
	d, err := cmd.Flags().GetDuration("timeout")
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// ParseModelArg splits "id=type" into its parts.
func ParseModelArg(arg string) (*modelserverv1.ModelSpec, error) {
	id, typ, ok := strings.Cut(arg, "=")
	id, typ = strings.TrimSpace(id), strings.TrimSpace(typ)
	if !ok || id == "" || typ == "" {
		return nil, fmt.Errorf("invalid model %q, expected model_id=model_type", arg)
	}
	return &modelserverv1.ModelSpec{ModelId: id, ModelType: typ}, nil
}

func runList(cmd *cobra.Command, _ []string) error {
	client, closeConn, err := dial(cmd)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout(cmd))
	defer cancel()

	stream, err := client.ListModels(ctx, &emptypb.Empty{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for {
		spec, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\n", spec.GetModelId(), spec.GetModelType())
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	specs := make([]*modelserverv1.ModelSpec, 0, len(args))
	for _, arg := range args {
		spec, err := ParseModelArg(arg)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}

	client, closeConn, err := dial(cmd)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout(cmd))
	defer cancel()

	stream, err := client.AddModels(ctx)
	if err != nil {
		return err
	}
	for _, spec := range specs {
		if err := stream.Send(spec); err != nil {
			return err
		}
	}

	resp, err := stream.CloseAndRecv()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "added %d models\n", resp.GetValue())
	if isStale(stream.Trailer()) {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: models were stored but the server registry is stale until its next reload")
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	client, closeConn, err := dial(cmd)
	if err != nil {
		return err
	}
	defer closeConn()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout(cmd))
	defer cancel()

	stream, err := client.GenerateStreaming(ctx, wrapperspb.String(args[0]))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprint(out, chunk.GetValue())
	}
}

func isStale(md metadata.MD) bool {
	values := md.Get(server.StaleTrailer)
	return len(values) > 0 && values[0] == "true"
}
