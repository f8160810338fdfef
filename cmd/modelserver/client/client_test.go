package client

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cozy-creator/model-server/internal/config"
	"github.com/cozy-creator/model-server/internal/db"
	"github.com/cozy-creator/model-server/internal/db/drivers"
	"github.com/cozy-creator/model-server/internal/db/repository"
	"github.com/cozy-creator/model-server/internal/dispatch"
	"github.com/cozy-creator/model-server/internal/pool"
	"github.com/cozy-creator/model-server/internal/registry"
	"github.com/cozy-creator/model-server/internal/server"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) string {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	driver, err := drivers.NewSQLiteDriver(context.Background(), fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { driver.Close() })
	require.NoError(t, db.EnsureSchema(context.Background(), driver.GetDB()))

	cache := registry.New(registry.NewRepositoryStore(repository.NewModelRepository(driver.GetDB()), time.Second))

	p := pool.NewLocal(pool.EchoEngine{ChunkSize: 3}, 1, 1)
	t.Cleanup(func() { p.Close() })

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := server.NewServer(&config.Config{Host: "127.0.0.1", Port: config.DefaultPort}, cache, dispatch.NewGateway(p, nil),
		server.WithListener(lis),
	)
	done := make(chan error, 1)
	go func() { done <- srv.Start(context.Background()) }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Stop(ctx)
		<-done
	})

	return lis.Addr().String()
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestModelsAddAndList(t *testing.T) {
	addr := startServer(t)

	out, err := execute(t, ModelsCmd, "add", "m1=onnx", "m2=gguf", "--addr", addr)
	require.NoError(t, err)
	assert.Equal(t, "added 2 models\n", out)

	out, err = execute(t, ModelsCmd, "list", "--addr", addr)
	require.NoError(t, err)
	assert.Equal(t, "m1\tonnx\nm2\tgguf\n", out)
}

func TestGenerate(t *testing.T) {
	addr := startServer(t)

	out, err := execute(t, GenerateCmd, "hello", "--addr", addr)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestParseModelArg(t *testing.T) {
	spec, err := ParseModelArg(" m1 = onnx ")
	require.NoError(t, err)
	assert.Equal(t, "m1", spec.GetModelId())
	assert.Equal(t, "onnx", spec.GetModelType())

	for _, bad := range []string{"m1", "=onnx", "m1=", ""} {
		_, err := ParseModelArg(bad)
		assert.Error(t, err, bad)
	}
}
