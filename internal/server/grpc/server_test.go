package grpc_test

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Additional-Code/bikeshop/internal/config"
	grpcserver "github.com/Additional-Code/bikeshop/internal/server/grpc"
	"github.com/Additional-Code/bikeshop/pkg/errorbank"
)

type failingHealth struct {
	healthpb.UnimplementedHealthServer
	err error
}

func (f failingHealth) Check(context.Context, *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	return nil, f.err
}

func dial(t *testing.T, server *grpc.Server) healthpb.HealthClient {
	t.Helper()
	ln := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return ln.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func TestRegister_ServesHealth(t *testing.T) {
	server := grpcserver.NewServer(zap.NewNop())
	grpcserver.Register(server, health.NewServer(), config.Config{Observability: config.Observability{ServiceName: "bikeshop"}})
	client := dial(t, server)

	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "bikeshop"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestNewServer_MapsAppErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{name: "not found", err: errorbank.NotFound("bike not found"), code: codes.NotFound},
		{name: "out of stock", err: errorbank.OutOfStock("bike is not available"), code: codes.FailedPrecondition},
		{name: "plain error", err: errors.New("boom"), code: codes.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := grpcserver.NewServer(zap.NewNop())
			healthpb.RegisterHealthServer(server, failingHealth{err: tt.err})
			client := dial(t, server)

			_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}
