package server

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	ginhandler "user-admin-service/internal/adapter/gin/handler"
	"user-admin-service/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Environment:     "test",
			GRPCPort:        "0",
			HTTPPort:        "0",
			ShutdownTimeout: 2 * time.Second,
		},
		Logger: config.LoggerConfig{ServiceName: "user-admin-service"},
	}
}

func TestSetupGRPC_ReportsServing(t *testing.T) {
	_, hs := SetupGRPC("user-admin-service", zaptest.NewLogger(t))

	for _, svc := range []string{"", "user-admin-service"} {
		resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{Service: svc})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status, "service %q", svc)
	}
}

func TestSetupGinServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.App.HTTPPort = "8081"

	srv := SetupGinServer(cfg, ginhandler.NewUserHandler(nil, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	assert.Equal(t, ":8081", srv.Addr)
	assert.NotNil(t, srv.Handler)
	assert.Positive(t, srv.ReadHeaderTimeout)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := zaptest.NewLogger(t)
	srv := New(testConfig(), l, ginhandler.NewUserHandler(nil, l))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}

	resp, err := srv.Health.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestServer_RunFailsOnInvalidPort(t *testing.T) {
	l := zaptest.NewLogger(t)
	cfg := testConfig()
	cfg.App.HTTPPort = "not-a-port"

	srv := New(cfg, l, ginhandler.NewUserHandler(nil, l))

	err := srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen for HTTP")
}
