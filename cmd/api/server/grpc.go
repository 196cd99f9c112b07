package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"user-admin-service/pkg/logger"
)

// SetupGRPC creates the gRPC server that exposes the standard health service
// for orchestrator probes. Both the overall and the named service report SERVING.
func SetupGRPC(serviceName string, l *zap.Logger) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
		),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	l.Debug("gRPC health service registered", zap.String("service", serviceName))

	return grpcServer, healthServer
}
