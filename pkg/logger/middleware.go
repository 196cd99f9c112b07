package logger

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// requestIDMetadataKey is the gRPC metadata key carrying the caller's request ID
const requestIDMetadataKey = "x-request-id"

// RequestIDInterceptor is a gRPC interceptor that adds a request ID to the context.
// The caller's x-request-id metadata is reused when present.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		return handler(context.WithValue(ctx, RequestIDKey, incomingRequestID(ctx)), req)
	}
}

func incomingRequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(requestIDMetadataKey); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.New().String()
}
