package transport

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/typedctx"
)

// RequestIDKey is the typed context key carrying a per-RPC request id,
// built on typedctx's generic Key[T] rather than an untyped context.Value
// string constant.
var RequestIDKey = typedctx.NewKey[string]("request_id")

// UnaryServerInterceptor stamps every incoming RPC with a fresh request id
// and logs its method and duration, so one slow or failing call can be
// traced across handler log lines.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		reqID := uuid.New().String()
		ctx = typedctx.Set(ctx, RequestIDKey, reqID)

		start := time.Now()
		resp, err := handler(ctx, req)
		log.Printf("[%s] %s completed in %s (err=%v)", reqID, info.FullMethod, time.Since(start), err)
		return resp, err
	}
}
