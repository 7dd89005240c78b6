package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	authorizationMetadata = "authorization"
	requestIDMetadata     = "x-request-id"
	healthServicePrefix   = "/grpc.health.v1.Health/"
)

// public reports whether method may be called without a token.
func public(method string) bool {
	return strings.HasPrefix(method, healthServicePrefix)
}

func firstValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	requestID := firstValue(ctx, requestIDMetadata)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx = logging.ContextWithFields(ctx, "request_id", requestID)

	start := time.Now()
	resp, err := handler(ctx, req)

	s.logger.Debug(ctx, "grpc request",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start).String(),
	)
	return resp, err
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if public(info.FullMethod) {
		return handler(ctx, req)
	}

	id, err := s.gate.Authenticate(firstValue(ctx, authorizationMetadata))
	if err != nil {
		if errors.Is(err, common.ErrMissingToken) {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	ctx = auth.WithIdentity(ctx, id)
	ctx = logging.ContextWithFields(ctx, "user_id", id.UserID)
	return handler(ctx, req)
}
