// Package grpc provides the gRPC transport layer for the catalog service.
//
// The catalog service is registered from a hand-written ServiceDesc whose
// messages are protobuf well-known types, so no code generation is needed.
package grpc

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/mvaleed/mjcatalog/internal/auth"
	"github.com/mvaleed/mjcatalog/internal/service"
)

// Server wraps the gRPC server with dependencies
type Server struct {
	grpcServer  *grpc.Server
	health      *health.Server
	authService *service.AuthService
	logger      *slog.Logger
}

// NewServer creates a new gRPC server with all handlers registered
func NewServer(
	catalog *service.Services,
	authService *service.AuthService,
	logger *slog.Logger,
) *Server {
	s := &Server{
		health:      health.NewServer(),
		authService: authService,
		logger:      logger,
	}

	// Create gRPC server with interceptors
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			s.loggingInterceptor,
			s.recoveryInterceptor,
			s.authInterceptor,
		),
	)

	grpcServer.RegisterService(&CatalogServiceDesc, &catalogHandler{catalog: catalog})
	healthpb.RegisterHealthServer(grpcServer, s.health)
	s.health.SetServingStatus(CatalogServiceName, healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	s.grpcServer = grpcServer
	return s
}

// Serve starts the gRPC server on the given listener
func (s *Server) Serve(listener net.Listener) error {
	return s.grpcServer.Serve(listener)
}

// GracefulStop marks every service NOT_SERVING, then stops the server once
// in-flight calls finish.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// loggingInterceptor logs all incoming requests
func (s *Server) loggingInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	s.logger.Info("gRPC request",
		slog.String("method", info.FullMethod),
		slog.String("code", status.Code(err).String()),
		slog.Duration("duration", time.Since(start)),
	)
	if err != nil && status.Code(err) == codes.Internal {
		s.logger.Error("gRPC request failed",
			slog.String("method", info.FullMethod),
			slog.String("error", err.Error()),
		)
	}

	return resp, err
}

// recoveryInterceptor recovers from panics
func (s *Server) recoveryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("gRPC panic recovered",
				"method", info.FullMethod,
				"panic", r,
			)
			err = status.Error(codes.Internal, "internal server error")
		}
	}()

	return handler(ctx, req)
}

// authInterceptor requires a token with the catalog read scope on every
// catalog method. Health checks are public.
func (s *Server) authInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	if isPublicMethod(info.FullMethod) {
		return handler(ctx, req)
	}

	// Extract token from metadata
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing metadata")
	}

	tokens := md.Get("authorization")
	if len(tokens) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing authorization token")
	}

	token := strings.TrimPrefix(tokens[0], "Bearer ")

	claims := s.authService.ValidateToken(token)
	if claims.IsFailed() {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	if !claims.Value().HasScope(auth.ScopeCatalogRead) {
		return nil, status.Error(codes.PermissionDenied, "token lacks scope "+auth.ScopeCatalogRead)
	}

	ctx = context.WithValue(ctx, claimsKey{}, claims.Value())

	return handler(ctx, req)
}

// claimsKey is the context key for JWT claims
type claimsKey struct{}

// ClaimsFromContext extracts JWT claims from the context
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// isPublicMethod returns true if the method doesn't require authentication
func isPublicMethod(method string) bool {
	return strings.HasPrefix(method, "/"+healthpb.Health_ServiceDesc.ServiceName+"/")
}
