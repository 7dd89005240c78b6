// Package grpc runs the gRPC side port: the standard health service backed by
// a periodic database check, and the authenticated todo.v1.Todo read RPCs,
// behind logging and access interceptors.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Authenticator resolves the "authorization" metadata value to an identity.
type Authenticator interface {
	Authenticate(authorization string) (auth.Identity, error)
}

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type GRPCServer struct {
	address  string
	logger   logging.Logger
	users    UserService
	tasks    TaskService
	gate     Authenticator
	db       Pinger
	interval time.Duration
	health   *health.Server
}

func NewGRPCServer(a string, l logging.Logger, us UserService, ts TaskService, gate Authenticator, db Pinger, interval time.Duration) *GRPCServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		tasks:    ts,
		gate:     gate,
		db:       db,
		interval: interval,
		health:   health.NewServer(),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled. On shutdown every
// service is reported NOT_SERVING before in-flight calls are drained.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)
	srv.RegisterService(&todoServiceDesc, s)

	go s.watchHealth(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}

// watchHealth pings the database every interval and publishes the result as
// the overall serving status.
func (s *GRPCServer) watchHealth(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	serving := s.check(ctx, false, true)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			serving = s.check(ctx, serving, false)
		}
	}
}

func (s *GRPCServer) check(ctx context.Context, was, first bool) bool {
	pingCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	err := s.db.PingContext(pingCtx)
	if ctx.Err() != nil {
		return was
	}
	ok := err == nil

	if ok != was || first {
		st := healthpb.HealthCheckResponse_SERVING
		if !ok {
			st = healthpb.HealthCheckResponse_NOT_SERVING
			s.logger.Warn(ctx, "database unreachable", "error", err)
		}
		s.health.SetServingStatus("", st)
	}
	return ok
}
