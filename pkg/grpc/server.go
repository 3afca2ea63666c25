package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/scienceol/chemtrack/pkg/middleware/logger"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/utils"
	readiness "github.com/scienceol/chemtrack/pkg/web/views/health"
	ggrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const probeInterval = 10 * time.Second

// NewServer serves grpc.health.v1 and reflection on port. The health status
// follows the readiness checks until ctx is done.
func NewServer(ctx context.Context, port int, provider repo.IdentityProvider, users repo.UserRepo) (*ggrpc.Server, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	a := &authenticator{provider: provider, users: users}
	s := ggrpc.NewServer(
		ggrpc.UnaryInterceptor(a.unary()),
		ggrpc.StreamInterceptor(a.stream()),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	utils.SafelyGo(func() { probe(ctx, hs) }, func(err error) {
		logger.Errorf(ctx, "gRPC health probe err: %+v", err)
	})
	utils.SafelyGo(func() {
		logger.Infof(ctx, "gRPC server starting on port %d", port)
		if err := s.Serve(lis); err != nil {
			logger.Errorf(ctx, "gRPC server error: %v", err)
		}
	}, func(err error) {
		logger.Errorf(ctx, "run gRPC server err: %+v", err)
	})
	return s, nil
}

func probe(ctx context.Context, hs *health.Server) {
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()
	for {
		servingStatus := healthpb.HealthCheckResponse_SERVING
		if _, ok := readiness.Checks(ctx); !ok {
			servingStatus = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", servingStatus)

		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
		}
	}
}
