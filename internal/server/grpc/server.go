// Package grpc exposes consent processing and restriction administration to
// internal callers (the parent portal backend and operator tooling).
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/ageguard/internal/logging"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"google.golang.org/grpc"
)

type ConsentProcessor interface {
	Process(ctx context.Context, token string, agrees bool, overrides *models.RestrictionOverrides) (*models.ConsentOutcome, error)
}

type RestrictionStore interface {
	Get(ctx context.Context, userID string) (*models.RestrictionBundle, error)
	AccountStatus(ctx context.Context, userID string) (*models.AccountStatus, error)
	Override(ctx context.Context, userID string, b *models.RestrictionBundle) (*models.RestrictionBundle, error)
}

type GRPCServer struct {
	address      string
	consent      ConsentProcessor
	restrictions RestrictionStore
	logger       logging.Logger
	jwtSecret    []byte
}

func NewGRPCServer(a string, l logging.Logger, consent ConsentProcessor, restrictions RestrictionStore, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:      a,
		logger:       l.With("module", "grpc_server"),
		consent:      consent,
		restrictions: restrictions,
		jwtSecret:    []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(&ComplianceServiceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
