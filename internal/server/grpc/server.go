// Package grpc exposes the file service over gRPC.
package grpc

import (
	"context"
	"io"
	"net"

	"github.com/dmitrijs2005/scimaterials/internal/api"
	"github.com/dmitrijs2005/scimaterials/internal/logging"
	"github.com/dmitrijs2005/scimaterials/internal/server/models"
	"google.golang.org/grpc"
)

// FileService is the business layer the handlers delegate to.
type FileService interface {
	GetFileInfoByID(ctx context.Context, id string) (*models.FileRecord, error)
	GetFileInfoByHash(ctx context.Context, hash string) (*models.FileRecord, error)
	GetFileStream(ctx context.Context, id string) (io.ReadCloser, error)
	Upload(ctx context.Context, src io.Reader, fileName, contentType string) (*models.FileRecord, error)
}

type GRPCServer struct {
	api.UnimplementedFileServiceServer
	address   string
	files     FileService
	logger    logging.Logger
	jwtSecret []byte
	transfers chan struct{}
}

// NewGRPCServer builds a server for address. An empty secretKey disables
// token checks, maxTransfers <= 0 disables the transfer limit.
func NewGRPCServer(address string, l logging.Logger, files FileService, secretKey string, maxTransfers int) *GRPCServer {
	s := &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		files:     files,
		jwtSecret: []byte(secretKey),
	}
	if maxTransfers > 0 {
		s.transfers = make(chan struct{}, maxTransfers)
	}
	return s
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor, s.transferLimitInterceptor),
	)
	api.RegisterFileServiceServer(srv, s)

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-stopped:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
