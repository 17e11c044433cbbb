package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/scimaterials/internal/api"
	"github.com/dmitrijs2005/scimaterials/internal/common"
	"github.com/dmitrijs2005/scimaterials/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) GetFileInfoByID(ctx context.Context, req *api.GetFileInfoByIDRequest) (*api.FileInfo, error) {
	rec, err := s.files.GetFileInfoByID(ctx, req.ID)
	if err != nil {
		return nil, s.statusFromError(ctx, err)
	}
	return toFileInfo(rec), nil
}

func (s *GRPCServer) GetFileInfoByHash(ctx context.Context, req *api.GetFileInfoByHashRequest) (*api.FileInfo, error) {
	rec, err := s.files.GetFileInfoByHash(ctx, req.Hash)
	if err != nil {
		return nil, s.statusFromError(ctx, err)
	}
	return toFileInfo(rec), nil
}

func (s *GRPCServer) Upload(stream grpc.ClientStreamingServer[api.UploadRequest, api.FileInfo]) error {
	ctx := stream.Context()

	first, err := stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return status.Error(codes.InvalidArgument, "empty upload stream")
		}
		return err
	}
	if first.Meta == nil {
		return status.Error(codes.InvalidArgument, "first upload message must carry metadata")
	}

	meta := first.Meta
	s.logger.Info(ctx, "Upload request",
		"file_name", meta.FileName, "size", meta.Size, "title", meta.Title,
		"author", meta.Author, "categories", meta.Categories)

	rec, err := s.files.Upload(ctx, &chunkReader{stream: stream, pending: first.Chunk}, meta.FileName, meta.ContentType)
	if err != nil {
		return s.statusFromError(ctx, err)
	}

	if meta.Size > 0 && meta.Size != rec.Size {
		s.logger.Warn(ctx, "declared size differs from received bytes", "id", rec.ID, "declared", meta.Size, "received", rec.Size)
	}

	return stream.SendAndClose(toFileInfo(rec))
}

func (s *GRPCServer) Download(req *api.DownloadRequest, stream grpc.ServerStreamingServer[api.DownloadChunk]) error {
	ctx := stream.Context()

	rc, err := s.files.GetFileStream(ctx, req.ID)
	if err != nil {
		return s.statusFromError(ctx, err)
	}
	defer rc.Close()

	buf := make([]byte, common.ChunkSize)
	for {
		n, err := rc.Read(buf)
		if n > 0 {
			if sendErr := stream.Send(&api.DownloadChunk{Data: buf[:n]}); sendErr != nil {
				return sendErr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return s.statusFromError(ctx, fmt.Errorf("%w: read %s: %w", common.ErrStorage, req.ID, err))
		}
	}
}

// chunkReader turns the chunk messages of an upload stream into an io.Reader.
type chunkReader struct {
	stream  grpc.ClientStreamingServer[api.UploadRequest, api.FileInfo]
	pending []byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		msg, err := r.stream.Recv()
		if err != nil {
			return 0, err
		}
		if msg.Meta != nil {
			return 0, fmt.Errorf("%w: metadata repeated inside upload stream", common.ErrValidation)
		}
		r.pending = msg.Chunk
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (s *GRPCServer) statusFromError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrCanceled), errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, common.ErrStorage):
		s.logger.Error(ctx, err.Error())
		return status.Error(codes.Internal, "storage failure")
	default:
		s.logger.Error(ctx, err.Error())
		return status.Error(codes.Internal, "internal error")
	}
}

func toFileInfo(rec *models.FileRecord) *api.FileInfo {
	return &api.FileInfo{
		ID:          rec.ID,
		FileName:    rec.FileName,
		ContentType: rec.ContentType,
		Hash:        rec.Hash,
		Size:        rec.Size,
	}
}
