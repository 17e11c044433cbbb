package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/scimaterials/internal/api"
	"github.com/dmitrijs2005/scimaterials/internal/client/models"
	"github.com/dmitrijs2005/scimaterials/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	accessToken string
	dialOptions []grpc.DialOption
	conn        *grpc.ClientConn
	client      api.FileServiceClient
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return streamer(ctx, desc, cc, method, opts...)
}

// NewFileClient connects lazily to endpointURL. Extra dial options are
// appended to the defaults.
func NewFileClient(endpointURL, accessToken string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken, dialOptions: opts}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithStreamInterceptor(s.streamAccessTokenInterceptor),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	}, s.dialOptions...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewFileServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

// Upload streams src to the server. Rejections by the server come back as
// an unsuccessful result carrying a failure code. The error is reserved for
// failures reading src.
func (s *GRPCClient) Upload(ctx context.Context, src io.Reader, req models.UploadFileRequest) (*models.UploadResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := s.client.Upload(ctx)
	if err != nil {
		return failed(err), nil
	}

	meta := &api.UploadMeta{
		FileName:    req.Name,
		ContentType: req.ContentType,
		Size:        req.Size,
		Title:       req.Title,
		Author:      req.AuthorID,
	}
	if req.Category != "" {
		meta.Categories = []string{req.Category}
	}

	// io.EOF from Send means the server already answered; CloseAndRecv
	// returns its status.
	if err := stream.Send(&api.UploadRequest{Meta: meta}); err != nil && !errors.Is(err, io.EOF) {
		return failed(err), nil
	}

	buf := make([]byte, common.ChunkSize)
send:
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if err := stream.Send(&api.UploadRequest{Chunk: buf[:n]}); err != nil {
				if errors.Is(err, io.EOF) {
					break send
				}
				return failed(err), nil
			}
		}
		switch {
		case errors.Is(rerr, io.EOF):
			break send
		case rerr != nil:
			if ctx.Err() != nil {
				return failed(ctx.Err()), nil
			}
			return nil, fmt.Errorf("read %s: %w", req.Name, rerr)
		}
	}

	info, err := stream.CloseAndRecv()
	if err != nil {
		return failed(err), nil
	}

	return &models.UploadResult{Succeeded: true, File: toFileInfo(info)}, nil
}

func (s *GRPCClient) GetFileInfoByID(ctx context.Context, id string) (*models.FileInfo, error) {
	info, err := s.client.GetFileInfoByID(ctx, &api.GetFileInfoByIDRequest{ID: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	return toFileInfo(info), nil
}

func (s *GRPCClient) GetFileInfoByHash(ctx context.Context, hash string) (*models.FileInfo, error) {
	info, err := s.client.GetFileInfoByHash(ctx, &api.GetFileInfoByHashRequest{Hash: hash})
	if err != nil {
		return nil, s.mapError(err)
	}
	return toFileInfo(info), nil
}

// Download writes the bytes of file id to w and returns how many were written.
func (s *GRPCClient) Download(ctx context.Context, id string, w io.Writer) (int64, error) {
	stream, err := s.client.Download(ctx, &api.DownloadRequest{ID: id})
	if err != nil {
		return 0, s.mapError(err)
	}

	var written int64
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, s.mapError(err)
		}
		n, err := w.Write(chunk.Data)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("write %s: %w", id, err)
		}
	}
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.Canceled:
		return fmt.Errorf("%w: %s", common.ErrCanceled, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// FailureCode turns an upload error into the code reported with a failed job.
func FailureCode(err error) string {
	if errors.Is(err, context.Canceled) {
		return models.CodeCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.CodeUnavailable
	}

	st, ok := status.FromError(err)
	if !ok {
		return models.CodeInternal
	}

	switch st.Code() {
	case codes.AlreadyExists:
		return models.CodeAlreadyExists
	case codes.NotFound:
		return models.CodeNotFound
	case codes.InvalidArgument:
		return models.CodeInvalidArgument
	case codes.Unauthenticated, codes.PermissionDenied:
		return models.CodeUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return models.CodeUnavailable
	case codes.Canceled:
		return models.CodeCanceled
	case codes.Internal:
		if strings.Contains(st.Message(), common.ErrStorage.Error()) {
			return models.CodeStorageFailure
		}
		return models.CodeInternal
	default:
		return models.CodeInternal
	}
}

func failed(err error) *models.UploadResult {
	return &models.UploadResult{Succeeded: false, Code: FailureCode(err)}
}

func toFileInfo(info *api.FileInfo) *models.FileInfo {
	return &models.FileInfo{
		ID:          info.ID,
		FileName:    info.FileName,
		ContentType: info.ContentType,
		Hash:        info.Hash,
		Size:        info.Size,
	}
}
