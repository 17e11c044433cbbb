package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/scimaterials/internal/api"
	"github.com/dmitrijs2005/scimaterials/internal/common"
	"github.com/dmitrijs2005/scimaterials/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const subjectKey ctxKey = "subject"

// SubjectFromContext returns the token subject of an authenticated call.
func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey).(string)
	return sub, ok
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	ctx, err := s.authenticate(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

func (s *GRPCServer) streamAccessTokenInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authenticate(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &contextStream{ServerStream: ss, ctx: ctx})
}

// transferLimitInterceptor bounds the number of concurrent Upload and
// Download streams. Excess streams wait for a slot or their context.
func (s *GRPCServer) transferLimitInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if s.transfers == nil {
		return handler(srv, ss)
	}

	select {
	case s.transfers <- struct{}{}:
	case <-ss.Context().Done():
		return status.FromContextError(ss.Context().Err()).Err()
	}
	defer func() { <-s.transfers }()

	return handler(srv, ss)
}

func (s *GRPCServer) authenticate(ctx context.Context, method string) (context.Context, error) {
	if len(s.jwtSecret) == 0 || method == api.FileService_Ping_FullMethodName {
		return ctx, nil
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	sub, err := auth.SubjectFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, "token expired")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return context.WithValue(ctx, subjectKey, sub), nil
}

type contextStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (c *contextStream) Context() context.Context {
	return c.ctx
}
