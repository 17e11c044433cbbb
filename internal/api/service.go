package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	FileService_Ping_FullMethodName              = "/scimaterials.files.FileService/Ping"
	FileService_GetFileInfoByID_FullMethodName   = "/scimaterials.files.FileService/GetFileInfoByID"
	FileService_GetFileInfoByHash_FullMethodName = "/scimaterials.files.FileService/GetFileInfoByHash"
	FileService_Upload_FullMethodName            = "/scimaterials.files.FileService/Upload"
	FileService_Download_FullMethodName          = "/scimaterials.files.FileService/Download"
)

// FileServiceClient is the client API for FileService.
type FileServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	GetFileInfoByID(ctx context.Context, in *GetFileInfoByIDRequest, opts ...grpc.CallOption) (*FileInfo, error)
	GetFileInfoByHash(ctx context.Context, in *GetFileInfoByHashRequest, opts ...grpc.CallOption) (*FileInfo, error)
	Upload(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[UploadRequest, FileInfo], error)
	Download(ctx context.Context, in *DownloadRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[DownloadChunk], error)
}

type fileServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewFileServiceClient(cc grpc.ClientConnInterface) FileServiceClient {
	return &fileServiceClient{cc}
}

func (c *fileServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.cc.Invoke(ctx, FileService_Ping_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fileServiceClient) GetFileInfoByID(ctx context.Context, in *GetFileInfoByIDRequest, opts ...grpc.CallOption) (*FileInfo, error) {
	out := new(FileInfo)
	if err := c.cc.Invoke(ctx, FileService_GetFileInfoByID_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fileServiceClient) GetFileInfoByHash(ctx context.Context, in *GetFileInfoByHashRequest, opts ...grpc.CallOption) (*FileInfo, error) {
	out := new(FileInfo)
	if err := c.cc.Invoke(ctx, FileService_GetFileInfoByHash_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *fileServiceClient) Upload(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[UploadRequest, FileInfo], error) {
	stream, err := c.cc.NewStream(ctx, &FileService_ServiceDesc.Streams[0], FileService_Upload_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[UploadRequest, FileInfo]{ClientStream: stream}, nil
}

func (c *fileServiceClient) Download(ctx context.Context, in *DownloadRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[DownloadChunk], error) {
	stream, err := c.cc.NewStream(ctx, &FileService_ServiceDesc.Streams[1], FileService_Download_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[DownloadRequest, DownloadChunk]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// FileServiceServer is the server API for FileService. Implementations must
// embed UnimplementedFileServiceServer.
type FileServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	GetFileInfoByID(context.Context, *GetFileInfoByIDRequest) (*FileInfo, error)
	GetFileInfoByHash(context.Context, *GetFileInfoByHashRequest) (*FileInfo, error)
	Upload(grpc.ClientStreamingServer[UploadRequest, FileInfo]) error
	Download(*DownloadRequest, grpc.ServerStreamingServer[DownloadChunk]) error
	mustEmbedUnimplementedFileServiceServer()
}

type UnimplementedFileServiceServer struct{}

func (UnimplementedFileServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedFileServiceServer) GetFileInfoByID(context.Context, *GetFileInfoByIDRequest) (*FileInfo, error) {
	return nil, status.Error(codes.Unimplemented, "method GetFileInfoByID not implemented")
}
func (UnimplementedFileServiceServer) GetFileInfoByHash(context.Context, *GetFileInfoByHashRequest) (*FileInfo, error) {
	return nil, status.Error(codes.Unimplemented, "method GetFileInfoByHash not implemented")
}
func (UnimplementedFileServiceServer) Upload(grpc.ClientStreamingServer[UploadRequest, FileInfo]) error {
	return status.Error(codes.Unimplemented, "method Upload not implemented")
}
func (UnimplementedFileServiceServer) Download(*DownloadRequest, grpc.ServerStreamingServer[DownloadChunk]) error {
	return status.Error(codes.Unimplemented, "method Download not implemented")
}
func (UnimplementedFileServiceServer) mustEmbedUnimplementedFileServiceServer() {}

func RegisterFileServiceServer(s grpc.ServiceRegistrar, srv FileServiceServer) {
	s.RegisterService(&FileService_ServiceDesc, srv)
}

func _FileService_Ping_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FileServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FileService_Ping_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FileServiceServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FileService_GetFileInfoByID_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetFileInfoByIDRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FileServiceServer).GetFileInfoByID(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FileService_GetFileInfoByID_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FileServiceServer).GetFileInfoByID(ctx, req.(*GetFileInfoByIDRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FileService_GetFileInfoByHash_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetFileInfoByHashRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FileServiceServer).GetFileInfoByHash(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FileService_GetFileInfoByHash_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FileServiceServer).GetFileInfoByHash(ctx, req.(*GetFileInfoByHashRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FileService_Upload_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(FileServiceServer).Upload(&grpc.GenericServerStream[UploadRequest, FileInfo]{ServerStream: stream})
}

func _FileService_Download_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(DownloadRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(FileServiceServer).Download(m, &grpc.GenericServerStream[DownloadRequest, DownloadChunk]{ServerStream: stream})
}

// FileService_ServiceDesc is the grpc.ServiceDesc for FileService.
var FileService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "scimaterials.files.FileService",
	HandlerType: (*FileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: _FileService_Ping_Handler},
		{MethodName: "GetFileInfoByID", Handler: _FileService_GetFileInfoByID_Handler},
		{MethodName: "GetFileInfoByHash", Handler: _FileService_GetFileInfoByHash_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Upload", Handler: _FileService_Upload_Handler, ClientStreams: true},
		{StreamName: "Download", Handler: _FileService_Download_Handler, ServerStreams: true},
	},
	Metadata: "scimaterials/files",
}
