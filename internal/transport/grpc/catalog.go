package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CatalogServiceName is the fully qualified gRPC service name.
const CatalogServiceName = "mjcatalog.v1.Catalog"

// CatalogServer is the read-only catalog API. Records travel as
// google.protobuf.Struct with the same field names as the HTTP API.
type CatalogServer interface {
	ListVersions(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetVersion(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListStyles(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetStyle(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListProperties(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
}

// CatalogServiceDesc describes CatalogServer to grpc.Server.RegisterService.
var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ListVersions", newEmpty, CatalogServer.ListVersions),
		unaryMethod("GetVersion", newString, CatalogServer.GetVersion),
		unaryMethod("ListStyles", newEmpty, CatalogServer.ListStyles),
		unaryMethod("GetStyle", newString, CatalogServer.GetStyle),
		unaryMethod("ListProperties", newString, CatalogServer.ListProperties),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mjcatalog/v1/catalog.proto",
}

func newEmpty() *emptypb.Empty { return &emptypb.Empty{} }
func newString() *wrapperspb.StringValue { return &wrapperspb.StringValue{} }

func fullMethod(name string) string {
	return "/" + CatalogServiceName + "/" + name
}

// unaryMethod builds the method descriptor protoc-gen-go-grpc would emit.
func unaryMethod[Req proto.Message, Resp proto.Message](
	name string,
	newReq func() Req,
	call func(CatalogServer, context.Context, Req) (Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CatalogServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CatalogServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// CatalogClient calls CatalogServer over a client connection.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func invoke[Resp proto.Message](ctx context.Context, cc grpc.ClientConnInterface, method string, in proto.Message, out Resp, opts []grpc.CallOption) (Resp, error) {
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		var zero Resp
		return zero, err
	}
	return out, nil
}

func (c *CatalogClient) ListVersions(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke(ctx, c.cc, "ListVersions", &emptypb.Empty{}, &structpb.ListValue{}, opts)
}

func (c *CatalogClient) GetVersion(ctx context.Context, version string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, "GetVersion", wrapperspb.String(version), &structpb.Struct{}, opts)
}

func (c *CatalogClient) ListStyles(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke(ctx, c.cc, "ListStyles", &emptypb.Empty{}, &structpb.ListValue{}, opts)
}

func (c *CatalogClient) GetStyle(ctx context.Context, name string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, "GetStyle", wrapperspb.String(name), &structpb.Struct{}, opts)
}

func (c *CatalogClient) ListProperties(ctx context.Context, version string, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	return invoke(ctx, c.cc, "ListProperties", wrapperspb.String(version), &structpb.ListValue{}, opts)
}
