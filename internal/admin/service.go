package admin

import (
	"context"

	"google.golang.org/grpc"
)

// CapabilityInfo is the wire shape of one attached peer, as returned by
// ListCapabilities.
type CapabilityInfo struct {
	Tag    string `json:"tag"`
	PeerID string `json:"peer_id"`
	Host   string `json:"host"`
}

// ListCapabilitiesRequest takes no arguments; every attached capability
// is always returned.
type ListCapabilitiesRequest struct{}

// ListCapabilitiesResponse lists every capability currently attached to
// the router.
type ListCapabilitiesResponse struct {
	Capabilities []CapabilityInfo `json:"capabilities"`
}

// StatsRequest takes no arguments.
type StatsRequest struct{}

// StatsResponse reports router-level counters.
type StatsResponse struct {
	PeerCount     int   `json:"peer_count"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// RevokeRequest names the address to revoke by its canonical textual
// form, e.g. "tcp:<hex-peer-id>@host:port".
type RevokeRequest struct {
	Address string `json:"address"`
}

// RevokeResponse reports whether the named address was attached at the
// time of the call.
type RevokeResponse struct {
	Revoked bool `json:"revoked"`
}

// Server is the RPC surface the admin plane exposes. It is intentionally
// narrow: read-only introspection plus one mutating call, mirroring
// spec.md's own minimal external interface.
type Server interface {
	ListCapabilities(context.Context, *ListCapabilitiesRequest) (*ListCapabilitiesResponse, error)
	Stats(context.Context, *StatsRequest) (*StatsResponse, error)
	Revoke(context.Context, *RevokeRequest) (*RevokeResponse, error)
}

// serviceName is the fully-qualified gRPC service name carried on the
// wire, standing in for the package.Service name a .proto file would
// normally assign.
const serviceName = "capwire.admin.Admin"

// ServiceDesc describes the admin service by hand, the way
// protoc-gen-go-grpc would generate it from a .proto file. Hand-authoring
// it is what lets this service run without any generated code: Methods
// wires each RPC name to a handler that decodes the request with the
// codec the server was configured with (jsonCodec, see codec.go) and
// dispatches to the Server implementation.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListCapabilities",
			Handler:    listCapabilitiesHandler,
		},
		{
			MethodName: "Stats",
			Handler:    statsHandler,
		},
		{
			MethodName: "Revoke",
			Handler:    revokeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/admin/service.go",
}

func listCapabilitiesHandler(
	srv any, ctx context.Context, dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {

	in := new(ListCapabilitiesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(Server).ListCapabilities(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/ListCapabilities",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).ListCapabilities(ctx, req.(*ListCapabilitiesRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func statsHandler(
	srv any, ctx context.Context, dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {

	in := new(StatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(Server).Stats(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/Stats",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).Stats(ctx, req.(*StatsRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func revokeHandler(
	srv any, ctx context.Context, dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {

	in := new(RevokeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(Server).Revoke(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/Revoke",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).Revoke(ctx, req.(*RevokeRequest))
	}

	return interceptor(ctx, in, info, handler)
}
