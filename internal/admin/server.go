// Package admin implements the operational control plane described in
// SPEC_FULL.md §10: a gRPC service exposing read-only router introspection
// (ListCapabilities, Stats) and a Revoke RPC. It has no bearing on core
// routing semantics and is safe to leave disabled.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"

	"github.com/quietlane/capwire/internal/capmsg"
	"github.com/quietlane/capwire/internal/router"
)

// RouterView is the minimal read/write surface the admin service needs
// from a *router.Router. Depending on the interface rather than the
// concrete type keeps this package's tests free of a real transport.
type RouterView interface {
	Capabilities() []capmsg.ActorAddress
	PeerCount() int
	Revoke(addr capmsg.ActorAddress)
}

var _ RouterView = (*router.Router)(nil)

// Config collects the admin server's tunables. Defaults mirror
// internal/api/grpc's keepalive conventions.
type Config struct {
	ListenAddr string

	ServerPingTime    time.Duration
	ServerPingTimeout time.Duration
	ClientPingMinWait time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:        "localhost:10109",
		ServerPingTime:    5 * time.Minute,
		ServerPingTimeout: 1 * time.Minute,
		ClientPingMinWait: 5 * time.Second,
		Logger:            slog.New(slog.DiscardHandler),
	}
}

// GRPCServer implements Server over a RouterView and serves it with a
// hand-authored ServiceDesc (see service.go) forcing the JSON codec (see
// codec.go), so it runs without any protoc-generated code.
type GRPCServer struct {
	cfg    Config
	router RouterView
	start  time.Time

	grpcServer *grpc.Server
	listener   net.Listener

	mu      sync.Mutex
	started bool
}

// NewGRPCServer wires an admin service over r.
func NewGRPCServer(cfg Config, r RouterView) *GRPCServer {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	return &GRPCServer{
		cfg:    cfg,
		router: r,
		start:  time.Now(),
	}
}

// Start binds the listener and begins serving in the background.
func (s *GRPCServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("admin server already started")
	}

	lis, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = lis

	s.grpcServer = grpc.NewServer(
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    s.cfg.ServerPingTime,
			Timeout: s.cfg.ServerPingTimeout,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             s.cfg.ClientPingMinWait,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(s.loggingInterceptor),
	)
	s.grpcServer.RegisterService(&ServiceDesc, Server(s))

	go func() {
		if err := s.grpcServer.Serve(lis); err != nil {
			s.cfg.Logger.Debug("admin grpc server stopped serving", "error", err)
		}
	}()

	s.started = true
	return nil
}

// Stop gracefully stops the admin server. Stop on a never-started server
// is a no-op.
func (s *GRPCServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.grpcServer.GracefulStop()
	s.started = false
}

// Addr returns the dial string the admin server is listening on, or ""
// if it has not been started.
func (s *GRPCServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

func (s *GRPCServer) loggingInterceptor(
	ctx context.Context, req any, info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {

	resp, err := handler(ctx, req)
	if err != nil {
		s.cfg.Logger.WarnContext(ctx, "admin rpc failed",
			"method", info.FullMethod, "error", err)
	} else {
		s.cfg.Logger.DebugContext(ctx, "admin rpc completed",
			"method", info.FullMethod)
	}

	return resp, err
}

// ListCapabilities reports every capability currently attached to the
// router.
func (s *GRPCServer) ListCapabilities(
	_ context.Context, _ *ListCapabilitiesRequest,
) (*ListCapabilitiesResponse, error) {

	addrs := s.router.Capabilities()
	out := make([]CapabilityInfo, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, CapabilityInfo{
			Tag:    a.Tag,
			PeerID: a.PeerID.String(),
			Host:   a.Host,
		})
	}

	return &ListCapabilitiesResponse{Capabilities: out}, nil
}

// Stats reports router-level counters.
func (s *GRPCServer) Stats(
	_ context.Context, _ *StatsRequest,
) (*StatsResponse, error) {

	return &StatsResponse{
		PeerCount:     s.router.PeerCount(),
		UptimeSeconds: int64(time.Since(s.start).Seconds()),
	}, nil
}

// Revoke parses req.Address and revokes it if attached.
func (s *GRPCServer) Revoke(
	_ context.Context, req *RevokeRequest,
) (*RevokeResponse, error) {

	addr, err := capmsg.ParseActorAddress(req.Address)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument,
			"parsing address: %v", err)
	}

	var attached bool
	for _, a := range s.router.Capabilities() {
		if a.Equal(addr) {
			attached = true
			break
		}
	}

	s.router.Revoke(addr)

	return &RevokeResponse{Revoked: attached}, nil
}
