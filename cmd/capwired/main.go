// Command capwired hosts a Router over one transport, an Authorizer actor
// backed by a SQLite capability store, a handful of demo actors attached
// to the router for exercising the wire protocol end to end, and an
// optional admin gRPC service plus web dashboard for introspecting the
// router's live capability table.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btcsuite/btclog/v2"

	"github.com/quietlane/capwire/internal/admin"
	adminweb "github.com/quietlane/capwire/internal/admin/web"
	"github.com/quietlane/capwire/internal/authorizer"
	authstore "github.com/quietlane/capwire/internal/authorizer/store"
	"github.com/quietlane/capwire/internal/bridge"
	"github.com/quietlane/capwire/internal/build"
	"github.com/quietlane/capwire/internal/capmsg"
	"github.com/quietlane/capwire/internal/codec"
	"github.com/quietlane/capwire/internal/demo"
	"github.com/quietlane/capwire/internal/router"
	"github.com/quietlane/capwire/internal/transport"
)

func main() {
	var (
		transportKind  = flag.String("transport", "tcp", "Transport kind: tcp or unix")
		listenAddr     = flag.String("listen", "127.0.0.1:0", "Listen address (tcp host:port, or unix socket path)")
		msgReadTimeout = flag.Duration("msg-read-timeout", router.DefaultMsgReadTimeout, "Per-connection request read timeout")
		maxMsgSize     = flag.Uint("max-msg-size", uint(0), "Maximum request body size in bytes (0 selects the wire default)")
		dbPath         = flag.String("db", "~/.capwire/capwire.db", "Path to the authorizer's SQLite capability database")
		demoFactor     = flag.Int64("demo-factor", 7, "Multiplier factor for the demo Multiplier actor")
		allowMut       = flag.Bool("demo-allow-mut", false, "Allow TaskMut against the demo EchoMut actor")
		logDir         = flag.String("log-dir", "~/.capwire/logs", "Directory for log files (empty disables file logging)")
		maxLogFiles    = flag.Int("max-log-files", build.DefaultMaxLogFiles, "Maximum number of rotated log files to keep")
		maxLogFileSize = flag.Int("max-log-file-size", build.DefaultMaxLogFileSize, "Maximum log file size in MB before rotation")
		adminAddr      = flag.String("admin-addr", "127.0.0.1:10109", "Admin gRPC listen address (empty disables the admin plane)")
		adminWebAddr   = flag.String("admin-web-addr", "127.0.0.1:8090", "Admin dashboard listen address (empty disables the dashboard)")
	)
	flag.Parse()

	expandHome := func(path string) string {
		expanded := os.ExpandEnv(path)
		if expanded == path && len(path) > 0 && path[0] == '~' {
			home, err := os.UserHomeDir()
			if err != nil {
				log.Fatalf("failed to get home directory: %v", err)
			}
			expanded = home + path[1:]
		}
		return expanded
	}

	dbPathExpanded := expandHome(*dbPath)
	logDirExpanded := expandHome(*logDir)

	var logRotator *build.RotatingLogWriter
	if logDirExpanded != "" {
		logRotator = build.NewRotatingLogWriter()
		err := logRotator.InitLogRotator(&build.LogRotatorConfig{
			LogDir:         logDirExpanded,
			MaxLogFiles:    *maxLogFiles,
			MaxLogFileSize: *maxLogFileSize,
			Filename:       "capwired.log",
		})
		if err != nil {
			log.Printf("failed to init log rotator: %v (continuing without file logging)", err)
			logRotator = nil
		} else {
			defer logRotator.Close()

			multiWriter := io.MultiWriter(os.Stderr, logRotator)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags)
		}
	}

	var handlers []btclog.Handler
	handlers = append(handlers, btclog.NewDefaultHandler(os.Stderr))
	if logRotator != nil {
		handlers = append(handlers, btclog.NewDefaultHandler(logRotator))
	}
	handlerSet := build.NewHandlerSet(handlers...)

	routerLog := build.NewSubLogger(handlerSet, "RTR ")
	bridgeLog := build.NewSubLogger(handlerSet, "BRDG")
	authLog := build.NewSubLogger(handlerSet, "AUTH")

	log.Printf("capwired starting: transport=%s listen=%s db=%s",
		*transportKind, *listenAddr, dbPathExpanded)

	var tr transport.Transport
	switch *transportKind {
	case "tcp":
		tr = transport.NewTCP(*listenAddr)
	case "unix":
		tr = transport.NewUnix(*listenAddr)
	default:
		log.Fatalf("unknown transport kind %q (want tcp or unix)", *transportKind)
	}

	r := router.New(
		tr,
		router.WithMsgReadTimeout(*msgReadTimeout),
		router.WithMaxMsgSize(uint32(*maxMsgSize)),
		router.WithLogger(routerLog),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := r.Start(ctx); err != nil {
		log.Fatalf("failed to start router: %v", err)
	}

	log.Printf("router listening on %s", r.HostAddress())

	authDB, err := authstore.New(&authstore.Config{
		DatabaseFileName: dbPathExpanded,
	}, authLog)
	if err != nil {
		log.Fatalf("failed to open authorizer database: %v", err)
	}
	defer authDB.Close()

	resolver := authorizer.ResolverFunc[string](
		func(ctx context.Context, peer capmsg.PeerID, _ *capmsg.ActorAddress, scope string) authorizer.Decision {
			known, err := authDB.HasPeer(ctx, peer)
			if err != nil {
				authLog.Error("resolve: store lookup failed", "error", err)
				return authorizer.Denied
			}
			if known {
				return authorizer.Accepted
			}

			authLog.Info("resolve: unknown peer, accepting by default policy",
				"peer_id", peer.String(), "scope", scope)

			return authorizer.Accepted
		},
	)

	auth, err := authorizer.New[string](authDB, resolver)
	if err != nil {
		log.Fatalf("failed to start authorizer: %v", err)
	}
	defer auth.Stop(context.Background())

	pub, _, err := auth.FetchKeypair(context.Background())
	if err != nil {
		log.Fatalf("failed to fetch authorizer keypair: %v", err)
	}
	log.Printf("authorizer identity: %x", pub)

	multHandle, err := demo.NewMultiplierHandle("demo-multiplier", codec.IntValue(*demoFactor))
	if err != nil {
		log.Fatalf("failed to spawn demo multiplier: %v", err)
	}
	defer multHandle.Stop(context.Background())

	multBridge := bridge.New[codec.IntValue, codec.IntValue, codec.StringValue](
		multHandle, codec.NewProtoCodec())
	multBridge.SetLogger(bridgeLog)
	multBridge.SetAuthorizer(auth)

	multAddr, err := r.Attach(multBridge)
	if err != nil {
		log.Fatalf("failed to attach demo multiplier: %v", err)
	}
	log.Printf("demo multiplier attached at %s", multAddr.Format())

	echoHandle, err := demo.NewEchoMutHandle("demo-echo")
	if err != nil {
		log.Fatalf("failed to spawn demo echo: %v", err)
	}
	defer echoHandle.Stop(context.Background())

	echoBridge := bridge.New[codec.StringValue, codec.StringValue, codec.StringValue](
		echoHandle, codec.NewProtoCodec())
	echoBridge.SetLogger(bridgeLog)
	echoBridge.SetAllowMut(*allowMut)
	echoBridge.SetAuthorizer(auth)

	echoAddr, err := r.Attach(echoBridge)
	if err != nil {
		log.Fatalf("failed to attach demo echo: %v", err)
	}
	log.Printf("demo echo attached at %s (allow_mut=%v)", echoAddr.Format(), *allowMut)

	adminLog := build.NewSubLogger(handlerSet, "ADMN")

	var adminSrv *admin.GRPCServer
	if *adminAddr != "" {
		adminCfg := admin.DefaultConfig()
		adminCfg.ListenAddr = *adminAddr
		adminCfg.Logger = adminLog

		adminSrv = admin.NewGRPCServer(adminCfg, r)
		if err := adminSrv.Start(); err != nil {
			log.Fatalf("failed to start admin server: %v", err)
		}
		defer adminSrv.Stop()
		log.Printf("admin gRPC listening on %s", adminSrv.Addr())
	}

	var dashboard *adminweb.Server
	if *adminWebAddr != "" {
		dashCfg := adminweb.DefaultConfig()
		dashCfg.Addr = *adminWebAddr
		dashCfg.Logger = adminLog

		dashboard, err = adminweb.NewServer(dashCfg, r)
		if err != nil {
			log.Fatalf("failed to build admin dashboard: %v", err)
		}

		go func() {
			if err := dashboard.Start(); err != nil {
				log.Printf("admin dashboard stopped: %v", err)
			}
		}()
		log.Printf("admin dashboard listening on %s", *adminWebAddr)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	log.Printf("received %v, shutting down", sig)
	cancel()

	if dashboard != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := dashboard.Shutdown(shutdownCtx); err != nil {
			log.Printf("admin dashboard shutdown error: %v", err)
		}
		shutdownCancel()
	}

	if err := r.Stop(); err != nil {
		log.Printf("router shutdown error: %v", err)
	}
	fmt.Fprintln(os.Stderr, "capwired stopped")
}
