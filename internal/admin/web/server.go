// Package web implements the admin dashboard: a small HTTP server that
// renders router status as Markdown turned to HTML and pushes live
// capability updates over a WebSocket, grounded on internal/web's
// markdownToHTML helper and Hub/WSClient pattern.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/quietlane/capwire/internal/capmsg"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Source is the read-only router view the dashboard renders. It is
// satisfied structurally by *router.Router and by admin.RouterView.
type Source interface {
	Capabilities() []capmsg.ActorAddress
	PeerCount() int
}

// DefaultPollInterval is how often the hub polls Source for a fresh
// snapshot to push to connected dashboard clients.
const DefaultPollInterval = 3 * time.Second

// Config collects the dashboard's tunables.
type Config struct {
	Addr string

	// About is rendered as Markdown at the top of the dashboard page.
	About string

	PollInterval time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8090",
		About:        "Live view of the router's attached **capabilities**.",
		PollInterval: DefaultPollInterval,
		Logger:       slog.New(slog.DiscardHandler),
	}
}

// Server is the admin dashboard's HTTP server.
type Server struct {
	cfg      Config
	source   Source
	tmpl     *template.Template
	mux      *http.ServeMux
	hub      *hub
	upgrader websocket.Upgrader

	mu      sync.Mutex
	httpSrv *http.Server
}

// NewServer parses the embedded dashboard template and wires routes for
// source.
func NewServer(cfg Config, source Source) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	funcMap := template.FuncMap{"markdown": markdownToHTML}
	tmpl, err := template.New("dashboard.html").Funcs(funcMap).
		ParseFS(templatesFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("parsing dashboard template: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		source: source,
		tmpl:   tmpl,
		mux:    http.NewServeMux(),
		hub:    newHub(source, cfg.Logger, cfg.PollInterval),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/ws", s.handleWebSocket)

	return s, nil
}

// dashboardView is the data handed to templates/dashboard.html.
type dashboardView struct {
	About        string
	PeerCount    int
	Capabilities []capabilityView
}

type capabilityView struct {
	Tag    string
	PeerID string
	Host   string
}

func capabilitySnapshot(addrs []capmsg.ActorAddress) []capabilityView {
	out := make([]capabilityView, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, capabilityView{
			Tag: a.Tag, PeerID: a.PeerID.String(), Host: a.Host,
		})
	}

	return out
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := dashboardView{
		About:        s.cfg.About,
		PeerCount:    s.source.PeerCount(),
		Capabilities: capabilitySnapshot(s.source.Capabilities()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, view); err != nil {
		s.cfg.Logger.ErrorContext(r.Context(), "rendering dashboard failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.cfg.Logger.DebugContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := newWSClient(s.hub, conn, s.cfg.Logger)
	s.hub.register <- client

	client.Send(&wsMessage{Type: wsMsgTypeConnected})

	go client.writePump()
	go client.readPump()
}

// Start runs the hub and begins serving HTTP. Start blocks until Shutdown
// is called or ListenAndServe otherwise returns; callers run it in a
// goroutine.
func (s *Server) Start() error {
	go s.hub.run()

	s.mu.Lock()
	s.httpSrv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	srv := s.httpSrv
	s.mu.Unlock()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

// Shutdown gracefully stops the HTTP server and the hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.stop()

	s.mu.Lock()
	srv := s.httpSrv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}

// markdownToHTML converts Markdown to HTML using goldmark, matching
// internal/web's own helper.
func markdownToHTML(s string) template.HTML {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}

	return template.HTML(buf.String())
}
