package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"taskline/auth"
	"taskline/contract"
	"taskline/observability"
	"taskline/services"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// Server owns the websocket endpoint. Authentication is out-of-band: the
// upgrade request carries a session cookie and every subsequent event
// re-verifies it; nothing is trusted from the handshake itself.
type Server struct {
	log            *slog.Logger
	addr           string
	allowedOrigins []string
	bufferSize     int
	maxPayload     int64

	authenticator *auth.SessionAuthenticator
	service       services.IRealtimeService
	registry      contract.IRegistry
	monitoring    *observability.MonitoringManager

	httpServer *http.Server
	upgrader   websocket.Upgrader
}

func NewServer(log *slog.Logger, host string, port int, allowedOrigins []string,
	bufferSize int, maxPayload int64, authenticator *auth.SessionAuthenticator,
	service services.IRealtimeService, registry contract.IRegistry,
	monitoring *observability.MonitoringManager) *Server {
	s := &Server{
		log:            log,
		addr:           fmt.Sprintf("%s:%d", host, port),
		allowedOrigins: allowedOrigins,
		bufferSize:     bufferSize,
		maxPayload:     maxPayload,
		authenticator:  authenticator,
		service:        service,
		registry:       registry,
		monitoring:     monitoring,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// checkOrigin enforces the configured cross-origin allow-list. Requests
// without an Origin header (non-browser clients) pass.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return lo.Contains(s.allowedOrigins, origin)
}

// Run serves the websocket endpoint until ctx is done, then shuts the
// http server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.handleWebsocket(ctx, w, r)
	})

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("Starting websocket gateway", "address", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("gateway server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// handleWebsocket upgrades the connection and runs the client's pumps.
// It blocks until the client disconnects. Cleanup unbinds the registry
// entry, guarded by handle identity so a newer login is untouched.
func (s *Server) handleWebsocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade rejected", "error", err)
		return
	}

	sink := NewSink(s.bufferSize)
	client := NewClient(conn, r, sink, s.authenticator, s.service,
		s.registry, s.monitoring, s.maxPayload, s.log)

	s.monitoring.IncrConnections()
	defer s.monitoring.DecrConnections()

	clientCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go client.WritePump(clientCtx)
	client.ReadPump(clientCtx)

	if client.userID != "" {
		s.registry.Unbind(client.userID, sink)
	}
	s.log.Debug("client disconnected", "user_id", client.userID)
}
