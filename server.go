package qreg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/theapemachine/errnie"
)

// SessionHeader carries the session ID on requests and responses.
const SessionHeader = "X-Qreg-Session"

const maxBodyBytes = 1 << 16

/*
Server exposes an Orchestrator over HTTP. Every route answers cross-origin
requests from any origin.
*/
type Server struct {
	orchestrator *Orchestrator
	httpServer   *http.Server
	listener     net.Listener
}

// NewServer listens on addr. Use ":0" to pick a free port.
func NewServer(addr string, orchestrator *Orchestrator) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	s := &Server{
		orchestrator: orchestrator,
		listener:     listener,
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

/*
Serve blocks until ctx is cancelled or the server fails. Cancellation
shuts the server down gracefully and returns nil.
*/
func (s *Server) Serve(ctx context.Context) error {
	errnie.Info("Server - listening at %s", s.Addr())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-serveErr
		errnie.Info("Server - stopped")
		return nil
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Handler returns the routes wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /next-state", s.handleNextState)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /sessions/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	return cors(mux)
}

/*
handleNextState never answers with an error status. A body that does not
decode is handled as a request with no action, which echoes the register.
*/
func (s *Server) handleNextState(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		req = Request{}
	}

	session := s.orchestrator.Space().Session(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, session.ID)
	writeJSON(w, http.StatusOK, s.orchestrator.Handle(r.Context(), session, req))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	session := s.orchestrator.Space().Session(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, session.ID)
	writeJSON(w, http.StatusOK, s.orchestrator.State(session))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	session, ok := s.orchestrator.Space().Lookup(r.PathValue("id"))
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	var since uint64
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "since must be a sequence number", http.StatusBadRequest)
			return
		}
		since = n
	}

	writeJSON(w, http.StatusOK, session.History(since))
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.orchestrator.Metrics().Export())
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Expose-Headers", SessionHeader)

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errnie.Warn("Server - encode response: %v", err)
	}
}
