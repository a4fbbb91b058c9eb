// Package gatewaytest provides an in-process fake of the gateway for tests.
package gatewaytest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/famomatic/waisitv/internal/envelope"
	"github.com/famomatic/waisitv/internal/gateway"
)

// Request is one recorded call.
type Request struct {
	Path          string
	Authorization string
	Body          map[string]any
}

// Response is what a handler returns. Doc is sealed into the envelope
// unless Raw is set, in which case Raw is written verbatim.
type Response struct {
	Status int
	Doc    any
	Raw    string
}

// Handler answers one call.
type Handler func(Request) Response

// Server is a fake gateway.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	requests []Request
}

// Paths of the fake endpoints, relative to the server URL.
const (
	PathGuestLogin    = "/v5/auth/guest-login"
	PathHomeSections  = "/v5/home-programs-carousal"
	PathLiveChannels  = "/v3/live-tv"
	PathGenrePrograms = "/v5/genre-programs-carousal"
	PathChannelURL    = "/media/get-channel-url"
)

// New starts a fake gateway. The guest-login endpoint answers with token
// "guest-token" until overridden.
func New() *Server {
	s := &Server{handlers: map[string]Handler{}}
	s.Handle(PathGuestLogin, func(Request) Response {
		return Response{Doc: map[string]any{"access_token": "guest-token"}}
	})
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Handle installs h for path.
func (s *Server) Handle(path string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[path] = h
}

// Requests returns the recorded calls, optionally filtered by path.
func (s *Server) Requests(path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, 0, len(s.requests))
	for _, r := range s.requests {
		if path == "" || r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of calls to path.
func (s *Server) Count(path string) int {
	return len(s.Requests(path))
}

// Config returns a gateway config pointed at the fake with retries and
// pacing disabled.
func (s *Server) Config() gateway.Config {
	cfg := gateway.DefaultConfig()
	cfg.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	cfg.APIv5Base = s.URL + "/v5/"
	cfg.APIv3Base = s.URL + "/v3/"
	cfg.MediaBase = s.URL + "/media/"
	cfg.MaxRetries = -1
	cfg.RequestsPerSecond = 0
	cfg.UserAgent = "waisi-test"
	return cfg
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	req := Request{Path: r.URL.Path, Authorization: r.Header.Get("Authorization")}
	_ = json.Unmarshal(raw, &req.Body)

	s.mu.Lock()
	s.requests = append(s.requests, req)
	h, ok := s.handlers[r.URL.Path]
	s.mu.Unlock()

	if !ok || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	resp := h(req)
	w.Header().Set("Content-Type", "application/json")
	if resp.Status != 0 {
		w.WriteHeader(resp.Status)
	}
	if resp.Raw != "" {
		_, _ = io.WriteString(w, resp.Raw)
		return
	}
	sealed, err := envelope.Default().SealJSON(resp.Doc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{envelope.Field: sealed})
}

// BearerToken strips the Bearer prefix from an Authorization header value.
func BearerToken(header string) string {
	return strings.TrimPrefix(header, "Bearer ")
}
