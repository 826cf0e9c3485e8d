package warning

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Server exposes a Set's accumulated warnings as JSON over HTTP, for
// the security-tooling consumers spec.md section 1 mentions that want
// to poll a running analysis rather than wait for the warnings file.
// Off by default; the CLI wires it only when --http is given.
type Server struct {
	set    *Set
	router *mux.Router
}

// NewServer builds a Server backed by set.
func NewServer(set *Set) *Server {
	s := &Server{set: set, router: mux.NewRouter()}
	s.router.HandleFunc("/warnings", s.handleWarnings).Methods(http.MethodGet)
	s.router.HandleFunc("/warnings/count", s.handleCount).Methods(http.MethodGet)
	return s
}

// ListenAndServe starts the HTTP server on addr, blocking until it
// fails or the process is terminated.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.set.All())
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"count": s.set.Len()})
}
