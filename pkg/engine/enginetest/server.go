// Package enginetest provides a scripted fake resolution engine for tests.
package enginetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/depscope/depscope/pkg/engine"
)

// Handler computes the response for one resolve request. The returned
// status is used as the HTTP status code; a response body is written only
// for 200.
type Handler func(req engine.ResolveRequest) (engine.ResolveResponse, int)

// Server is a fake resolution engine backed by httptest.
type Server struct {
	*httptest.Server

	mu    sync.Mutex
	calls int
}

// New starts a fake engine serving the resolve endpoint with h.
// Callers must Close the server.
func New(h Handler) *Server {
	s := &Server{}

	r := chi.NewRouter()
	r.Post("/api/v1/resolve", func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		s.calls++
		s.mu.Unlock()

		var body engine.ResolveRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp, status := h(body)
		if status != http.StatusOK {
			http.Error(w, http.StatusText(status), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	s.Server = httptest.NewServer(r)
	return s
}

// Calls returns how many resolve requests the server has received.
func (s *Server) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Script builds a Handler that answers each source in the request with the
// result computed by fn, echoing the source back as the protocol requires.
func Script(fn func(src engine.WireSource) engine.ResultBody) Handler {
	return func(req engine.ResolveRequest) (engine.ResolveResponse, int) {
		var resp engine.ResolveResponse
		for _, src := range req.Sources {
			resp.Results = append(resp.Results, engine.ResolveResult{
				Source: src,
				Result: fn(src),
			})
		}
		return resp, http.StatusOK
	}
}

// Ok builds an ok result body.
func Ok(dependencies []engine.WireDependency, errs ...engine.WireError) engine.ResultBody {
	return engine.ResultBody{Ok: &engine.OkResult{Dependencies: dependencies, Errors: errs}}
}

// Err builds an err result body.
func Err(errs ...engine.WireError) engine.ResultBody {
	return engine.ResultBody{Err: &engine.ErrResult{Errors: errs}}
}

// Unavailable is a Handler that always responds 500.
func Unavailable(engine.ResolveRequest) (engine.ResolveResponse, int) {
	return engine.ResolveResponse{}, http.StatusInternalServerError
}
