// Package server exposes the pricing engine over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/contactkeval/option-mc/internal/logger"
	"github.com/contactkeval/option-mc/internal/montecarlo"
	"github.com/contactkeval/option-mc/internal/pricing"
)

// DefaultMaxCells bounds paths*steps of a single request.
const DefaultMaxCells = 50_000_000

// Server serves pricing requests against one Engine.
type Server struct {
	engine      *montecarlo.Engine
	defaultSeed uint64
	maxCells    int
}

// New returns a Server pricing with engine. Requests without a seed use
// defaultSeed.
func New(engine *montecarlo.Engine, defaultSeed uint64) *Server {
	return &Server{engine: engine, defaultSeed: defaultSeed, maxCells: DefaultMaxCells}
}

// Router wires the HTTP endpoints.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/price", s.handlePrice).Methods(http.MethodPost)
	r.HandleFunc("/reference", s.handleReference).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}

type priceRequest struct {
	montecarlo.Params
	Seed *uint64 `json:"seed,omitempty"`
}

type priceResponse struct {
	RunID string `json:"run_id"`
	*montecarlo.Result
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if err := req.Params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Paths > s.maxCells/req.Steps {
		writeError(w, http.StatusBadRequest, fmt.Errorf("paths*steps exceeds limit of %d", s.maxCells))
		return
	}

	seed := s.defaultSeed
	if req.Seed != nil {
		seed = *req.Seed
	}

	runID := uuid.New().String()
	logger.Infof("run %s: received /price request", runID)

	res, err := s.engine.Run(r.Context(), req.Params, seed)
	if err != nil {
		logger.Errorf("run %s failed: %v", runID, err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, priceResponse{RunID: runID, Result: res})
}

func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := montecarlo.Params{Steps: 1, Paths: 1}
	fields := []struct {
		key string
		dst *float64
	}{
		{"spot", &p.Spot},
		{"strike", &p.Strike},
		{"risk_free_rate", &p.RiskFreeRate},
		{"volatility", &p.Volatility},
		{"horizon", &p.Horizon},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(q.Get(f.key), 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("query %s: %w", f.key, err))
			return
		}
		*f.dst = v
	}
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	call, put := pricing.Prices(p.Spot, p.Strike, p.Horizon, p.RiskFreeRate, p.Volatility)
	writeJSON(w, http.StatusOK, montecarlo.Reference{CallPrice: call, PutPrice: put})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, montecarlo.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, montecarlo.ErrNumericOverflow):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
