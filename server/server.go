// Package server exposes the planner over HTTP.
//
//	POST /v1/routes   plan a search (planner.Request as JSON)
//	GET  /v1/motions  the motion catalog
//	GET  /healthz     liveness
//	GET  /metrics     Prometheus exposition
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/avoid"
	"github.com/katalvlaran/anglepath/config"
	"github.com/katalvlaran/anglepath/cost"
	"github.com/katalvlaran/anglepath/costmodel"
	"github.com/katalvlaran/anglepath/motion"
	"github.com/katalvlaran/anglepath/planner"
	"github.com/katalvlaran/anglepath/report"
)

// DefaultMaxBody bounds request bodies.
const DefaultMaxBody = 1 << 20

// Planner is what the server needs from *planner.Planner.
type Planner interface {
	Plan(ctx context.Context, req planner.Request) (*planner.Result, error)
	Table() motion.Table
}

// Server holds the handlers' dependencies.
type Server struct {
	planner  Planner
	costs    costmodel.Table
	log      zerolog.Logger
	gatherer prometheus.Gatherer
	maxBody  int64
	timeout  time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithCosts sets the cost table listed by /v1/motions.
func WithCosts(t costmodel.Table) Option {
	return func(s *Server) { s.costs = t }
}

// WithTimeout bounds a single plan. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New returns a Server for p.
func New(p Planner, opts ...Option) *Server {
	s := &Server{
		planner:  p,
		costs:    costmodel.DefaultTable(),
		log:      zerolog.Nop(),
		gatherer: prometheus.DefaultGatherer,
		maxBody:  DefaultMaxBody,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.health)
	r.Get("/v1/motions", s.motions)
	r.Post("/v1/routes", s.routes)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		began := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Dur("took", time.Since(began)).
			Msg("request")
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// motionInfo is one catalog entry as listed by /v1/motions.
type motionInfo struct {
	Name       string       `json:"name"`
	Group      motion.Group `json:"group"`
	Cost       cost.Cost    `json:"cost"`
	TargetLock bool         `json:"target_lock"`
}

type chainInfo struct {
	Prev motion.Motion `json:"prev"`
	Next motion.Motion `json:"next"`
	Cost cost.Cost     `json:"cost"`
}

func (s *Server) motions(w http.ResponseWriter, _ *http.Request) {
	out := struct {
		Motions []motionInfo `json:"motions"`
		Chains  []chainInfo  `json:"chains"`
	}{}
	for _, m := range motion.All() {
		out.Motions = append(out.Motions, motionInfo{
			Name:       m.Name(),
			Group:      m.Group(),
			Cost:       s.costs.Base[m],
			TargetLock: m.TargetLock(),
		})
	}
	for _, m := range motion.All() {
		for _, n := range motion.All() {
			if c, ok := s.costs.Chains[motion.Pair{Prev: m, Next: n}]; ok {
				out.Chains = append(out.Chains, chainInfo{Prev: m, Next: n, Cost: c})
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) routes(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("reading body: %w", err))
		return
	}
	if int64(len(body)) > s.maxBody {
		writeError(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
		return
	}

	var raw map[string]any
	if err := sonic.Unmarshal(body, &raw); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	var req planner.Request
	if err := config.Decode(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	res, err := s.planner.Plan(ctx, req)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	writeJSON(w, http.StatusOK, report.NewDocument(s.planner.Table(), res))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, planner.ErrNoGroups),
		errors.Is(err, planner.ErrNoStarts),
		errors.Is(err, planner.ErrNoTargets),
		errors.Is(err, planner.ErrBadRequest),
		errors.Is(err, costmodel.ErrNoGroups),
		errors.Is(err, costmodel.ErrMissingCost),
		errors.Is(err, avoid.ErrInverted),
		errors.Is(err, angle.ErrBadState):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
