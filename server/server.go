// Package server is the inbound HTTP layer: it parses form-encoded signal
// posts, hands them to the engine, and answers with the literal body "OK"
// or "KO". Signal sources only retry on transport errors, so the response
// contract is deliberately that blunt.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/perpkit/bridge/engine"
	"github.com/perpkit/bridge/exchange"
	"github.com/perpkit/bridge/signal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler is the engine surface the server needs; tests supply stubs.
type Handler interface {
	HandleSignal(ctx context.Context, sig signal.TradeSignal) error
	AccountSummary(ctx context.Context) (exchange.AccountSnapshot, error)
}

type Server struct {
	handler Handler
	router  *mux.Router
	log     *zap.Logger
	metrics *metrics
}

func New(h Handler, log *zap.Logger) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		handler: h,
		router:  mux.NewRouter(),
		log:     log,
		metrics: newMetrics(reg),
	}

	s.router.HandleFunc("/api", s.handleSignal).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return s
}

// Router exposes the route table for tests.
func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe blocks serving inbound signals until the listener fails
// or ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.log.Info("listening for signals", zap.Int("port", port))
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.log.Error("bad form body", zap.Error(err))
		s.reply(w, false, "", "parse")
		return
	}
	s.log.Info("signal received", zap.Any("form", r.PostForm))

	sig, err := signal.ParseForm(r.PostForm)
	if err != nil {
		s.log.Error("malformed signal", zap.Error(err))
		s.reply(w, false, string(sig.Command), "malformed")
		return
	}

	switch sig.Command {
	case signal.CmdStatus:
		// Heartbeat from the signal source; nothing to do.
		s.reply(w, true, string(sig.Command), "")
		return
	case signal.CmdAccount:
		acct, err := s.handler.AccountSummary(r.Context())
		if err != nil {
			s.log.Error("account fetch failed", zap.Error(err))
			s.reply(w, false, string(sig.Command), "exchange")
			return
		}
		s.log.Info("account snapshot",
			zap.String("position_id", acct.PositionID),
			zap.String("equity", acct.Equity.String()),
			zap.Int("open_positions", len(acct.OpenPositions)),
		)
		s.reply(w, true, string(sig.Command), "")
		return
	}

	if err := s.handler.HandleSignal(r.Context(), sig); err != nil {
		s.reply(w, false, string(sig.Command), s.classify(err))
		return
	}
	s.metrics.ordersTotal.Inc()
	s.reply(w, true, string(sig.Command), "")
}

// classify maps an engine error onto the signal outcome label: a policy
// rejection, a venue submission failure, or any other exchange error.
func (s *Server) classify(err error) string {
	var rej *engine.RejectionError
	if errors.As(err, &rej) {
		s.metrics.rejectionsTotal.WithLabelValues(string(rej.Reason)).Inc()
		return "rejected"
	}
	var sub *engine.SubmissionError
	if errors.As(err, &sub) {
		return "submit_failed"
	}
	return "exchange"
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func (s *Server) reply(w http.ResponseWriter, ok bool, command, outcome string) {
	body := "KO"
	if ok {
		body = "OK"
		outcome = "ok"
	}
	if command == "" {
		command = "unknown"
	}
	s.metrics.signalsTotal.WithLabelValues(command, outcome).Inc()
	fmt.Fprint(w, body)
}
