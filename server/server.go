package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/orderdeskapp/orderdesk/internal/config"
	"github.com/orderdeskapp/orderdesk/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.Use(h.MetricsContext)
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	// Session bootstrap is public; everything else needs the cookie.
	r.HandleFunc("/session", h.Login).Methods("POST").Name("session.login")
	r.HandleFunc("/session", h.Logout).Methods("DELETE").Name("session.logout")

	// 404 handler - must be last
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not Found","message":"no such route"}`))
	})

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.SessionMiddleware)
	api.Use(h.RequireSession)
	api.Use(h.RequireSameOrigin)

	api.HandleFunc("/orders", h.ListOrders).Methods("GET").Name("orders.list")
	api.HandleFunc("/orders/query", h.TypeSearch).Methods("PUT").Name("orders.query")
	api.HandleFunc("/orders/meta/reasons", h.CancellationReasons).Methods("GET").Name("orders.reasons")
	api.HandleFunc("/orders/{id}/cancel", h.CancelOrder).Methods("POST").Name("orders.cancel")
	api.HandleFunc("/orders/{id}/payments", h.SubmitPayment).Methods("POST").Name("orders.payments.create")
	api.HandleFunc("/orders/{id}/repayments", h.CreateRepayment).Methods("POST").Name("orders.repayments.create")

	api.HandleFunc("/payments/{id}/proof", h.ReuploadProof).Methods("POST").Name("payments.proof.reupload")
	api.HandleFunc("/payments/upi-settings", h.UPISettings).Methods("GET").Name("payments.upi_settings")

	api.HandleFunc("/products/{id}/reviews/mine", h.MyReview).Methods("GET").Name("reviews.mine")
	api.HandleFunc("/products/{id}/reviews", h.CreateReview).Methods("POST").Name("reviews.create")
	api.HandleFunc("/products/{id}/reviews/{reviewID}", h.UpdateReview).Methods("PUT").Name("reviews.update")
	api.HandleFunc("/products/{id}/reviews/{reviewID}", h.DeleteReview).Methods("DELETE").Name("reviews.delete")

	return r
}
