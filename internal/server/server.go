package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nexchain_go/internal/alerts"
	"nexchain_go/internal/domain"
	"nexchain_go/internal/orders"
	"nexchain_go/internal/storage"
	"nexchain_go/pkg/quant"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Server exposes the order and alert persistence API over HTTP.
type Server struct {
	store  *storage.Store
	router *mux.Router
	http   *http.Server
}

// New builds the server. allowedOrigins configures CORS; an empty list
// allows any origin.
func New(store *storage.Store, listenAddr string, allowedOrigins []string) *Server {
	s := &Server{store: store, router: mux.NewRouter()}

	s.router.HandleFunc("/orders", s.handleCreateOrder).Methods(http.MethodPost)
	s.router.HandleFunc("/orders/execute", s.handleExecuteOrder).Methods(http.MethodPost)
	s.router.HandleFunc("/orders/cancel/{id}", s.handleCancelOrder).Methods(http.MethodPut)
	s.router.HandleFunc("/orders/{ownerId}", s.handleListOrders).Methods(http.MethodGet)

	s.router.HandleFunc("/alerts", s.handleCreateAlert).Methods(http.MethodPost)
	s.router.HandleFunc("/alerts/{ownerId}", s.handleListAlerts).Methods(http.MethodGet)
	s.router.HandleFunc("/alerts/{alertId}", s.handleDeleteAlert).Methods(http.MethodDelete)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.http = &http.Server{
		Addr:         listenAddr,
		Handler:      c.Handler(s.router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	slog.Info("Persistence API listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var dto orders.OrderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid order payload")
		return
	}
	if dto.ID == "" {
		dto.ID = uuid.NewString()
	}
	if dto.Status == "" {
		dto.Status = string(domain.StatusPending)
	}

	order := dto.ToDomain()
	if err := s.store.CreateOrder(r.Context(), &order); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, orders.FromDomain(&order))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	pending, err := s.store.ListPendingByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dtos := make([]orders.OrderDTO, 0, len(pending))
	for i := range pending {
		dtos = append(dtos, orders.FromDomain(&pending[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleExecuteOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid execute payload")
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "order_id required")
		return
	}

	executed, err := s.store.ExecuteOrder(r.Context(), req.OrderID, quant.PriceFromDecimal(req.CurrentPrice))
	if errors.Is(err, storage.ErrConflict) {
		// A client retry after a timed-out call that actually landed:
		// answer with the stored execution instead of double-transitioning.
		existing, getErr := s.store.GetOrder(r.Context(), req.OrderID)
		if getErr == nil && existing.Status == domain.StatusExecuted {
			writeJSON(w, http.StatusOK, orders.FromDomain(existing))
			return
		}
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders.FromDomain(executed))
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.CancelOrder(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(domain.StatusCancelled)})
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var dto alerts.AlertDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert payload")
		return
	}
	if dto.ID == "" {
		dto.ID = uuid.NewString()
	}
	if dto.Direction != "UP" && dto.Direction != "DOWN" {
		writeError(w, http.StatusBadRequest, "direction must be UP or DOWN")
		return
	}

	alert := dto.ToDomain()
	if err := s.store.CreateAlert(r.Context(), alert); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, alerts.FromDomain(alert))
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	list, err := s.store.ListAlertsByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dtos := make([]alerts.AlertDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, alerts.FromDomain(&list[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["alertId"]
	if err := s.store.DeleteAlert(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
