//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/groow-platform/returns-service/internal/returns"
)

type ReturnsService interface {
	Submit(ctx context.Context, sub returns.SubmitRequest) (*returns.ReturnRequest, error)
	Get(ctx context.Context, id string) (*returns.ReturnRequest, error)
	List(ctx context.Context, f returns.Filter) ([]*returns.ReturnRequest, error)
	History(ctx context.Context, id string) ([]*returns.StatusChange, error)
	Approve(ctx context.Context, id, approvedBy string, observedVersion int64) (*returns.ReturnRequest, error)
	Reject(ctx context.Context, id, reason, rejectedBy string, observedVersion int64) (*returns.ReturnRequest, error)
	MarkReceived(ctx context.Context, id, receivedBy string, observedVersion int64) (*returns.ReturnRequest, error)
	Cancel(ctx context.Context, id, cancelledBy string, observedVersion int64) (*returns.ReturnRequest, error)
	Complete(ctx context.Context, id, completedBy string, observedVersion int64) (*returns.ReturnRequest, error)
	Inspect(ctx context.Context, in returns.InspectRequest) (*returns.ReturnRequest, error)
	IssueRefund(ctx context.Context, in returns.IssueRefundRequest) (*returns.RefundRecord, error)
	Stats(ctx context.Context) (*returns.Stats, error)
	Export(ctx context.Context, f returns.Filter, w io.Writer) error
}

type UserRepo interface {
	ValidateUser(ctx context.Context, username, password string) (bool, error)
}

type Server struct {
	service      ReturnsService
	userRepo     UserRepo
	server       *http.Server
	AuditManager *AuditManager
}

func New(service ReturnsService, userRepo UserRepo, auditManager *AuditManager) *Server {
	return &Server{
		service:      service,
		userRepo:     userRepo,
		AuditManager: auditManager,
	}
}

func (s *Server) Run(ctx context.Context, port string) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.AuditManager.Start(ctx)

	log.Printf("Server starting on port %s", port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	log.Println("HTTP server shutdown completed")

	s.AuditManager.Shutdown(ctx)
	return nil
}

func (s *Server) setupRoutes() http.Handler {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/returns").Subrouter()
	api.Use(s.basicAuthMiddleware, s.auditLogMiddleware)

	// Fixed paths before the {id} patterns so "stats" is never read as an id.
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/export", s.handleExport).Methods(http.MethodGet)
	api.HandleFunc("/refund", s.handleIssueRefund).Methods(http.MethodPost)

	api.HandleFunc("", s.handleSubmitReturn).Methods(http.MethodPost)
	api.HandleFunc("", s.handleListReturns).Methods(http.MethodGet)
	api.HandleFunc("/{id}", s.handleGetReturn).Methods(http.MethodGet)
	api.HandleFunc("/{id}/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/{id}/approve", s.handleApprove).Methods(http.MethodPost)
	api.HandleFunc("/{id}/reject", s.handleReject).Methods(http.MethodPost)
	api.HandleFunc("/{id}/receive", s.handleReceive).Methods(http.MethodPost)
	api.HandleFunc("/{id}/cancel", s.handleCancel).Methods(http.MethodPost)
	api.HandleFunc("/{id}/inspect", s.handleInspect).Methods(http.MethodPost)
	api.HandleFunc("/{id}/complete", s.handleComplete).Methods(http.MethodPost)

	return r
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		valid, err := s.userRepo.ValidateUser(r.Context(), username, password)
		if err != nil || !valid {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

type errorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CurrentStatus string `json:"current_status,omitempty"`
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: "error", Message: message})
}

// respondDomainError maps the error taxonomy onto HTTP status codes. The
// response always names the specific error kind, never a generic failure,
// and carries the authoritative status for transition conflicts.
func respondDomainError(w http.ResponseWriter, err error) {
	var invErr *returns.InvalidTransitionError
	switch {
	case errors.Is(err, returns.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()})
	case errors.As(err, &invErr):
		respondJSON(w, http.StatusConflict, errorResponse{
			Error:         "invalid_transition",
			Message:       invErr.Error(),
			CurrentStatus: string(invErr.Current),
		})
	case errors.Is(err, returns.ErrStaleState):
		respondJSON(w, http.StatusConflict, errorResponse{Error: "stale_state", Message: err.Error()})
	case errors.Is(err, returns.ErrDuplicateInspection):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "duplicate_inspection", Message: err.Error()})
	case errors.Is(err, returns.ErrDuplicateRefund):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "duplicate_refund", Message: err.Error()})
	case errors.Is(err, returns.ErrRefundExceedsLimit):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "refund_exceeds_limit", Message: err.Error()})
	case errors.Is(err, returns.ErrInvalidAmount),
		errors.Is(err, returns.ErrReasonRequired),
		errors.Is(err, returns.ErrInspectionRequired),
		errors.Is(err, returns.ErrValidation):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "guard_violation", Message: err.Error()})
	case errors.Is(err, returns.ErrRefundPending):
		respondJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "refund_pending", Message: err.Error()})
	case errors.Is(err, returns.ErrRefundFailed):
		respondJSON(w, http.StatusBadGateway, errorResponse{Error: "refund_failed", Message: err.Error()})
	default:
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: err.Error()})
	}
}

func (s *Server) handleSubmitReturn(w http.ResponseWriter, r *http.Request) {
	var sub returns.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := s.service.Submit(r.Context(), sub)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

func (s *Server) handleGetReturn(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	req, err := s.service.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleListReturns(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reqs, err := s.service.List(r.Context(), f)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if reqs == nil {
		reqs = []*returns.ReturnRequest{}
	}
	respondJSON(w, http.StatusOK, reqs)
}

func parseFilter(r *http.Request) (returns.Filter, error) {
	var f returns.Filter
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := returns.Status(statusStr)
		if !status.Valid() {
			return f, fmt.Errorf("invalid value for 'status' parameter")
		}
		f.Status = status
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return f, fmt.Errorf("invalid value for 'limit' parameter")
		}
		f.Limit = limit
	}
	return f, nil
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	history, err := s.service.History(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if history == nil {
		history = []*returns.StatusChange{}
	}
	respondJSON(w, http.StatusOK, history)
}

type actionRequest struct {
	ApprovedBy  string `json:"approved_by"`
	RejectedBy  string `json:"rejected_by"`
	ReceivedBy  string `json:"received_by"`
	CancelledBy string `json:"cancelled_by"`
	CompletedBy string `json:"completed_by"`
	Reason      string `json:"reason"`
	Version     int64  `json:"version"`
}

func decodeAction(r *http.Request) (actionRequest, error) {
	var a actionRequest
	if r.Body == nil {
		return a, nil
	}
	err := json.NewDecoder(r.Body).Decode(&a)
	if err == io.EOF {
		return a, nil
	}
	return a, err
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	a, err := decodeAction(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := s.service.Approve(r.Context(), id, a.ApprovedBy, a.Version)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	a, err := decodeAction(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := s.service.Reject(r.Context(), id, a.Reason, a.RejectedBy, a.Version)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	a, err := decodeAction(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := s.service.MarkReceived(r.Context(), id, a.ReceivedBy, a.Version)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	a, err := decodeAction(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := s.service.Cancel(r.Context(), id, a.CancelledBy, a.Version)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	a, err := decodeAction(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := s.service.Complete(r.Context(), id, a.CompletedBy, a.Version)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var in returns.InspectRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.ReturnID = id

	req, err := s.service.Inspect(r.Context(), in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

func (s *Server) handleIssueRefund(w http.ResponseWriter, r *http.Request) {
	var in returns.IssueRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.ReturnID == "" {
		respondError(w, http.StatusBadRequest, "Missing return_id")
		return
	}

	rec, err := s.service.IssueRefund(r.Context(), in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if format := r.URL.Query().Get("format"); format != "" && format != "csv" {
		respondError(w, http.StatusBadRequest, "Unsupported export format")
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="returns.csv"`)

	if err := s.service.Export(r.Context(), f, w); err != nil {
		// Headers are already out; all we can do is log and cut the stream.
		log.Printf("ERROR: export stream failed: %v", err)
	}
}
