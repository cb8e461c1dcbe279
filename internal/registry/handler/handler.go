// Package handler exposes the registry workflows over HTTP. Every route
// requires an authenticated caller; the token's address is the acting
// identity for guards and audit attribution.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kyc-ledger/internal/platform/metrics"
	"kyc-ledger/internal/platform/middleware"
	"kyc-ledger/internal/registry/models"
	dErrors "kyc-ledger/pkg/domain-errors"
	"kyc-ledger/pkg/httputil"
	"kyc-ledger/pkg/validation"
)

// Service defines the registry operations the handler dispatches to.
type Service interface {
	AddKYCRequest(ctx context.Context, caller string, in models.KYCRequestInput) error
	RemoveKYCRequest(ctx context.Context, caller string, in models.KYCRequestInput) error
	RegisterCustomer(ctx context.Context, caller string, in models.RegisterCustomerRequest) error
	RemoveCustomer(ctx context.Context, caller, name string) error
	ModifyCustomer(ctx context.Context, caller, name string, in models.ModifyCustomerRequest) error
	UpvoteCustomer(ctx context.Context, caller, name string) (*models.VoteResponse, error)
	DownvoteCustomer(ctx context.Context, caller, name string) (*models.VoteResponse, error)

	AddBank(ctx context.Context, caller string, in models.AddBankRequest) error
	RemoveBank(ctx context.Context, caller, address string) error
	ModifyBankPermission(ctx context.Context, caller, address string) (*models.PermissionResponse, error)

	ViewCustomer(ctx context.Context, name string) (*models.CustomerView, error)
	CustomerStatus(ctx context.Context, name string) (*models.CustomerStatusResponse, error)
	BankDetails(ctx context.Context, address string) (*models.Bank, error)
	BankReports(ctx context.Context, address string) (*models.BankReportsResponse, error)
	ListBanks(ctx context.Context) ([]*models.Bank, error)
	ListCustomers(ctx context.Context) ([]*models.CustomerView, error)
}

// Handler handles registry endpoints.
type Handler struct {
	logger   *slog.Logger
	registry Service
	metrics  *metrics.Metrics
}

// New creates a new registry Handler.
func New(registry Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		registry: registry,
		metrics:  metrics,
	}
}

// Register registers the registry routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/kyc/requests", h.handleAddKYCRequest)
	r.Post("/kyc/requests/remove", h.handleRemoveKYCRequest)

	r.Post("/customers", h.handleRegisterCustomer)
	r.Get("/customers", h.handleListCustomers)
	r.Get("/customers/{name}", h.handleViewCustomer)
	r.Put("/customers/{name}", h.handleModifyCustomer)
	r.Delete("/customers/{name}", h.handleRemoveCustomer)
	r.Get("/customers/{name}/status", h.handleCustomerStatus)
	r.Post("/customers/{name}/upvote", h.handleUpvoteCustomer)
	r.Post("/customers/{name}/downvote", h.handleDownvoteCustomer)

	r.Get("/banks", h.handleListBanks)
	r.Get("/banks/{address}", h.handleBankDetails)
	r.Get("/banks/{address}/reports", h.handleBankReports)
	r.Post("/banks", h.handleAddBank)
	r.Post("/banks/{address}/permission", h.handleModifyBankPermission)
	r.Delete("/banks/{address}", h.handleRemoveBank)
}

// caller resolves the acting identity from the auth middleware. An empty
// address means the middleware chain is misconfigured, not a client error.
func (h *Handler) caller(ctx context.Context, w http.ResponseWriter) (string, bool) {
	address := middleware.GetAddress(ctx)
	if address == "" {
		h.logger.ErrorContext(ctx, "address missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return address, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	ctx := r.Context()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(ctx, "failed to decode request body",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	if err := validation.Validate(dst); err != nil {
		h.logger.WarnContext(ctx, "invalid request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return false
	}
	return true
}

func (h *Handler) observe(endpoint string, start time.Time) {
	if h.metrics != nil {
		h.metrics.ObserveEndpointLatency(endpoint, time.Since(start).Seconds())
	}
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	h.logger.ErrorContext(ctx, "registry operation failed",
		"request_id", middleware.GetRequestID(ctx),
		"operation", op,
		"error", err,
	)
	httputil.WriteError(w, err)
}

func (h *Handler) handleAddKYCRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("add_kyc_request", time.Now())

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	var req models.KYCRequestInput
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.registry.AddKYCRequest(ctx, caller, req); err != nil {
		h.writeServiceError(ctx, w, "add_kyc_request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"fingerprint": req.Fingerprint,
		"status":      "pending",
	})
}

func (h *Handler) handleRemoveKYCRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("remove_kyc_request", time.Now())

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	var req models.KYCRequestInput
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.registry.RemoveKYCRequest(ctx, caller, req); err != nil {
		h.writeServiceError(ctx, w, "remove_kyc_request", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRegisterCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("register_customer", time.Now())

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	var req models.RegisterCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.registry.RegisterCustomer(ctx, caller, req); err != nil {
		h.writeServiceError(ctx, w, "register_customer", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, &models.CustomerView{
		Name:        req.Name,
		Fingerprint: req.Fingerprint,
	})
}

func (h *Handler) handleRemoveCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("remove_customer", time.Now())

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	if err := h.registry.RemoveCustomer(ctx, caller, chi.URLParam(r, "name")); err != nil {
		h.writeServiceError(ctx, w, "remove_customer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleModifyCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("modify_customer", time.Now())

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	var req models.ModifyCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}

	name := chi.URLParam(r, "name")
	if err := h.registry.ModifyCustomer(ctx, caller, name, req); err != nil {
		h.writeServiceError(ctx, w, "modify_customer", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &models.CustomerView{
		Name:        name,
		Fingerprint: req.Fingerprint,
	})
}

func (h *Handler) handleUpvoteCustomer(w http.ResponseWriter, r *http.Request) {
	h.handleVote(w, r, "upvote_customer", h.registry.UpvoteCustomer)
}

func (h *Handler) handleDownvoteCustomer(w http.ResponseWriter, r *http.Request) {
	h.handleVote(w, r, "downvote_customer", h.registry.DownvoteCustomer)
}

func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request, op string,
	vote func(ctx context.Context, caller, name string) (*models.VoteResponse, error),
) {
	ctx := r.Context()
	defer h.observe(op, time.Now())

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	resp, err := vote(ctx, caller, chi.URLParam(r, "name"))
	if err != nil {
		h.writeServiceError(ctx, w, op, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleViewCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("view_customer", time.Now())

	view, err := h.registry.ViewCustomer(ctx, chi.URLParam(r, "name"))
	if err != nil {
		h.writeServiceError(ctx, w, "view_customer", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleCustomerStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("customer_status", time.Now())

	status, err := h.registry.CustomerStatus(ctx, chi.URLParam(r, "name"))
	if err != nil {
		h.writeServiceError(ctx, w, "customer_status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("list_customers", time.Now())

	views, err := h.registry.ListCustomers(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "list_customers", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) handleListBanks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("list_banks", time.Now())

	banks, err := h.registry.ListBanks(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "list_banks", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, banks)
}

func (h *Handler) handleBankDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("bank_details", time.Now())

	bank, err := h.registry.BankDetails(ctx, chi.URLParam(r, "address"))
	if err != nil {
		h.writeServiceError(ctx, w, "bank_details", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, bank)
}

func (h *Handler) handleBankReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("bank_reports", time.Now())

	reports, err := h.registry.BankReports(ctx, chi.URLParam(r, "address"))
	if err != nil {
		h.writeServiceError(ctx, w, "bank_reports", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reports)
}

func (h *Handler) handleAddBank(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("add_bank", time.Now())

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}
	var req models.AddBankRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.registry.AddBank(ctx, caller, req); err != nil {
		h.writeServiceError(ctx, w, "add_bank", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, &models.Bank{
		Address:       req.Address,
		Name:          req.Name,
		RegNumber:     req.RegNumber,
		KYCPermission: true,
	})
}

func (h *Handler) handleRemoveBank(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("remove_bank", time.Now())

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	if err := h.registry.RemoveBank(ctx, caller, chi.URLParam(r, "address")); err != nil {
		h.writeServiceError(ctx, w, "remove_bank", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleModifyBankPermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("modify_bank_permission", time.Now())

	caller, ok := h.caller(ctx, w)
	if !ok {
		return
	}

	resp, err := h.registry.ModifyBankPermission(ctx, caller, chi.URLParam(r, "address"))
	if err != nil {
		h.writeServiceError(ctx, w, "modify_bank_permission", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
