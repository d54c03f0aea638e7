package supplier

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dcontreras/payables/internal/debt"
	"github.com/dcontreras/payables/internal/ledger"
	"github.com/dcontreras/payables/internal/model"
	"github.com/dcontreras/payables/pkg/middleware"
	"github.com/dcontreras/payables/pkg/response"
	"github.com/dcontreras/payables/pkg/validate"
)

// Handler handles HTTP requests for supplier operations
type Handler struct {
	service *Service
}

// NewHandler creates a new supplier handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for supplier endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Get("/{id}/debts", h.ListDebts)

	return r
}

// Create handles POST /suppliers
// @Summary      Create a new supplier
// @Description  Register a supplier, optionally with an opening balance that creates an initial order and debt
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body CreateSupplierRequest true "Supplier creation request"
// @Success      201 {object} response.APIResponse{data=SupplierResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /suppliers [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSupplierRequest
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	actor := middleware.GetActor(r.Context())
	sup, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		if errors.Is(err, ErrTaxIDAlreadyInUse) {
			response.Conflict(w, err.Error())
			return
		}
		if errors.Is(err, ledger.ErrInvalidAmount) {
			response.BadRequest(w, "opening balance must be greater than zero")
			return
		}
		response.InternalError(w, "Failed to create supplier")
		return
	}

	response.JSON(w, http.StatusCreated, NewSupplierResponse(sup))
}

// GetByID handles GET /suppliers/{id}
// @Summary      Get supplier by ID
// @Tags         suppliers
// @Produce      json
// @Param        id path int true "Supplier ID"
// @Success      200 {object} response.APIResponse{data=SupplierResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /suppliers/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid supplier ID")
		return
	}

	sup, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrSupplierNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get supplier")
		return
	}

	response.JSON(w, http.StatusOK, NewSupplierResponse(sup))
}

// List handles GET /suppliers
// @Summary      List suppliers
// @Description  Get a paginated list of suppliers, optionally filtered by status
// @Tags         suppliers
// @Produce      json
// @Param        status query string false "Filter by status (PENDING or COMPLETED)"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]SupplierResponse}
// @Router       /suppliers [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := model.SupplierStatus(r.URL.Query().Get("status"))
	if status != "" && status != model.SupplierStatusPending && status != model.SupplierStatusCompleted {
		response.BadRequest(w, "Invalid status filter")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	suppliers, total, err := h.service.List(r.Context(), status, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list suppliers")
		return
	}

	supplierResponses := make([]*SupplierResponse, len(suppliers))
	for i, s := range suppliers {
		supplierResponses[i] = NewSupplierResponse(s)
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, supplierResponses, meta)
}

// ListDebts handles GET /suppliers/{id}/debts
// @Summary      List a supplier's debts
// @Tags         suppliers
// @Produce      json
// @Param        id path int true "Supplier ID"
// @Success      200 {object} response.APIResponse{data=[]debt.DebtResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /suppliers/{id}/debts [get]
func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid supplier ID")
		return
	}

	debts, err := h.service.ListDebts(r.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrSupplierNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to list debts")
		return
	}

	debtResponses := make([]*debt.DebtResponse, len(debts))
	for i, d := range debts {
		debtResponses[i] = debt.NewDebtResponse(d)
	}

	response.JSON(w, http.StatusOK, debtResponses)
}
