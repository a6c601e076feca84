package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meridian-steel/shop-api/internal/auth"
	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/mapper"
	"github.com/meridian-steel/shop-api/internal/service"
)

type WorkOrderHandler struct {
	workOrderService *service.WorkOrderService
	logger           *zap.Logger
}

func NewWorkOrderHandler(workOrderService *service.WorkOrderService, logger *zap.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{
		workOrderService: workOrderService,
		logger:           logger,
	}
}

// @Summary Convert estimate to work order
// @Description Allocates a DR number, copies parts and totals verbatim, and marks the estimate converted. Atomic: a failed conversion leaves no trace.
// @Tags WorkOrders
// @Accept json
// @Produce json
// @Param id path string true "Estimate ID"
// @Param request body domain.ConvertEstimateRequest true "Conversion data"
// @Success 201 {object} domain.WorkOrderDTO
// @Failure 409 {object} domain.APIError "Estimate already converted"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /estimates/{id}/convert [post]
func (h *WorkOrderHandler) ConvertEstimate(w http.ResponseWriter, r *http.Request) {
	estimateID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID: must be a valid UUID")
		return
	}

	var req domain.ConvertEstimateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	userID := ""
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		userID = userCtx.UserID.String()
	}

	workOrder, err := h.workOrderService.ConvertEstimate(r.Context(), estimateID, &req, userID)
	if err != nil {
		h.logger.Error("failed to convert estimate", zap.Error(err), zap.String("estimate_id", estimateID.String()))
		respondServiceError(w, err, "Failed to convert estimate")
		return
	}

	w.Header().Set("Location", "/api/v1/work-orders/"+workOrder.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToWorkOrderDTO(workOrder))
}

// @Summary List work orders
// @Tags WorkOrders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status" Enums(open, in_shop, shipped, completed, cancelled)
// @Success 200 {object} domain.ListResponse[domain.WorkOrderDTO]
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders [get]
func (h *WorkOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var status *domain.WorkOrderStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.WorkOrderStatus(s)
		status = &st
	}

	workOrders, total, err := h.workOrderService.List(r.Context(), page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list work orders", zap.Error(err))
		respondServiceError(w, err, "Failed to list work orders")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse[domain.WorkOrderDTO]{
		Items: mapper.ToWorkOrderDTOs(workOrders),
		Total: total,
	})
}

// @Summary Get work order
// @Tags WorkOrders
// @Produce json
// @Param id path string true "Work order ID"
// @Success 200 {object} domain.WorkOrderDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id} [get]
func (h *WorkOrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work order ID: must be a valid UUID")
		return
	}

	workOrder, err := h.workOrderService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get work order", zap.Error(err), zap.String("work_order_id", id.String()))
		respondServiceError(w, err, "Failed to get work order")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToWorkOrderDTO(workOrder))
}

// @Summary Get work order by DR number
// @Tags WorkOrders
// @Produce json
// @Param number path int true "DR number"
// @Success 200 {object} domain.WorkOrderDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/by-number/{number} [get]
func (h *WorkOrderHandler) GetByDRNumber(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid DR number: must be a positive integer")
		return
	}

	workOrder, err := h.workOrderService.GetByDRNumber(r.Context(), number)
	if err != nil {
		h.logger.Error("failed to get work order by DR number", zap.Error(err), zap.Int("dr_number", number))
		respondServiceError(w, err, "Failed to get work order")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToWorkOrderDTO(workOrder))
}

type setWorkOrderStatusRequest struct {
	Status domain.WorkOrderStatus `json:"status" validate:"required,oneof=open in_shop shipped completed cancelled"`
}

// @Summary Set work order status
// @Tags WorkOrders
// @Accept json
// @Produce json
// @Param id path string true "Work order ID"
// @Param request body setWorkOrderStatusRequest true "New status"
// @Success 200 {object} domain.WorkOrderDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id}/status [post]
func (h *WorkOrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work order ID: must be a valid UUID")
		return
	}

	var req setWorkOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	workOrder, err := h.workOrderService.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to set work order status", zap.Error(err), zap.String("work_order_id", id.String()))
		respondServiceError(w, err, "Failed to set work order status")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToWorkOrderDTO(workOrder))
}
