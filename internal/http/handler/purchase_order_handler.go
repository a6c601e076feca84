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

type PurchaseOrderHandler struct {
	purchaseOrderService *service.PurchaseOrderService
	logger               *zap.Logger
}

func NewPurchaseOrderHandler(purchaseOrderService *service.PurchaseOrderService, logger *zap.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		purchaseOrderService: purchaseOrderService,
		logger:               logger,
	}
}

// @Summary List purchase orders
// @Tags PurchaseOrders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status" Enums(open, received, void)
// @Param workOrderId query string false "Filter by work order ID"
// @Success 200 {object} domain.ListResponse[domain.PurchaseOrderDTO]
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders [get]
func (h *PurchaseOrderHandler) List(w http.ResponseWriter, r *http.Request) {
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

	var status *domain.PurchaseOrderStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.PurchaseOrderStatus(s)
		status = &st
	}

	var workOrderID *uuid.UUID
	if wid := r.URL.Query().Get("workOrderId"); wid != "" {
		id, err := uuid.Parse(wid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid workOrderId: must be a valid UUID")
			return
		}
		workOrderID = &id
	}

	orders, total, err := h.purchaseOrderService.List(r.Context(), page, pageSize, status, workOrderID)
	if err != nil {
		h.logger.Error("failed to list purchase orders", zap.Error(err))
		respondServiceError(w, err, "Failed to list purchase orders")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse[domain.PurchaseOrderDTO]{
		Items: mapper.ToPurchaseOrderDTOs(orders),
		Total: total,
	})
}

// @Summary Create purchase order
// @Description Allocates the next PO number, or reserves customNumber when provided.
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Param request body domain.CreatePurchaseOrderRequest true "Purchase order data"
// @Success 201 {object} domain.PurchaseOrderDTO
// @Failure 409 {object} domain.APIError "Custom number already issued"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders [post]
func (h *PurchaseOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePurchaseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	userID := ""
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		userID = userCtx.UserID.String()
	}

	order, err := h.purchaseOrderService.Create(r.Context(), &req, userID)
	if err != nil {
		h.logger.Error("failed to create purchase order", zap.Error(err))
		respondServiceError(w, err, "Failed to create purchase order")
		return
	}

	w.Header().Set("Location", "/api/v1/purchase-orders/"+order.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToPurchaseOrderDTO(order))
}

// @Summary Get purchase order
// @Tags PurchaseOrders
// @Produce json
// @Param id path string true "Purchase order ID"
// @Success 200 {object} domain.PurchaseOrderDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid purchase order ID: must be a valid UUID")
		return
	}

	order, err := h.purchaseOrderService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get purchase order", zap.Error(err), zap.String("purchase_order_id", id.String()))
		respondServiceError(w, err, "Failed to get purchase order")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToPurchaseOrderDTO(order))
}

// @Summary Mark purchase order received
// @Tags PurchaseOrders
// @Produce json
// @Param id path string true "Purchase order ID"
// @Success 200 {object} domain.PurchaseOrderDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{id}/receive [post]
func (h *PurchaseOrderHandler) MarkReceived(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid purchase order ID: must be a valid UUID")
		return
	}

	order, err := h.purchaseOrderService.MarkReceived(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to mark purchase order received", zap.Error(err), zap.String("purchase_order_id", id.String()))
		respondServiceError(w, err, "Failed to mark purchase order received")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToPurchaseOrderDTO(order))
}

// @Summary Void purchase order number
// @Description Voids the PO number permanently; voided numbers are never reused. The order is marked void.
// @Tags PurchaseOrders
// @Accept json
// @Produce json
// @Param id path string true "Purchase order ID"
// @Param request body domain.VoidNumberRequest true "Void reason"
// @Success 200 {object} domain.PurchaseOrderDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{id}/void [post]
func (h *PurchaseOrderHandler) VoidNumber(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid purchase order ID: must be a valid UUID")
		return
	}

	var req domain.VoidNumberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.purchaseOrderService.VoidNumber(r.Context(), id, req.Reason)
	if err != nil {
		h.logger.Error("failed to void purchase order number", zap.Error(err), zap.String("purchase_order_id", id.String()))
		respondServiceError(w, err, "Failed to void purchase order number")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToPurchaseOrderDTO(order))
}

// @Summary Release purchase order number
// @Description Releases the PO number back to the pool and clears it from the order.
// @Tags PurchaseOrders
// @Produce json
// @Param id path string true "Purchase order ID"
// @Success 200 {object} domain.PurchaseOrderDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchase-orders/{id}/release [post]
func (h *PurchaseOrderHandler) ReleaseNumber(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid purchase order ID: must be a valid UUID")
		return
	}

	order, err := h.purchaseOrderService.ReleaseNumber(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to release purchase order number", zap.Error(err), zap.String("purchase_order_id", id.String()))
		respondServiceError(w, err, "Failed to release purchase order number")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToPurchaseOrderDTO(order))
}
