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

type EstimateHandler struct {
	estimateService *service.EstimateService
	logger          *zap.Logger
}

func NewEstimateHandler(estimateService *service.EstimateService, logger *zap.Logger) *EstimateHandler {
	return &EstimateHandler{
		estimateService: estimateService,
		logger:          logger,
	}
}

// @Summary List estimates
// @Tags Estimates
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status" Enums(draft, sent, converted, declined)
// @Param customer query string false "Filter by customer name (substring match)"
// @Success 200 {object} domain.ListResponse[domain.EstimateDTO]
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /estimates [get]
func (h *EstimateHandler) List(w http.ResponseWriter, r *http.Request) {
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

	var status *domain.EstimateStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.EstimateStatus(s)
		status = &st
	}
	customer := r.URL.Query().Get("customer")

	estimates, total, err := h.estimateService.List(r.Context(), page, pageSize, status, customer)
	if err != nil {
		h.logger.Error("failed to list estimates", zap.Error(err))
		respondServiceError(w, err, "Failed to list estimates")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse[domain.EstimateDTO]{
		Items: mapper.ToEstimateDTOs(estimates),
		Total: total,
	})
}

// @Summary Create estimate
// @Tags Estimates
// @Accept json
// @Produce json
// @Param request body domain.CreateEstimateRequest true "Estimate data"
// @Success 201 {object} domain.EstimateDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /estimates [post]
func (h *EstimateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	userID, userName := "", ""
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		userID = userCtx.UserID.String()
		userName = userCtx.DisplayName
	}

	estimate, err := h.estimateService.Create(r.Context(), &req, userID, userName)
	if err != nil {
		h.logger.Error("failed to create estimate", zap.Error(err))
		respondServiceError(w, err, "Failed to create estimate")
		return
	}

	w.Header().Set("Location", "/api/v1/estimates/"+estimate.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToEstimateDTO(estimate, nil))
}

// @Summary Get estimate
// @Tags Estimates
// @Produce json
// @Param id path string true "Estimate ID"
// @Success 200 {object} domain.EstimateDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /estimates/{id} [get]
func (h *EstimateHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID: must be a valid UUID")
		return
	}

	estimate, err := h.estimateService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get estimate", zap.Error(err), zap.String("estimate_id", id.String()))
		respondServiceError(w, err, "Failed to get estimate")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToEstimateDTO(estimate, nil))
}

// @Summary Update estimate
// @Description Updates header fields and recomputes totals. Converted estimates are immutable.
// @Tags Estimates
// @Accept json
// @Produce json
// @Param id path string true "Estimate ID"
// @Param request body domain.UpdateEstimateRequest true "Estimate data"
// @Success 200 {object} domain.EstimateDTO
// @Failure 409 {object} domain.APIError "Estimate already converted"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /estimates/{id} [put]
func (h *EstimateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID: must be a valid UUID")
		return
	}

	var req domain.UpdateEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	estimate, err := h.estimateService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update estimate", zap.Error(err), zap.String("estimate_id", id.String()))
		respondServiceError(w, err, "Failed to update estimate")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToEstimateDTO(estimate, nil))
}

// @Summary Delete estimate
// @Tags Estimates
// @Param id path string true "Estimate ID"
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /estimates/{id} [delete]
func (h *EstimateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID: must be a valid UUID")
		return
	}

	if err := h.estimateService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete estimate", zap.Error(err), zap.String("estimate_id", id.String()))
		respondServiceError(w, err, "Failed to delete estimate")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

type setStatusRequest struct {
	Status domain.EstimateStatus `json:"status" validate:"required,oneof=draft sent declined"`
}

// @Summary Set estimate status
// @Description Moves the estimate between draft, sent and declined. Conversion happens via /estimates/{id}/convert.
// @Tags Estimates
// @Accept json
// @Produce json
// @Param id path string true "Estimate ID"
// @Param request body setStatusRequest true "New status"
// @Success 200 {object} domain.EstimateDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /estimates/{id}/status [post]
func (h *EstimateHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID: must be a valid UUID")
		return
	}

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	estimate, err := h.estimateService.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to set estimate status", zap.Error(err), zap.String("estimate_id", id.String()))
		respondServiceError(w, err, "Failed to set estimate status")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToEstimateDTO(estimate, nil))
}

// @Summary Get estimate totals breakdown
// @Description Returns the estimate together with the intermediate figures behind the grand total.
// @Tags Estimates
// @Produce json
// @Param id path string true "Estimate ID"
// @Success 200 {object} domain.EstimateDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /estimates/{id}/breakdown [get]
func (h *EstimateHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID: must be a valid UUID")
		return
	}

	estimate, breakdown, err := h.estimateService.Breakdown(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to compute estimate breakdown", zap.Error(err), zap.String("estimate_id", id.String()))
		respondServiceError(w, err, "Failed to compute estimate breakdown")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToEstimateDTO(estimate, breakdown))
}

// @Summary Recompute estimate totals
// @Description Re-runs pricing for all parts and re-aggregates totals. Idempotent.
// @Tags Estimates
// @Produce json
// @Param id path string true "Estimate ID"
// @Success 200 {object} domain.EstimateDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /estimates/{id}/recompute [post]
func (h *EstimateHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID: must be a valid UUID")
		return
	}

	estimate, err := h.estimateService.Recompute(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to recompute estimate", zap.Error(err), zap.String("estimate_id", id.String()))
		respondServiceError(w, err, "Failed to recompute estimate")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToEstimateDTO(estimate, nil))
}

// @Summary Add part
// @Tags Estimates
// @Accept json
// @Produce json
// @Param id path string true "Estimate ID"
// @Param request body domain.PartRequest true "Part data"
// @Success 201 {object} domain.EstimateDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /estimates/{id}/parts [post]
func (h *EstimateHandler) AddPart(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID: must be a valid UUID")
		return
	}

	var req domain.PartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	estimate, err := h.estimateService.AddPart(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to add part", zap.Error(err), zap.String("estimate_id", id.String()))
		respondServiceError(w, err, "Failed to add part")
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToEstimateDTO(estimate, nil))
}

// @Summary Update part
// @Tags Estimates
// @Accept json
// @Produce json
// @Param id path string true "Estimate ID"
// @Param partId path string true "Part ID"
// @Param request body domain.PartRequest true "Part data"
// @Success 200 {object} domain.EstimateDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /estimates/{id}/parts/{partId} [put]
func (h *EstimateHandler) UpdatePart(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID: must be a valid UUID")
		return
	}

	partID, err := uuid.Parse(chi.URLParam(r, "partId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid part ID: must be a valid UUID")
		return
	}

	var req domain.PartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	estimate, err := h.estimateService.UpdatePart(r.Context(), id, partID, &req)
	if err != nil {
		h.logger.Error("failed to update part", zap.Error(err),
			zap.String("estimate_id", id.String()), zap.String("part_id", partID.String()))
		respondServiceError(w, err, "Failed to update part")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToEstimateDTO(estimate, nil))
}

// @Summary Remove part
// @Description Removes a part and renumbers the remainder contiguously.
// @Tags Estimates
// @Produce json
// @Param id path string true "Estimate ID"
// @Param partId path string true "Part ID"
// @Success 200 {object} domain.EstimateDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /estimates/{id}/parts/{partId} [delete]
func (h *EstimateHandler) RemovePart(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID: must be a valid UUID")
		return
	}

	partID, err := uuid.Parse(chi.URLParam(r, "partId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid part ID: must be a valid UUID")
		return
	}

	estimate, err := h.estimateService.RemovePart(r.Context(), id, partID)
	if err != nil {
		h.logger.Error("failed to remove part", zap.Error(err),
			zap.String("estimate_id", id.String()), zap.String("part_id", partID.String()))
		respondServiceError(w, err, "Failed to remove part")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToEstimateDTO(estimate, nil))
}
