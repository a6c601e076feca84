package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/mapper"
	"github.com/meridian-steel/shop-api/internal/service"
)

type LaborRuleHandler struct {
	laborRuleService *service.LaborRuleService
	logger           *zap.Logger
}

func NewLaborRuleHandler(laborRuleService *service.LaborRuleService, logger *zap.Logger) *LaborRuleHandler {
	return &LaborRuleHandler{
		laborRuleService: laborRuleService,
		logger:           logger,
	}
}

// @Summary List labor minimum rules
// @Tags LaborRules
// @Produce json
// @Param includeInactive query bool false "Include deactivated rules"
// @Success 200 {object} domain.ListResponse[domain.LaborMinimumRuleDTO]
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /labor-rules [get]
func (h *LaborRuleHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	rules, err := h.laborRuleService.List(r.Context(), includeInactive)
	if err != nil {
		h.logger.Error("failed to list labor rules", zap.Error(err))
		respondServiceError(w, err, "Failed to list labor rules")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse[domain.LaborMinimumRuleDTO]{
		Items: mapper.ToLaborMinimumRuleDTOs(rules),
		Total: int64(len(rules)),
	})
}

// @Summary Create labor minimum rule
// @Tags LaborRules
// @Accept json
// @Produce json
// @Param request body domain.LaborMinimumRuleRequest true "Rule data"
// @Success 201 {object} domain.LaborMinimumRuleDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /labor-rules [post]
func (h *LaborRuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.LaborMinimumRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	rule, err := h.laborRuleService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create labor rule", zap.Error(err))
		respondServiceError(w, err, "Failed to create labor rule")
		return
	}

	dto := mapper.ToLaborMinimumRuleDTO(rule)
	w.Header().Set("Location", "/api/v1/labor-rules/"+rule.ID.String())
	respondJSON(w, http.StatusCreated, dto)
}

// @Summary Get labor minimum rule
// @Tags LaborRules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} domain.LaborMinimumRuleDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /labor-rules/{id} [get]
func (h *LaborRuleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rule ID: must be a valid UUID")
		return
	}

	rule, err := h.laborRuleService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get labor rule", zap.Error(err), zap.String("rule_id", id.String()))
		respondServiceError(w, err, "Failed to get labor rule")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToLaborMinimumRuleDTO(rule))
}

// @Summary Update labor minimum rule
// @Tags LaborRules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param request body domain.LaborMinimumRuleRequest true "Rule data"
// @Success 200 {object} domain.LaborMinimumRuleDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /labor-rules/{id} [put]
func (h *LaborRuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rule ID: must be a valid UUID")
		return
	}

	var req domain.LaborMinimumRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	rule, err := h.laborRuleService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update labor rule", zap.Error(err), zap.String("rule_id", id.String()))
		respondServiceError(w, err, "Failed to update labor rule")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToLaborMinimumRuleDTO(rule))
}

// @Summary Delete labor minimum rule
// @Tags LaborRules
// @Param id path string true "Rule ID"
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /labor-rules/{id} [delete]
func (h *LaborRuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rule ID: must be a valid UUID")
		return
	}

	if err := h.laborRuleService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete labor rule", zap.Error(err), zap.String("rule_id", id.String()))
		respondServiceError(w, err, "Failed to delete labor rule")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
