package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/meridian-steel/shop-api/internal/auth"
	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/mapper"
	"github.com/meridian-steel/shop-api/internal/service"
)

// NumberHandler exposes the reference-number sequences directly. The shop
// occasionally hands out a PO number over the phone before any record exists;
// these endpoints cover that workflow.
type NumberHandler struct {
	numberService *service.NumberService
	logger        *zap.Logger
}

func NewNumberHandler(numberService *service.NumberService, logger *zap.Logger) *NumberHandler {
	return &NumberHandler{
		numberService: numberService,
		logger:        logger,
	}
}

func parseKind(r *http.Request) (domain.NumberKind, bool) {
	kind := domain.NumberKind(chi.URLParam(r, "kind"))
	return kind, kind.IsValid()
}

type allocateResponse struct {
	Kind    domain.NumberKind `json:"kind"`
	Number  int               `json:"number"`
	Display string            `json:"display"`
}

// @Summary Allocate next number
// @Description Allocates the next sequential number of the kind and records the issuance.
// @Tags Numbers
// @Produce json
// @Param kind path string true "Number kind" Enums(po, dr)
// @Success 201 {object} allocateResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /numbers/{kind}/allocate [post]
func (h *NumberHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid number kind: must be 'po' or 'dr'")
		return
	}

	userID := ""
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		userID = userCtx.UserID.String()
	}

	number, err := h.numberService.Allocate(r.Context(), kind, userID)
	if err != nil {
		h.logger.Error("failed to allocate number", zap.Error(err), zap.String("kind", string(kind)))
		respondServiceError(w, err, "Failed to allocate number")
		return
	}

	respondJSON(w, http.StatusCreated, allocateResponse{
		Kind:    kind,
		Number:  number,
		Display: service.FormatNumber(kind, number),
	})
}

type reserveRequest struct {
	Number int `json:"number" validate:"required,gt=0"`
}

// @Summary Reserve specific number
// @Description Records an out-of-sequence number as issued. Fails if the number was ever issued, including voided numbers.
// @Tags Numbers
// @Accept json
// @Produce json
// @Param kind path string true "Number kind" Enums(po, dr)
// @Param request body reserveRequest true "Number to reserve"
// @Success 201 {object} allocateResponse
// @Failure 409 {object} domain.APIError "Number already issued"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /numbers/{kind}/reserve [post]
func (h *NumberHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid number kind: must be 'po' or 'dr'")
		return
	}

	var req reserveRequest
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

	if err := h.numberService.Reserve(r.Context(), kind, req.Number, userID); err != nil {
		h.logger.Error("failed to reserve number", zap.Error(err),
			zap.String("kind", string(kind)), zap.Int("number", req.Number))
		respondServiceError(w, err, "Failed to reserve number")
		return
	}

	respondJSON(w, http.StatusCreated, allocateResponse{
		Kind:    kind,
		Number:  req.Number,
		Display: service.FormatNumber(kind, req.Number),
	})
}

// @Summary Void number
// @Description Marks an issued number void. Voided numbers stay on file and are never reused.
// @Tags Numbers
// @Accept json
// @Produce json
// @Param kind path string true "Number kind" Enums(po, dr)
// @Param number path int true "Number to void"
// @Param request body domain.VoidNumberRequest true "Void reason"
// @Success 200 {object} domain.NumberIssuanceDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /numbers/{kind}/{number}/void [post]
func (h *NumberHandler) Void(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid number kind: must be 'po' or 'dr'")
		return
	}

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid number: must be a positive integer")
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

	if err := h.numberService.Void(r.Context(), kind, number, req.Reason); err != nil {
		h.logger.Error("failed to void number", zap.Error(err),
			zap.String("kind", string(kind)), zap.Int("number", number))
		respondServiceError(w, err, "Failed to void number")
		return
	}

	issuance, err := h.numberService.Get(r.Context(), kind, number)
	if err != nil {
		respondServiceError(w, err, "Failed to load issuance")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToNumberIssuanceDTO(issuance))
}

// @Summary Release number
// @Description Deletes the issuance record and clears the number from any record carrying it, making it eligible for reservation again.
// @Tags Numbers
// @Param kind path string true "Number kind" Enums(po, dr)
// @Param number path int true "Number to release"
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /numbers/{kind}/{number} [delete]
func (h *NumberHandler) Release(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid number kind: must be 'po' or 'dr'")
		return
	}

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid number: must be a positive integer")
		return
	}

	if err := h.numberService.Release(r.Context(), kind, number); err != nil {
		h.logger.Error("failed to release number", zap.Error(err),
			zap.String("kind", string(kind)), zap.Int("number", number))
		respondServiceError(w, err, "Failed to release number")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary List issued numbers
// @Tags Numbers
// @Produce json
// @Param kind path string true "Number kind" Enums(po, dr)
// @Param limit query int false "Maximum rows" default(100)
// @Success 200 {object} domain.ListResponse[domain.NumberIssuanceDTO]
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /numbers/{kind} [get]
func (h *NumberHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid number kind: must be 'po' or 'dr'")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	issuances, err := h.numberService.List(r.Context(), kind, limit)
	if err != nil {
		h.logger.Error("failed to list issuances", zap.Error(err), zap.String("kind", string(kind)))
		respondServiceError(w, err, "Failed to list issued numbers")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse[domain.NumberIssuanceDTO]{
		Items: mapper.ToNumberIssuanceDTOs(issuances),
		Total: int64(len(issuances)),
	})
}

// @Summary Get issued number
// @Tags Numbers
// @Produce json
// @Param kind path string true "Number kind" Enums(po, dr)
// @Param number path int true "Number"
// @Success 200 {object} domain.NumberIssuanceDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /numbers/{kind}/{number} [get]
func (h *NumberHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid number kind: must be 'po' or 'dr'")
		return
	}

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid number: must be a positive integer")
		return
	}

	issuance, err := h.numberService.Get(r.Context(), kind, number)
	if err != nil {
		respondServiceError(w, err, "Failed to get issued number")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToNumberIssuanceDTO(issuance))
}
