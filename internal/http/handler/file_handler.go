package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meridian-steel/shop-api/internal/mapper"
	"github.com/meridian-steel/shop-api/internal/service"
)

type FileHandler struct {
	fileService *service.FileService
	maxUploadMB int64
	logger      *zap.Logger
}

func NewFileHandler(fileService *service.FileService, maxUploadMB int64, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		maxUploadMB: maxUploadMB,
		logger:      logger,
	}
}

// @Summary Upload file
// @Description Attaches a drawing or document to an estimate or work order.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param estimateId formData string false "Estimate ID to attach file to"
// @Param workOrderId formData string false "Work order ID to attach file to"
// @Success 201 {object} domain.FileDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /files/upload [post]
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	var estimateID, workOrderID *uuid.UUID
	if eid := r.FormValue("estimateId"); eid != "" {
		id, err := uuid.Parse(eid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid estimateId: must be a valid UUID")
			return
		}
		estimateID = &id
	}
	if wid := r.FormValue("workOrderId"); wid != "" {
		id, err := uuid.Parse(wid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid workOrderId: must be a valid UUID")
			return
		}
		workOrderID = &id
	}
	if estimateID == nil && workOrderID == nil {
		respondWithError(w, http.StatusBadRequest, "Either estimateId or workOrderId is required")
		return
	}

	uploaded, err := h.fileService.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file, estimateID, workOrderID)
	if err != nil {
		h.logger.Error("failed to upload file", zap.Error(err))
		respondServiceError(w, err, "Failed to upload file")
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToFileDTO(uploaded))
}

// @Summary Get file metadata
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} domain.FileDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /files/{id} [get]
func (h *FileHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file ID: must be a valid UUID")
		return
	}

	file, err := h.fileService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get file", zap.Error(err), zap.String("file_id", id.String()))
		respondServiceError(w, err, "Failed to get file")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToFileDTO(file))
}

// @Summary Download file
// @Tags Files
// @Produce application/octet-stream
// @Param id path string true "File ID"
// @Success 200
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /files/{id}/download [get]
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file ID: must be a valid UUID")
		return
	}

	file, reader, err := h.fileService.Download(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to download file", zap.Error(err), zap.String("file_id", id.String()))
		respondServiceError(w, err, "Failed to download file")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Disposition", "attachment; filename=\""+file.Filename+"\"")
	w.Header().Set("Content-Type", file.ContentType)

	_, _ = io.Copy(w, reader)
}

// @Summary Delete file
// @Tags Files
// @Param id path string true "File ID"
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /files/{id} [delete]
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file ID: must be a valid UUID")
		return
	}

	if err := h.fileService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete file", zap.Error(err), zap.String("file_id", id.String()))
		respondServiceError(w, err, "Failed to delete file")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary List files for an estimate
// @Tags Files
// @Produce json
// @Param id path string true "Estimate ID"
// @Success 200 {array} domain.FileDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /estimates/{id}/files [get]
func (h *FileHandler) ListByEstimate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid estimate ID: must be a valid UUID")
		return
	}

	files, err := h.fileService.ListByEstimate(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list estimate files", zap.Error(err), zap.String("estimate_id", id.String()))
		respondServiceError(w, err, "Failed to list files")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToFileDTOs(files))
}

// @Summary List files for a work order
// @Tags Files
// @Produce json
// @Param id path string true "Work order ID"
// @Success 200 {array} domain.FileDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /work-orders/{id}/files [get]
func (h *FileHandler) ListByWorkOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid work order ID: must be a valid UUID")
		return
	}

	files, err := h.fileService.ListByWorkOrder(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list work order files", zap.Error(err), zap.String("work_order_id", id.String()))
		respondServiceError(w, err, "Failed to list files")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToFileDTOs(files))
}
