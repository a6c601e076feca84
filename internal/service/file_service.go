package service

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/repository"
	"github.com/meridian-steel/shop-api/internal/storage"
)

// FileService handles drawings and documents attached to estimates and work
// orders.
type FileService struct {
	fileRepo      *repository.FileRepository
	store         storage.Storage
	maxUploadSize int64
	logger        *zap.Logger
}

func NewFileService(fileRepo *repository.FileRepository, store storage.Storage, maxUploadSizeMB int64, logger *zap.Logger) *FileService {
	return &FileService{
		fileRepo:      fileRepo,
		store:         store,
		maxUploadSize: maxUploadSizeMB * 1024 * 1024,
		logger:        logger,
	}
}

// Upload stores the file content and records its metadata. Exactly one of
// estimateID/workOrderID should be set by the caller.
func (s *FileService) Upload(ctx context.Context, filename, contentType string, data io.Reader, estimateID, workOrderID *uuid.UUID) (*domain.File, error) {
	limited := io.LimitReader(data, s.maxUploadSize+1)

	storagePath, size, err := s.store.Upload(ctx, filename, contentType, limited)
	if err != nil {
		return nil, err
	}
	if size > s.maxUploadSize {
		_ = s.store.Delete(ctx, storagePath)
		return nil, ErrFileTooLarge
	}

	file := &domain.File{
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
		EstimateID:  estimateID,
		WorkOrderID: workOrderID,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		_ = s.store.Delete(ctx, storagePath)
		return nil, err
	}

	s.logger.Info("Uploaded file",
		zap.String("file_id", file.ID.String()),
		zap.String("filename", filename),
		zap.Int64("size", size),
	)
	return file, nil
}

// Download streams the file content. Callers own closing the reader.
func (s *FileService) Download(ctx context.Context, id uuid.UUID) (*domain.File, io.ReadCloser, error) {
	file, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return file, rc, nil
}

func (s *FileService) GetByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (s *FileService) Delete(ctx context.Context, id uuid.UUID) error {
	file, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.fileRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, file.StoragePath); err != nil {
		// Metadata is gone; log the orphaned blob rather than failing the request.
		s.logger.Warn("Failed to delete stored file",
			zap.String("file_id", id.String()),
			zap.String("storage_path", file.StoragePath),
			zap.Error(err),
		)
	}
	return nil
}

func (s *FileService) ListByEstimate(ctx context.Context, estimateID uuid.UUID) ([]domain.File, error) {
	return s.fileRepo.ListByEstimate(ctx, estimateID)
}

func (s *FileService) ListByWorkOrder(ctx context.Context, workOrderID uuid.UUID) ([]domain.File, error) {
	return s.fileRepo.ListByWorkOrder(ctx, workOrderID)
}
