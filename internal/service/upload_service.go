package service

import (
	"context"
	"errors"
	"strings"

	"github.com/simonbalanoff/SigEpRush-API/config"
	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/pkg/storage"
)

var (
	ErrStorageDisabled    = errors.New("photo storage is not configured")
	ErrInvalidContentType = errors.New("content type must be an image")
)

// UploadService hands out presigned POST policies for candidate photos.
// Bytes never pass through the API.
type UploadService interface {
	Presign(ctx context.Context, req *dto.PresignRequest) (*dto.PresignResponse, error)
}

type uploadService struct {
	cfg   *config.StorageConfig
	store ObjectStore
}

// NewUploadService creates an UploadService. store may be nil.
func NewUploadService(cfg *config.StorageConfig, store ObjectStore) UploadService {
	return &uploadService{cfg: cfg, store: store}
}

func (s *uploadService) Presign(ctx context.Context, req *dto.PresignRequest) (*dto.PresignResponse, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidContentType
	}

	maxBytes := req.MaxBytes
	if maxBytes <= 0 || maxBytes > s.cfg.MaxUploadBytes {
		maxBytes = s.cfg.MaxUploadBytes
	}

	up, err := s.store.Presign(ctx, contentType, s.cfg.KeyPrefix, maxBytes)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidContentType) {
			return nil, ErrInvalidContentType
		}
		return nil, err
	}

	return &dto.PresignResponse{
		Key:       up.Key,
		UploadURL: up.UploadURL,
		Fields:    up.Fields,
		PublicURL: up.PublicURL,
		ExpiresIn: up.ExpiresIn,
	}, nil
}
