package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kadrohq/kadro/internal/storage"
	"github.com/kadrohq/kadro/internal/utils"
)

const presignTTL = 10 * time.Minute

// PresignedUpload is the destination handed to a client for a direct PUT.
type PresignedUpload struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type UploadService interface {
	Presign(ctx context.Context, fileName, contentType string) (*PresignedUpload, error)
}

type uploadService struct {
	presigner storage.Presigner
}

func NewUploadService(p storage.Presigner) UploadService {
	return &uploadService{presigner: p}
}

func (s *uploadService) Presign(ctx context.Context, fileName, contentType string) (*PresignedUpload, error) {
	const op = "UploadService.Presign"

	if fileName == "" || contentType == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file_name and content_type are required", nil)
	}

	key := fmt.Sprintf("uploads/%s/%s_%s", time.Now().UTC().Format("20060102"), uuid.NewString(), fileName)
	url, err := s.presigner.SignedPutURL(ctx, key, contentType, presignTTL)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to presign upload", err)
	}
	return &PresignedUpload{URL: url, Key: key}, nil
}
