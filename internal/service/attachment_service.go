package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/storage"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

// AttachmentService uploads ticket attachments to the object store.
type AttachmentService struct {
	store    storage.ObjectStore
	maxBytes int64
	logger   *zap.Logger
	now      func() time.Time
}

// NewAttachmentService builds the service. maxBytes <= 0 disables the limit.
func NewAttachmentService(store storage.ObjectStore, maxBytes int64, logger *zap.Logger) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentService{store: store, maxBytes: maxBytes, logger: logger, now: time.Now}
}

// Upload stores a file for actor under <user id>/<unix millis>_<uuid>.<ext>
// and returns its public URL.
func (s *AttachmentService) Upload(ctx context.Context, actor *domain.Profile, fileName string, size int64, r io.Reader) (string, error) {
	if actor == nil {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	if size <= 0 {
		return "", apperrors.NewValidationError("file is empty", map[string]any{"file": fileName})
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", apperrors.NewValidationError(
			fmt.Sprintf("file exceeds the %d MB limit", s.maxBytes/(1<<20)),
			map[string]any{"file": fileName, "size": size, "max_bytes": s.maxBytes})
	}

	key := s.Key(actor.ID, fileName)
	url, err := s.store.Put(ctx, key, r)
	if err != nil {
		s.logger.Error("attachment upload failed", zap.String("actor_id", actor.ID), zap.String("key", key), zap.Error(err))
		return "", apperrors.NewUnavailable("could not store the attachment: "+err.Error(), err)
	}
	return url, nil
}

// Key builds the storage key for a new upload.
func (s *AttachmentService) Key(userID, fileName string) string {
	key := fmt.Sprintf("%s/%d_%s", userID, s.now().UnixMilli(), uuid.NewString())
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext != "" && isSafeExt(ext) {
		key += "." + ext
	}
	return key
}

func isSafeExt(ext string) bool {
	if len(ext) > 10 {
		return false
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
