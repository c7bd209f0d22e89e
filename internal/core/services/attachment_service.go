package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
)

type AttachmentServiceConfig struct {
	Attachments ports.AttachmentRepository
	Tasks       ports.TaskRepository
	Files       ports.FileStore
	Logger      *logger.Logger
	Pager       Pager
	Now         func() time.Time
	NewKey      func() string
}

type attachmentService struct {
	repo   ports.AttachmentRepository
	tasks  ports.TaskRepository
	files  ports.FileStore
	authz  *Authorizer
	logger *logger.Logger
	pager  Pager
	now    func() time.Time
	newKey func() string
}

func NewAttachmentService(cfg AttachmentServiceConfig) ports.AttachmentService {
	s := &attachmentService{
		repo:   cfg.Attachments,
		tasks:  cfg.Tasks,
		files:  cfg.Files,
		authz:  NewAuthorizer(),
		logger: cfg.Logger,
		pager:  cfg.Pager,
		now:    cfg.Now,
		newKey: cfg.NewKey,
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	if s.pager.DefaultSize == 0 {
		s.pager = DefaultPager()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newKey == nil {
		s.newKey = func() string { return uuid.New().String() }
	}
	return s
}

// storageKey is a fresh unique name that keeps the original extension.
func (s *attachmentService) storageKey(fileName string) string {
	return s.newKey() + strings.ToLower(filepath.Ext(fileName))
}

func (s *attachmentService) authorizeTask(ctx context.Context, caller domain.Caller, taskID uint) error {
	task, err := loadTask(ctx, s.tasks, taskID)
	if err != nil {
		return err
	}
	return s.authz.AuthorizeView(caller, task).Err(ErrAttachmentAccessDenied)
}

func (s *attachmentService) load(ctx context.Context, caller domain.Caller, id uint) (*domain.Attachment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ports.ErrRecordNotFound) {
		return nil, ErrAttachmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.authorizeTask(ctx, caller, a.TaskID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *attachmentService) Upload(ctx context.Context, caller domain.Caller, input ports.UploadAttachmentInput) (*domain.Attachment, error) {
	name := filepath.Base(strings.TrimSpace(input.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, ErrAttachmentNameRequired
	}
	if err := s.authorizeTask(ctx, caller, input.TaskID); err != nil {
		return nil, err
	}

	key := s.storageKey(name)
	size, err := s.files.Save(ctx, key, input.Content)
	if err != nil {
		s.logger.Errorw("attachment_store_failed", "task_id", input.TaskID, "storage_key", key, "error", err)
		return nil, err
	}

	a := &domain.Attachment{
		FileName:     name,
		FileType:     input.FileType,
		FileSize:     size,
		StorageKey:   key,
		TaskID:       input.TaskID,
		UploadedByID: caller.UserID,
		UploadedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			s.logger.Warnw("attachment_orphan_file", "storage_key", key, "error", delErr)
		}
		return nil, err
	}
	s.logger.Infow("attachment_uploaded", "attachment_id", a.ID, "task_id", a.TaskID, "size", size)
	return a, nil
}

func (s *attachmentService) GetAttachment(ctx context.Context, caller domain.Caller, id uint) (*domain.Attachment, error) {
	return s.load(ctx, caller, id)
}

// OpenAttachment returns the metadata and a reader over the stored content.
// The caller closes the reader.
func (s *attachmentService) OpenAttachment(ctx context.Context, caller domain.Caller, id uint) (*domain.Attachment, io.ReadCloser, error) {
	a, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.files.Open(ctx, a.StorageKey)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Errorw("attachment_content_missing", "id", a.ID, "key", a.StorageKey)
		return nil, nil, fmt.Errorf("%w: content missing", ErrAttachmentNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	return a, rc, nil
}

func (s *attachmentService) ListByTask(ctx context.Context, caller domain.Caller, taskID uint, page ports.PageRequest) (ports.Page[domain.Attachment], error) {
	if err := s.authorizeTask(ctx, caller, taskID); err != nil {
		return ports.Page[domain.Attachment]{}, err
	}
	page = s.pager.Clamp(page)
	items, total, err := s.repo.GetByTaskPaged(ctx, taskID, page)
	if err != nil {
		return ports.Page[domain.Attachment]{}, err
	}
	return ports.NewPage(items, page, total), nil
}

// DeleteAttachment is allowed to the uploader and to admins. A file that
// cannot be removed from the store is logged and the record is deleted anyway.
func (s *attachmentService) DeleteAttachment(ctx context.Context, caller domain.Caller, id uint) error {
	a, err := s.load(ctx, caller, id)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() && a.UploadedByID != caller.UserID {
		return ErrAttachmentAccessDenied
	}
	if err := s.files.Delete(ctx, a.StorageKey); err != nil {
		s.logger.Warnw("attachment_file_delete_failed", "attachment_id", id, "storage_key", a.StorageKey, "error", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("attachment_deleted", "attachment_id", id, "caller_id", caller.UserID)
	return nil
}
