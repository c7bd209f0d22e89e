package services

import (
	"context"
	"errors"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
)

type NotificationServiceConfig struct {
	Notifications ports.NotificationRepository
	Logger        *logger.Logger
	Pager         Pager
}

// notificationService is the read side of the inbox. Records are only written
// by the fanout.
type notificationService struct {
	repo   ports.NotificationRepository
	logger *logger.Logger
	pager  Pager
}

func NewNotificationService(cfg NotificationServiceConfig) ports.NotificationService {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	pager := cfg.Pager
	if pager.DefaultSize == 0 {
		pager = DefaultPager()
	}
	return &notificationService{repo: cfg.Notifications, logger: log, pager: pager}
}

func canReadInbox(caller domain.Caller, userID uint) bool {
	return caller.IsAdmin() || caller.UserID == userID
}

func (s *notificationService) load(ctx context.Context, caller domain.Caller, id uint) (*domain.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ports.ErrRecordNotFound) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	if !canReadInbox(caller, n.UserID) {
		return nil, ErrNotificationAccessDenied
	}
	return n, nil
}

// ListForUser returns newest notifications first.
func (s *notificationService) ListForUser(ctx context.Context, caller domain.Caller, userID uint, unreadOnly bool, page ports.PageRequest) (ports.Page[domain.Notification], error) {
	if !canReadInbox(caller, userID) {
		return ports.Page[domain.Notification]{}, ErrNotificationAccessDenied
	}
	page = s.pager.Clamp(page)
	items, total, err := s.repo.GetByUser(ctx, userID, unreadOnly, page)
	if err != nil {
		return ports.Page[domain.Notification]{}, err
	}
	return ports.NewPage(items, page, total), nil
}

func (s *notificationService) CountUnread(ctx context.Context, caller domain.Caller, userID uint) (int64, error) {
	if !canReadInbox(caller, userID) {
		return 0, ErrNotificationAccessDenied
	}
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) GetNotification(ctx context.Context, caller domain.Caller, id uint) (*domain.Notification, error) {
	return s.load(ctx, caller, id)
}

// MarkAsRead flips the read flag; it is the only change a notification ever
// sees.
func (s *notificationService) MarkAsRead(ctx context.Context, caller domain.Caller, id uint) (*domain.Notification, error) {
	n, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	n.Read = true
	return n, nil
}

func (s *notificationService) DeleteNotification(ctx context.Context, caller domain.Caller, id uint) error {
	if _, err := s.load(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("notification_deleted", "notification_id", id, "caller_id", caller.UserID)
	return nil
}
