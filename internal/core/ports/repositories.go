package ports

import (
	"context"
	"errors"
	"io"

	"github.com/taskboard/backend/internal/domain"
)

// ErrRecordNotFound is returned by repositories when a lookup by id or key
// matches nothing.
var ErrRecordNotFound = errors.New("record not found")

// PageRequest is a zero-based page index and a page size.
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

type TaskFilter struct {
	Title        string
	Description  string
	Status       string
	Priority     string
	LabelIDs     []uint
	AssignedToID *uint
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id uint) (*domain.Task, error)
	Exists(ctx context.Context, id uint) (bool, error)
	GetAll(ctx context.Context) ([]domain.Task, error)
	Find(ctx context.Context, filter TaskFilter, page PageRequest) ([]domain.Task, int64, error)
	Update(ctx context.Context, task *domain.Task) error
	AddLabel(ctx context.Context, task *domain.Task, label *domain.Label) error
	RemoveLabel(ctx context.Context, task *domain.Task, label *domain.Label) error
	ClearLabels(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id uint) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error)
	CountByRole(ctx context.Context, role domain.UserRole) (int64, error)
	Search(ctx context.Context, query string, role *domain.UserRole, page PageRequest) ([]domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uint) error
}

type LabelRepository interface {
	Create(ctx context.Context, label *domain.Label) error
	GetByID(ctx context.Context, id uint) (*domain.Label, error)
	GetByIDs(ctx context.Context, ids []uint) ([]domain.Label, error)
	List(ctx context.Context, page PageRequest) ([]domain.Label, int64, error)
	SearchByName(ctx context.Context, name string) ([]domain.Label, error)
	Update(ctx context.Context, label *domain.Label) error
	Delete(ctx context.Context, id uint) error
}

type TaskHistoryRepository interface {
	Create(ctx context.Context, entry *domain.TaskHistoryEntry) error
	GetByTask(ctx context.Context, taskID uint, page PageRequest) ([]domain.TaskHistoryEntry, int64, error)
	DeleteByTask(ctx context.Context, taskID uint) error
}

// NotificationRepository is also the sink the fanout writes into.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id uint) (*domain.Notification, error)
	GetByUser(ctx context.Context, userID uint, unreadOnly bool, page PageRequest) ([]domain.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id uint) error
	DetachTask(ctx context.Context, taskID uint) error
	Delete(ctx context.Context, id uint) error
}

type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) error
	GetByID(ctx context.Context, id uint) (*domain.Comment, error)
	GetByTask(ctx context.Context, taskID uint) ([]domain.Comment, error)
	GetByTaskPaged(ctx context.Context, taskID uint, page PageRequest) ([]domain.Comment, int64, error)
	Update(ctx context.Context, c *domain.Comment) error
	Delete(ctx context.Context, ids ...uint) error
	DeleteByTask(ctx context.Context, taskID uint) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, a *domain.Attachment) error
	GetByID(ctx context.Context, id uint) (*domain.Attachment, error)
	GetByTask(ctx context.Context, taskID uint) ([]domain.Attachment, error)
	GetByTaskPaged(ctx context.Context, taskID uint, page PageRequest) ([]domain.Attachment, int64, error)
	GetByUploader(ctx context.Context, userID uint) ([]domain.Attachment, error)
	Delete(ctx context.Context, id uint) error
	DeleteByTask(ctx context.Context, taskID uint) error
}

// Repositories groups every repository bound to the same connection or
// transaction.
type Repositories struct {
	Tasks         TaskRepository
	Users         UserRepository
	Labels        LabelRepository
	History       TaskHistoryRepository
	Notifications NotificationRepository
	Comments      CommentRepository
	Attachments   AttachmentRepository
}

// UnitOfWork runs fn against transaction-bound repositories. Either every
// write made through them commits or none does.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos Repositories) error) error
}

// FileStore holds attachment content outside the database.
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
