package ports

import (
	"context"
	"io"
	"time"

	"github.com/taskboard/backend/internal/domain"
)

// ==================== TASKS ====================

type TaskService interface {
	CreateTask(ctx context.Context, caller domain.Caller, input CreateTaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, caller domain.Caller, id uint, input UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, caller domain.Caller, id uint) error
	GetTask(ctx context.Context, caller domain.Caller, id uint) (*domain.Task, error)
	ListTasks(ctx context.Context, caller domain.Caller, page PageRequest) (Page[domain.Task], error)
	ListTasksByUser(ctx context.Context, caller domain.Caller, userID uint, page PageRequest) (Page[domain.Task], error)
	SearchTasks(ctx context.Context, caller domain.Caller, filter TaskFilter, page PageRequest) (Page[domain.Task], error)
	AddLabel(ctx context.Context, caller domain.Caller, taskID, labelID uint) (*domain.Task, error)
	RemoveLabel(ctx context.Context, caller domain.Caller, taskID, labelID uint) (*domain.Task, error)
	GetHistory(ctx context.Context, caller domain.Caller, taskID uint, page PageRequest) (Page[domain.TaskHistoryEntry], error)
	GetBoard(ctx context.Context, caller domain.Caller) (Board, error)
	GetAnalytics(ctx context.Context, caller domain.Caller, timeFrame string) (*Analytics, error)
}

type CreateTaskInput struct {
	Title        string
	Description  string
	DueDate      *time.Time
	Status       domain.TaskStatus
	Priority     string
	AssignedToID *uint
	LabelIDs     []uint
}

// UpdateTaskInput is a change set: only fields with Set=true are part of the
// request.
type UpdateTaskInput struct {
	Title        domain.Optional[string]
	Description  domain.Optional[string]
	Status       domain.Optional[domain.TaskStatus]
	Priority     domain.Optional[string]
	DueDate      domain.Optional[time.Time]
	AssignedToID domain.Optional[uint]
}

// Fields lists the names of the fields present in the change set.
func (in UpdateTaskInput) Fields() []string {
	var fields []string
	if in.Title.Set {
		fields = append(fields, "title")
	}
	if in.Description.Set {
		fields = append(fields, "description")
	}
	if in.Status.Set {
		fields = append(fields, "status")
	}
	if in.Priority.Set {
		fields = append(fields, "priority")
	}
	if in.DueDate.Set {
		fields = append(fields, "dueDate")
	}
	if in.AssignedToID.Set {
		fields = append(fields, "assignedTo")
	}
	return fields
}

type BoardColumn struct {
	Status domain.TaskStatus
	Tasks  []domain.Task
}

// Board keeps its columns in display order: the canonical statuses first,
// then any other status in first-seen order.
type Board struct {
	Columns []BoardColumn
}

func (b Board) Column(status domain.TaskStatus) ([]domain.Task, bool) {
	for _, c := range b.Columns {
		if c.Status == status {
			return c.Tasks, true
		}
	}
	return nil, false
}

type Analytics struct {
	TotalTasks      int              `json:"total_tasks"`
	TasksByStatus   map[string]int64 `json:"tasks_by_status"`
	TasksByPriority map[string]int64 `json:"tasks_by_priority"`
	TasksByUser     map[string]int64 `json:"tasks_by_user"`
	TasksByDate     map[string]int64 `json:"tasks_by_date"`
	TimeFrame       string           `json:"time_frame"`
}

// ==================== PAGINATION ====================

type Page[T any] struct {
	Items         []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Items:         items,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// ==================== LABELS ====================

type LabelService interface {
	CreateLabel(ctx context.Context, caller domain.Caller, input LabelInput) (*domain.Label, error)
	UpdateLabel(ctx context.Context, caller domain.Caller, id uint, input LabelInput) (*domain.Label, error)
	DeleteLabel(ctx context.Context, caller domain.Caller, id uint) error
	GetLabel(ctx context.Context, id uint) (*domain.Label, error)
	ListLabels(ctx context.Context, page PageRequest) (Page[domain.Label], error)
	SearchLabels(ctx context.Context, name string) ([]domain.Label, error)
	GetTaskLabels(ctx context.Context, caller domain.Caller, taskID uint) ([]domain.Label, error)
}

type LabelInput struct {
	Name  string
	Color string
}

// ==================== COMMENTS ====================

type CommentService interface {
	CreateComment(ctx context.Context, caller domain.Caller, input CreateCommentInput) (*domain.Comment, error)
	UpdateComment(ctx context.Context, caller domain.Caller, id uint, content string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, caller domain.Caller, id uint) error
	GetComment(ctx context.Context, caller domain.Caller, id uint) (*domain.Comment, error)
	GetThread(ctx context.Context, caller domain.Caller, taskID uint) ([]CommentNode, error)
	ListComments(ctx context.Context, caller domain.Caller, taskID uint, page PageRequest) (Page[domain.Comment], error)
}

type CreateCommentInput struct {
	TaskID   uint
	ParentID *uint
	Content  string
}

type CommentNode struct {
	Comment domain.Comment
	Replies []CommentNode
}

// ==================== ATTACHMENTS ====================

type AttachmentService interface {
	Upload(ctx context.Context, caller domain.Caller, input UploadAttachmentInput) (*domain.Attachment, error)
	GetAttachment(ctx context.Context, caller domain.Caller, id uint) (*domain.Attachment, error)
	OpenAttachment(ctx context.Context, caller domain.Caller, id uint) (*domain.Attachment, io.ReadCloser, error)
	ListByTask(ctx context.Context, caller domain.Caller, taskID uint, page PageRequest) (Page[domain.Attachment], error)
	DeleteAttachment(ctx context.Context, caller domain.Caller, id uint) error
}

type UploadAttachmentInput struct {
	TaskID   uint
	FileName string
	FileType string
	Content  io.Reader
}

// ==================== NOTIFICATIONS ====================

type NotificationService interface {
	ListForUser(ctx context.Context, caller domain.Caller, userID uint, unreadOnly bool, page PageRequest) (Page[domain.Notification], error)
	CountUnread(ctx context.Context, caller domain.Caller, userID uint) (int64, error)
	GetNotification(ctx context.Context, caller domain.Caller, id uint) (*domain.Notification, error)
	MarkAsRead(ctx context.Context, caller domain.Caller, id uint) (*domain.Notification, error)
	DeleteNotification(ctx context.Context, caller domain.Caller, id uint) error
}

// ==================== USERS & AUTH ====================

type UserService interface {
	CreateUser(ctx context.Context, caller domain.Caller, input UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, caller domain.Caller, id uint, input UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, caller domain.Caller, id uint) error
	GetUser(ctx context.Context, caller domain.Caller, id uint) (*domain.User, error)
	SearchUsers(ctx context.Context, caller domain.Caller, query string, role *domain.UserRole, page PageRequest) (Page[domain.User], error)
	UpdateRole(ctx context.Context, caller domain.Caller, id uint, role domain.UserRole) (*domain.User, error)
	EnsureAdmin(ctx context.Context, input UserInput) (*domain.User, error)
}

type UserInput struct {
	Name     string
	Email    string
	Password string
}

type AuthService interface {
	Signup(ctx context.Context, input UserInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type TokenIssuer interface {
	Issue(caller domain.Caller) (string, time.Time, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
