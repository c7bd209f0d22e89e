package domain

import (
	"time"
)

// ==================== ENUMS ====================

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleEmployee UserRole = "EMPLOYEE"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// TaskStatus is free-form: the four canonical values drive the board columns,
// any other caller-supplied value is stored as is.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

// CanonicalStatuses is the fixed board column order.
var CanonicalStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusInReview,
	TaskStatusDone,
}

const DefaultPriority = "MEDIUM"

// ==================== ENTITIES ====================

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name         string   `gorm:"size:255;not null" json:"name"`
	Email        string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"size:255" json:"-"`
	Role         UserRole `gorm:"size:20;not null;default:'EMPLOYEE';index" json:"role"`
}

type Label struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `gorm:"size:100;not null;index" json:"name"`
	Color string `gorm:"size:20" json:"color"`
}

type Task struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`

	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      TaskStatus `gorm:"size:50;not null;index" json:"status"`
	Priority    string     `gorm:"size:50;not null;index" json:"priority"`

	// Relationships
	AssignedToID *uint   `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedTo   *User   `gorm:"constraint:OnDelete:SET NULL" json:"assigned_to,omitempty"`
	CreatedByID  *uint   `gorm:"index" json:"created_by_id,omitempty"`
	CreatedBy    *User   `gorm:"constraint:OnDelete:SET NULL" json:"created_by,omitempty"`
	Labels       []Label `gorm:"many2many:task_labels" json:"labels,omitempty"`
}

// IsAssignedTo reports whether the task is currently assigned to userID.
func (t *Task) IsAssignedTo(userID uint) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}

func (t *Task) HasLabel(labelID uint) bool {
	for _, l := range t.Labels {
		if l.ID == labelID {
			return true
		}
	}
	return false
}

// TaskHistoryEntry is one audited field change. Rows are append-only and only
// disappear together with their task.
type TaskHistoryEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskID       uint      `gorm:"not null;index" json:"task_id"`
	ModifiedByID *uint     `gorm:"index" json:"modified_by_id,omitempty"`
	ModifiedBy   *User     `gorm:"constraint:OnDelete:SET NULL" json:"modified_by,omitempty"`
	Field        string    `gorm:"size:50;not null" json:"field"`
	OldValue     string    `gorm:"type:text" json:"old_value"`
	NewValue     string    `gorm:"type:text" json:"new_value"`
	ModifiedAt   time.Time `gorm:"not null;index" json:"modified_at"`
}

func (TaskHistoryEntry) TableName() string {
	return "task_history"
}

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;index" json:"created_at"`

	Message string `gorm:"type:text;not null" json:"message"`
	Read    bool   `gorm:"not null;default:false;index" json:"read"`

	UserID uint  `gorm:"not null;index" json:"user_id"`
	User   *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TaskID *uint `gorm:"index" json:"task_id,omitempty"`
	Task   *Task `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Content     string `gorm:"type:text;not null" json:"content"`
	TaskID      uint   `gorm:"not null;index" json:"task_id"`
	CreatedByID uint   `gorm:"not null;index" json:"created_by_id"`
	CreatedBy   *User  `gorm:"constraint:OnDelete:CASCADE" json:"created_by,omitempty"`
	// ParentID links a reply to the comment it answers; threads are rebuilt
	// from parent ids, never from embedded pointers.
	ParentID *uint `gorm:"index" json:"parent_id,omitempty"`
}

type Attachment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`

	FileName   string `gorm:"size:255;not null" json:"file_name"`
	FileType   string `gorm:"size:255" json:"file_type"`
	FileSize   int64  `gorm:"not null" json:"file_size"`
	StorageKey string `gorm:"size:255;not null;uniqueIndex" json:"-"`

	TaskID       uint  `gorm:"not null;index" json:"task_id"`
	UploadedByID uint  `gorm:"not null;index" json:"uploaded_by_id"`
	UploadedBy   *User `gorm:"constraint:OnDelete:CASCADE" json:"uploaded_by,omitempty"`
}
