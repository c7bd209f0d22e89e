package dto

import (
	"strings"
	"time"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
)

// ==================== LABELS ====================

type LabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (r *LabelRequest) Validate() []string {
	if strings.TrimSpace(r.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

type LabelResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func LabelToResponse(l *domain.Label) LabelResponse {
	return LabelResponse{ID: l.ID, Name: l.Name, Color: l.Color}
}

func LabelsToResponse(labels []domain.Label) []LabelResponse {
	out := make([]LabelResponse, 0, len(labels))
	for i := range labels {
		out = append(out, LabelToResponse(&labels[i]))
	}
	return out
}

// ==================== COMMENTS ====================

type CreateCommentRequest struct {
	TaskID   uint   `json:"task_id"`
	ParentID *uint  `json:"parent_id,omitempty"`
	Content  string `json:"content"`
}

func (r *CreateCommentRequest) Validate() []string {
	var errors []string
	if r.TaskID == 0 {
		errors = append(errors, "task_id is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		errors = append(errors, "content is required")
	}
	return errors
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

type CommentResponse struct {
	ID        uint         `json:"id"`
	TaskID    uint         `json:"task_id"`
	ParentID  *uint        `json:"parent_id"`
	Content   string       `json:"content"`
	CreatedBy *UserSummary `json:"created_by"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func CommentToResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		CreatedBy: UserSummaryOf(c.CreatedBy),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type CommentNodeResponse struct {
	CommentResponse
	Replies []CommentNodeResponse `json:"replies"`
}

func ThreadToResponse(nodes []ports.CommentNode) []CommentNodeResponse {
	out := make([]CommentNodeResponse, 0, len(nodes))
	for i := range nodes {
		out = append(out, CommentNodeResponse{
			CommentResponse: CommentToResponse(&nodes[i].Comment),
			Replies:         ThreadToResponse(nodes[i].Replies),
		})
	}
	return out
}

// ==================== ATTACHMENTS ====================

type AttachmentResponse struct {
	ID         uint         `json:"id"`
	TaskID     uint         `json:"task_id"`
	FileName   string       `json:"file_name"`
	FileType   string       `json:"file_type"`
	FileSize   int64        `json:"file_size"`
	UploadedBy *UserSummary `json:"uploaded_by"`
	UploadedAt time.Time    `json:"uploaded_at"`
}

func AttachmentToResponse(a *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:         a.ID,
		TaskID:     a.TaskID,
		FileName:   a.FileName,
		FileType:   a.FileType,
		FileSize:   a.FileSize,
		UploadedBy: UserSummaryOf(a.UploadedBy),
		UploadedAt: a.UploadedAt,
	}
}

// ==================== NOTIFICATIONS ====================

type NotificationResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	TaskID    *uint     `json:"task_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func NotificationToResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		TaskID:    n.TaskID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// ==================== USERS & AUTH ====================

type UserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *UserRequest) ToInput() ports.UserInput {
	return ports.UserInput{Name: r.Name, Email: r.Email, Password: r.Password}
}

type RoleRequest struct {
	Role string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func UserToResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role), CreatedAt: u.CreatedAt}
}

type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
