package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every specific error below wraps exactly one of them, so the
// transport maps errors with errors.Is against the kind.
var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidReference = errors.New("invalid reference")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
)

// Task errors
var (
	ErrTaskNotFound        = fmt.Errorf("task: %w", ErrNotFound)
	ErrTaskTitleRequired   = fmt.Errorf("task: title is required: %w", ErrInvalidInput)
	ErrTaskStatusRequired  = fmt.Errorf("task: status cannot be empty: %w", ErrInvalidInput)
	ErrTaskPriorityEmpty   = fmt.Errorf("task: priority cannot be empty: %w", ErrInvalidInput)
	ErrTaskAssigneeMissing = fmt.Errorf("task: assigned user does not exist: %w", ErrInvalidReference)
	ErrTaskLabelMissing    = fmt.Errorf("task: label does not exist: %w", ErrInvalidReference)
	ErrTaskAccessDenied    = fmt.Errorf("task: %w", ErrUnauthorized)
)

// Label errors
var (
	ErrLabelNotFound     = fmt.Errorf("label: %w", ErrNotFound)
	ErrLabelNameRequired = fmt.Errorf("label: name is required: %w", ErrInvalidInput)
	ErrLabelAccessDenied = fmt.Errorf("label: %w", ErrUnauthorized)
)

// Comment errors
var (
	ErrCommentNotFound       = fmt.Errorf("comment: %w", ErrNotFound)
	ErrCommentParentNotFound = fmt.Errorf("comment: parent %w", ErrNotFound)
	ErrCommentParentMismatch = fmt.Errorf("comment: parent belongs to another task: %w", ErrInvalidReference)
	ErrCommentEmpty          = fmt.Errorf("comment: content is required: %w", ErrInvalidInput)
	ErrCommentAccessDenied   = fmt.Errorf("comment: %w", ErrUnauthorized)
)

// Attachment errors
var (
	ErrAttachmentNotFound     = fmt.Errorf("attachment: %w", ErrNotFound)
	ErrAttachmentNameRequired = fmt.Errorf("attachment: file name is required: %w", ErrInvalidInput)
	ErrAttachmentAccessDenied = fmt.Errorf("attachment: %w", ErrUnauthorized)
)

// Notification errors
var (
	ErrNotificationNotFound     = fmt.Errorf("notification: %w", ErrNotFound)
	ErrNotificationAccessDenied = fmt.Errorf("notification: %w", ErrUnauthorized)
)

// User errors
var (
	ErrUserNotFound       = fmt.Errorf("user: %w", ErrNotFound)
	ErrUserEmailTaken     = fmt.Errorf("user: email already taken: %w", ErrConflict)
	ErrUserInvalidInput   = fmt.Errorf("user: name, email and password are required: %w", ErrInvalidInput)
	ErrUserInvalidRole    = fmt.Errorf("user: role must be ADMIN or EMPLOYEE: %w", ErrInvalidInput)
	ErrUserLastAdmin      = fmt.Errorf("user: cannot remove the last admin: %w", ErrConflict)
	ErrUserAccessDenied   = fmt.Errorf("user: %w", ErrUnauthorized)
	ErrInvalidCredentials = fmt.Errorf("auth: invalid email or password: %w", ErrUnauthorized)
)
