package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
)

func TestAttachmentLifecycle(t *testing.T) {
	s := newMemStore()
	boss := s.addUser("Boss", domain.RoleAdmin)
	u7 := s.addUser("Sam", domain.RoleEmployee)
	u9 := s.addUser("Kim", domain.RoleEmployee)
	task := s.addTask("Files", domain.TaskStatusTodo, &u7.ID, testNow)
	files := newFakeFileStore()
	repos := s.repos()
	svc := NewAttachmentService(AttachmentServiceConfig{
		Attachments: repos.Attachments,
		Tasks:       repos.Tasks,
		Files:       files,
		Now:         fixedClock,
		NewKey:      sequentialKeys("fixed-key", "admin-key"),
	})
	ctx := context.Background()

	a, err := svc.Upload(ctx, employee(u7), ports.UploadAttachmentInput{
		TaskID:   task.ID,
		FileName: "../../Report.PDF",
		FileType: "application/pdf",
		Content:  strings.NewReader("hello"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if a.FileName != "Report.PDF" || a.StorageKey != "fixed-key.pdf" || a.FileSize != 5 || a.UploadedByID != u7.ID {
		t.Fatalf("attachment = %+v", a)
	}
	if !a.UploadedAt.Equal(testNow) {
		t.Fatalf("UploadedAt = %v, want %v", a.UploadedAt, testNow)
	}

	meta, rc, err := svc.OpenAttachment(ctx, admin(boss), a.ID)
	if err != nil {
		t.Fatalf("OpenAttachment: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "hello" || meta.ID != a.ID {
		t.Fatalf("content = %q, want hello", data)
	}

	if _, err := svc.GetAttachment(ctx, employee(u9), a.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("GetAttachment(stranger) error = %v, want ErrUnauthorized", err)
	}
	page, err := svc.ListByTask(ctx, employee(u7), task.ID, ports.PageRequest{})
	if err != nil || page.TotalElements != 1 {
		t.Fatalf("ListByTask = %+v, %v", page, err)
	}

	// An admin's upload on the same task is not the employee's to delete.
	other, err := svc.Upload(ctx, admin(boss), ports.UploadAttachmentInput{
		TaskID: task.ID, FileName: "notes.txt", Content: strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("Upload(admin): %v", err)
	}
	delete(files.files, other.StorageKey)
	if _, _, err := svc.OpenAttachment(ctx, admin(boss), other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("OpenAttachment(missing content) error = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteAttachment(ctx, employee(u7), other.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("DeleteAttachment(not uploader) error = %v, want ErrUnauthorized", err)
	}
	if err := svc.DeleteAttachment(ctx, employee(u9), a.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("DeleteAttachment(stranger) error = %v, want ErrUnauthorized", err)
	}
	files.failDelete = errors.New("remote gone")
	if err := svc.DeleteAttachment(ctx, admin(boss), a.ID); err != nil {
		t.Fatalf("DeleteAttachment: %v", err)
	}
	if len(s.attachments) != 1 || s.attachments[0].ID != other.ID {
		t.Fatalf("attachments = %+v, want only the admin upload", s.attachments)
	}
	if len(files.deleted) != 1 || files.deleted[0] != "fixed-key.pdf" {
		t.Fatalf("deleted keys = %v", files.deleted)
	}
}

func sequentialKeys(keys ...string) func() string {
	i := 0
	return func() string {
		k := keys[i%len(keys)]
		i++
		return k
	}
}

func TestUploadRejects(t *testing.T) {
	s := newMemStore()
	u7 := s.addUser("Sam", domain.RoleEmployee)
	u9 := s.addUser("Kim", domain.RoleEmployee)
	task := s.addTask("Files", domain.TaskStatusTodo, &u7.ID, testNow)
	files := newFakeFileStore()
	repos := s.repos()
	svc := NewAttachmentService(AttachmentServiceConfig{Attachments: repos.Attachments, Tasks: repos.Tasks, Files: files})
	ctx := context.Background()

	tests := []struct {
		name   string
		caller domain.Caller
		input  ports.UploadAttachmentInput
		want   error
	}{
		{"no name", employee(u7), ports.UploadAttachmentInput{TaskID: task.ID, Content: strings.NewReader("x")}, ErrInvalidInput},
		{"missing task", employee(u7), ports.UploadAttachmentInput{TaskID: 999, FileName: "a.txt", Content: strings.NewReader("x")}, ErrNotFound},
		{"foreign task", employee(u9), ports.UploadAttachmentInput{TaskID: task.ID, FileName: "a.txt", Content: strings.NewReader("x")}, ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Upload(ctx, tt.caller, tt.input); !errors.Is(err, tt.want) {
				t.Fatalf("Upload() error = %v, want %v", err, tt.want)
			}
		})
	}
	if len(files.files) != 0 {
		t.Fatalf("stored files = %d, want 0", len(files.files))
	}
}
