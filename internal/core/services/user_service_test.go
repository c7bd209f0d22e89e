package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
)

func newTestUserService(s *memStore) ports.UserService {
	return NewUserService(UserServiceConfig{Users: s.repos().Users, Hasher: fakeHasher{}})
}

func TestCreateUser(t *testing.T) {
	s := newMemStore()
	boss := s.addUser("Boss", domain.RoleAdmin)
	u7 := s.addUser("Sam", domain.RoleEmployee)
	svc := newTestUserService(s)
	ctx := context.Background()

	got, err := svc.CreateUser(ctx, admin(boss), ports.UserInput{Name: "Lee", Email: " Lee@Example.com ", Password: "pw"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if got.Email != "lee@example.com" || got.Role != domain.RoleEmployee || got.PasswordHash != "hashed:pw" {
		t.Fatalf("user = %+v", got)
	}

	tests := []struct {
		name   string
		caller domain.Caller
		input  ports.UserInput
		want   error
	}{
		{"employee caller", employee(u7), ports.UserInput{Name: "x", Email: "x@example.com", Password: "p"}, ErrUnauthorized},
		{"duplicate email", admin(boss), ports.UserInput{Name: "x", Email: "LEE@example.com", Password: "p"}, ErrConflict},
		{"bad email", admin(boss), ports.UserInput{Name: "x", Email: "nope", Password: "p"}, ErrInvalidInput},
		{"no password", admin(boss), ports.UserInput{Name: "x", Email: "y@example.com"}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateUser(ctx, tt.caller, tt.input); !errors.Is(err, tt.want) {
				t.Fatalf("CreateUser() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdateUser(t *testing.T) {
	s := newMemStore()
	boss := s.addUser("Boss", domain.RoleAdmin)
	u7 := s.addUser("Sam", domain.RoleEmployee)
	svc := newTestUserService(s)
	ctx := context.Background()

	got, err := svc.UpdateUser(ctx, admin(boss), u7.ID, ports.UserInput{Name: "Samuel", Email: u7.Email})
	if err != nil || got.Name != "Samuel" || got.PasswordHash != "hashed:secret" {
		t.Fatalf("UpdateUser(no password) = %+v, %v", got, err)
	}
	got, err = svc.UpdateUser(ctx, admin(boss), u7.ID, ports.UserInput{Name: "Samuel", Email: "sam@new.example", Password: "new"})
	if err != nil || got.Email != "sam@new.example" || got.PasswordHash != "hashed:new" {
		t.Fatalf("UpdateUser(all) = %+v, %v", got, err)
	}
	if _, err := svc.UpdateUser(ctx, admin(boss), u7.ID, ports.UserInput{Name: "S", Email: boss.Email}); !errors.Is(err, ErrConflict) {
		t.Fatalf("UpdateUser(taken email) error = %v, want ErrConflict", err)
	}
	if _, err := svc.UpdateUser(ctx, admin(boss), 999, ports.UserInput{Name: "S", Email: "s@example.com"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateUser(missing) error = %v, want ErrNotFound", err)
	}
}

func TestLastAdminGuard(t *testing.T) {
	s := newMemStore()
	boss := s.addUser("Boss", domain.RoleAdmin)
	u7 := s.addUser("Sam", domain.RoleEmployee)
	svc := newTestUserService(s)
	ctx := context.Background()

	if _, err := svc.UpdateRole(ctx, admin(boss), boss.ID, domain.RoleEmployee); !errors.Is(err, ErrConflict) {
		t.Fatalf("demote last admin error = %v, want ErrConflict", err)
	}
	if err := svc.DeleteUser(ctx, admin(boss), boss.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("delete last admin error = %v, want ErrConflict", err)
	}
	if _, err := svc.UpdateRole(ctx, admin(boss), u7.ID, "OWNER"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("UpdateRole(invalid) error = %v, want ErrInvalidInput", err)
	}

	promoted, err := svc.UpdateRole(ctx, admin(boss), u7.ID, domain.RoleAdmin)
	if err != nil || promoted.Role != domain.RoleAdmin {
		t.Fatalf("UpdateRole(promote) = %+v, %v", promoted, err)
	}
	demoted, err := svc.UpdateRole(ctx, admin(boss), boss.ID, domain.RoleEmployee)
	if err != nil || demoted.Role != domain.RoleEmployee {
		t.Fatalf("UpdateRole(demote with another admin) = %+v, %v", demoted, err)
	}
	if err := svc.DeleteUser(ctx, domain.Caller{UserID: u7.ID, Role: domain.RoleAdmin}, boss.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := svc.GetUser(ctx, admin(u7), boss.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetUser(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUserRemovesUploadedFiles(t *testing.T) {
	s := newMemStore()
	boss := s.addUser("Boss", domain.RoleAdmin)
	sam := s.addUser("Sam", domain.RoleEmployee)
	task := s.addTask("Report", domain.TaskStatusTodo, &sam.ID, testNow)
	files := newFakeFileStore()
	ctx := context.Background()

	repos := s.repos()
	for _, up := range []struct {
		key string
		by  uint
	}{{"sam-1", sam.ID}, {"sam-2", sam.ID}, {"boss-1", boss.ID}} {
		files.files[up.key] = []byte(up.key)
		a := domain.Attachment{FileName: up.key, StorageKey: up.key, TaskID: task.ID, UploadedByID: up.by, UploadedAt: testNow}
		if err := repos.Attachments.Create(ctx, &a); err != nil {
			t.Fatalf("Create attachment: %v", err)
		}
	}

	svc := NewUserService(UserServiceConfig{
		Users:       repos.Users,
		Hasher:      fakeHasher{},
		Attachments: repos.Attachments,
		Files:       files,
	})
	if err := svc.DeleteUser(ctx, admin(boss), sam.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, ok := files.files["boss-1"]; !ok {
		t.Fatal("other user's file was removed")
	}
	for _, key := range []string{"sam-1", "sam-2"} {
		if _, ok := files.files[key]; ok {
			t.Fatalf("file %s still stored", key)
		}
	}

	// A failing store does not fail the delete.
	files.failDelete = errors.New("disk gone")
	if err := svc.DeleteUser(ctx, admin(boss), boss.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("delete last admin error = %v, want ErrConflict", err)
	}
	other := s.addUser("Kim", domain.RoleEmployee)
	a := domain.Attachment{FileName: "k", StorageKey: "kim-1", TaskID: task.ID, UploadedByID: other.ID, UploadedAt: testNow}
	repos.Attachments.Create(ctx, &a)
	if err := svc.DeleteUser(ctx, admin(boss), other.ID); err != nil {
		t.Fatalf("DeleteUser with failing store: %v", err)
	}
}

func TestGetAndSearchUsers(t *testing.T) {
	s := newMemStore()
	boss := s.addUser("Boss", domain.RoleAdmin)
	u7 := s.addUser("Sam Smith", domain.RoleEmployee)
	s.addUser("Kim Smith", domain.RoleEmployee)
	svc := newTestUserService(s)
	ctx := context.Background()

	if _, err := svc.GetUser(ctx, employee(u7), u7.ID); err != nil {
		t.Fatalf("GetUser(self): %v", err)
	}
	if _, err := svc.GetUser(ctx, employee(u7), boss.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("GetUser(other) error = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.SearchUsers(ctx, employee(u7), "", nil, ports.PageRequest{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("SearchUsers(employee) error = %v, want ErrUnauthorized", err)
	}
	role := domain.RoleEmployee
	page, err := svc.SearchUsers(ctx, admin(boss), "smith", &role, ports.PageRequest{})
	if err != nil || page.TotalElements != 2 {
		t.Fatalf("SearchUsers = %+v, %v; want 2 employees", page, err)
	}
	bad := domain.UserRole("X")
	if _, err := svc.SearchUsers(ctx, admin(boss), "", &bad, ports.PageRequest{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("SearchUsers(bad role) error = %v, want ErrInvalidInput", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	s := newMemStore()
	svc := newTestUserService(s)
	ctx := context.Background()
	input := ports.UserInput{Name: "Root", Email: "root@example.com", Password: "pw"}

	created, err := svc.EnsureAdmin(ctx, input)
	if err != nil || created == nil || created.Role != domain.RoleAdmin {
		t.Fatalf("EnsureAdmin(first) = %+v, %v", created, err)
	}
	again, err := svc.EnsureAdmin(ctx, input)
	if err != nil || again != nil {
		t.Fatalf("EnsureAdmin(second) = %+v, %v; want nil, nil", again, err)
	}
	if len(s.users) != 1 {
		t.Fatalf("users = %d, want 1", len(s.users))
	}
}

func TestAuthService(t *testing.T) {
	s := newMemStore()
	expires := testNow.Add(time.Hour)
	svc := NewAuthService(AuthServiceConfig{Users: s.repos().Users, Hasher: fakeHasher{}, Tokens: fakeTokens{expires: expires}})
	ctx := context.Background()

	user, err := svc.Signup(ctx, ports.UserInput{Name: "Ana", Email: "Ana@Example.com", Password: "pw"})
	if err != nil || user.Role != domain.RoleEmployee {
		t.Fatalf("Signup = %+v, %v", user, err)
	}
	if _, err := svc.Signup(ctx, ports.UserInput{Name: "Ana", Email: "ana@example.com", Password: "pw"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("Signup(duplicate) error = %v, want ErrConflict", err)
	}

	res, err := svc.Login(ctx, "ANA@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "token-1-EMPLOYEE" || !res.ExpiresAt.Equal(expires) || res.User.ID != user.ID {
		t.Fatalf("Login = %+v", res)
	}
	if _, err := svc.Login(ctx, "ana@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login(bad password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "ghost@example.com", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login(unknown) error = %v, want ErrInvalidCredentials", err)
	}
}
