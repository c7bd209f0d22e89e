package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
)

type UserServiceConfig struct {
	Users  ports.UserRepository
	Hasher ports.PasswordHasher
	// Attachments and Files are optional. When both are set, deleting a user
	// also removes the content of the files they uploaded.
	Attachments ports.AttachmentRepository
	Files       ports.FileStore
	Logger      *logger.Logger
	Pager       Pager
}

type userService struct {
	users       ports.UserRepository
	hasher      ports.PasswordHasher
	attachments ports.AttachmentRepository
	files       ports.FileStore
	logger      *logger.Logger
	pager       Pager
}

func NewUserService(cfg UserServiceConfig) ports.UserService {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	pager := cfg.Pager
	if pager.DefaultSize == 0 {
		pager = DefaultPager()
	}
	return &userService{
		users:       cfg.Users,
		hasher:      cfg.Hasher,
		attachments: cfg.Attachments,
		files:       cfg.Files,
		logger:      log,
		pager:       pager,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func loadUser(ctx context.Context, users ports.UserRepository, id uint) (*domain.User, error) {
	u, err := users.GetByID(ctx, id)
	if errors.Is(err, ports.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func emailTaken(ctx context.Context, users ports.UserRepository, email string) (bool, error) {
	_, err := users.GetByEmail(ctx, email)
	if errors.Is(err, ports.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// registerUser validates input and stores a new account with role.
func registerUser(ctx context.Context, users ports.UserRepository, hasher ports.PasswordHasher, input ports.UserInput, role domain.UserRole) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || input.Password == "" || !validEmail(email) {
		return nil, ErrUserInvalidInput
	}
	taken, err := emailTaken(ctx, users, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserEmailTaken
	}
	hash, err := hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) CreateUser(ctx context.Context, caller domain.Caller, input ports.UserInput) (*domain.User, error) {
	if !caller.IsAdmin() {
		return nil, ErrUserAccessDenied
	}
	user, err := registerUser(ctx, s.users, s.hasher, input, domain.RoleEmployee)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("user_created", "user_id", user.ID, "caller_id", caller.UserID)
	return user, nil
}

// UpdateUser replaces name and email; the password only changes when a new
// one is given.
func (s *userService) UpdateUser(ctx context.Context, caller domain.Caller, id uint, input ports.UserInput) (*domain.User, error) {
	if !caller.IsAdmin() {
		return nil, ErrUserAccessDenied
	}
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || !validEmail(email) {
		return nil, ErrUserInvalidInput
	}
	user, err := loadUser(ctx, s.users, id)
	if err != nil {
		return nil, err
	}
	if email != user.Email {
		taken, err := emailTaken(ctx, s.users, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUserEmailTaken
		}
	}
	user.Name = name
	user.Email = email
	if input.Password != "" {
		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) guardLastAdmin(ctx context.Context, user *domain.User) error {
	if user.Role != domain.RoleAdmin {
		return nil
	}
	admins, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return ErrUserLastAdmin
	}
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, caller domain.Caller, id uint) error {
	if !caller.IsAdmin() {
		return ErrUserAccessDenied
	}
	user, err := loadUser(ctx, s.users, id)
	if err != nil {
		return err
	}
	if err := s.guardLastAdmin(ctx, user); err != nil {
		return err
	}

	var uploads []domain.Attachment
	if s.attachments != nil && s.files != nil {
		if uploads, err = s.attachments.GetByUploader(ctx, id); err != nil {
			return err
		}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	// The rows are gone; a file that cannot be removed is only logged.
	for _, a := range uploads {
		if err := s.files.Delete(ctx, a.StorageKey); err != nil {
			s.logger.Warnw("user_delete_file_cleanup_failed", "user_id", id, "attachment_id", a.ID, "error", err)
		}
	}
	s.logger.Infow("user_deleted", "user_id", id, "caller_id", caller.UserID, "files_removed", len(uploads))
	return nil
}

func (s *userService) GetUser(ctx context.Context, caller domain.Caller, id uint) (*domain.User, error) {
	if !caller.IsAdmin() && caller.UserID != id {
		return nil, ErrUserAccessDenied
	}
	return loadUser(ctx, s.users, id)
}

func (s *userService) SearchUsers(ctx context.Context, caller domain.Caller, query string, role *domain.UserRole, page ports.PageRequest) (ports.Page[domain.User], error) {
	if !caller.IsAdmin() {
		return ports.Page[domain.User]{}, ErrUserAccessDenied
	}
	if role != nil && !role.Valid() {
		return ports.Page[domain.User]{}, ErrUserInvalidRole
	}
	page = s.pager.Clamp(page)
	items, total, err := s.users.Search(ctx, strings.TrimSpace(query), role, page)
	if err != nil {
		return ports.Page[domain.User]{}, err
	}
	return ports.NewPage(items, page, total), nil
}

// UpdateRole refuses to demote the last remaining admin.
func (s *userService) UpdateRole(ctx context.Context, caller domain.Caller, id uint, role domain.UserRole) (*domain.User, error) {
	if !caller.IsAdmin() {
		return nil, ErrUserAccessDenied
	}
	if !role.Valid() {
		return nil, ErrUserInvalidRole
	}
	user, err := loadUser(ctx, s.users, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}
	if role == domain.RoleEmployee {
		if err := s.guardLastAdmin(ctx, user); err != nil {
			return nil, err
		}
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Infow("user_role_updated", "user_id", id, "role", role, "caller_id", caller.UserID)
	return user, nil
}

// EnsureAdmin creates the bootstrap admin when no admin exists yet and
// returns nil when one already does.
func (s *userService) EnsureAdmin(ctx context.Context, input ports.UserInput) (*domain.User, error) {
	admins, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if admins > 0 {
		return nil, nil
	}
	user, err := registerUser(ctx, s.users, s.hasher, input, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("bootstrap_admin_created", "user_id", user.ID, "email", user.Email)
	return user, nil
}
