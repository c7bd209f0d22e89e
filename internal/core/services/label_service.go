package services

import (
	"context"
	"errors"
	"strings"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
)

type LabelServiceConfig struct {
	Labels ports.LabelRepository
	Tasks  ports.TaskRepository
	Logger *logger.Logger
	Pager  Pager
}

type labelService struct {
	labels ports.LabelRepository
	tasks  ports.TaskRepository
	authz  *Authorizer
	logger *logger.Logger
	pager  Pager
}

func NewLabelService(cfg LabelServiceConfig) ports.LabelService {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	pager := cfg.Pager
	if pager.DefaultSize == 0 {
		pager = DefaultPager()
	}
	return &labelService{
		labels: cfg.Labels,
		tasks:  cfg.Tasks,
		authz:  NewAuthorizer(),
		logger: log,
		pager:  pager,
	}
}

func (s *labelService) loadLabel(ctx context.Context, id uint) (*domain.Label, error) {
	label, err := s.labels.GetByID(ctx, id)
	if errors.Is(err, ports.ErrRecordNotFound) {
		return nil, ErrLabelNotFound
	}
	return label, err
}

// Label definitions are shared by every task, so only admins edit them.
func (s *labelService) CreateLabel(ctx context.Context, caller domain.Caller, input ports.LabelInput) (*domain.Label, error) {
	if !caller.IsAdmin() {
		return nil, ErrLabelAccessDenied
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrLabelNameRequired
	}
	label := &domain.Label{Name: name, Color: strings.TrimSpace(input.Color)}
	if err := s.labels.Create(ctx, label); err != nil {
		return nil, err
	}
	s.logger.Infow("label_created", "label_id", label.ID, "name", label.Name)
	return label, nil
}

func (s *labelService) UpdateLabel(ctx context.Context, caller domain.Caller, id uint, input ports.LabelInput) (*domain.Label, error) {
	if !caller.IsAdmin() {
		return nil, ErrLabelAccessDenied
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrLabelNameRequired
	}
	label, err := s.loadLabel(ctx, id)
	if err != nil {
		return nil, err
	}
	label.Name = name
	label.Color = strings.TrimSpace(input.Color)
	if err := s.labels.Update(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

func (s *labelService) DeleteLabel(ctx context.Context, caller domain.Caller, id uint) error {
	if !caller.IsAdmin() {
		return ErrLabelAccessDenied
	}
	if _, err := s.loadLabel(ctx, id); err != nil {
		return err
	}
	if err := s.labels.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("label_deleted", "label_id", id)
	return nil
}

func (s *labelService) GetLabel(ctx context.Context, id uint) (*domain.Label, error) {
	return s.loadLabel(ctx, id)
}

func (s *labelService) ListLabels(ctx context.Context, page ports.PageRequest) (ports.Page[domain.Label], error) {
	page = s.pager.Clamp(page)
	items, total, err := s.labels.List(ctx, page)
	if err != nil {
		return ports.Page[domain.Label]{}, err
	}
	return ports.NewPage(items, page, total), nil
}

// SearchLabels matches names case-insensitively by substring.
func (s *labelService) SearchLabels(ctx context.Context, name string) ([]domain.Label, error) {
	return s.labels.SearchByName(ctx, strings.TrimSpace(name))
}

func (s *labelService) GetTaskLabels(ctx context.Context, caller domain.Caller, taskID uint) ([]domain.Label, error) {
	task, err := loadTask(ctx, s.tasks, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeView(caller, task).Err(ErrLabelAccessDenied); err != nil {
		return nil, err
	}
	if task.Labels == nil {
		return []domain.Label{}, nil
	}
	return task.Labels, nil
}
