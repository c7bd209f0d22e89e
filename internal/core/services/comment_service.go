package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
)

type CommentServiceConfig struct {
	Repos      ports.Repositories
	UnitOfWork ports.UnitOfWork
	Messages   *Messages
	Logger     *logger.Logger
	Pager      Pager
	Now        func() time.Time
}

type commentService struct {
	repos  ports.Repositories
	uow    ports.UnitOfWork
	authz  *Authorizer
	fanout *Fanout
	logger *logger.Logger
	pager  Pager
	now    func() time.Time
}

func NewCommentService(cfg CommentServiceConfig) ports.CommentService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	pager := cfg.Pager
	if pager.DefaultSize == 0 {
		pager = DefaultPager()
	}
	return &commentService{
		repos:  cfg.Repos,
		uow:    cfg.UnitOfWork,
		authz:  NewAuthorizer(),
		fanout: NewFanout(cfg.Repos.Notifications, cfg.Messages, now),
		logger: log,
		pager:  pager,
		now:    now,
	}
}

func loadComment(ctx context.Context, repo ports.CommentRepository, id uint) (*domain.Comment, error) {
	c, err := repo.GetByID(ctx, id)
	if errors.Is(err, ports.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	return c, err
}

// CreateComment posts a comment or a reply. An employee comment notifies every
// admin, an admin comment notifies the assignee, and a reply also notifies
// the author of the parent unless they are replying to themselves.
func (s *commentService) CreateComment(ctx context.Context, caller domain.Caller, input ports.CreateCommentInput) (*domain.Comment, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrCommentEmpty
	}

	var created *domain.Comment
	err := s.uow.Do(ctx, func(repos ports.Repositories) error {
		task, err := loadTask(ctx, repos.Tasks, input.TaskID)
		if err != nil {
			return err
		}
		if err := s.authz.AuthorizeView(caller, task).Err(ErrCommentAccessDenied); err != nil {
			return err
		}
		var parent *domain.Comment
		if input.ParentID != nil {
			parent, err = repos.Comments.GetByID(ctx, *input.ParentID)
			if errors.Is(err, ports.ErrRecordNotFound) {
				return ErrCommentParentNotFound
			}
			if err != nil {
				return err
			}
			if parent.TaskID != task.ID {
				return ErrCommentParentMismatch
			}
		}
		author, err := repos.Users.GetByID(ctx, caller.UserID)
		if errors.Is(err, ports.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		now := s.now()
		comment := &domain.Comment{
			Content:     content,
			TaskID:      task.ID,
			CreatedByID: author.ID,
			ParentID:    input.ParentID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repos.Comments.Create(ctx, comment); err != nil {
			return err
		}

		fanout := s.fanout.WithSink(repos.Notifications)
		if caller.IsAdmin() {
			if task.AssignedToID != nil {
				if err := fanout.AdminCommented(ctx, task, *task.AssignedToID); err != nil {
					return err
				}
			}
		} else {
			admins, err := repos.Users.GetByRole(ctx, domain.RoleAdmin)
			if err != nil {
				return err
			}
			if err := fanout.EmployeeCommented(ctx, task, author.Name, admins); err != nil {
				return err
			}
		}
		if parent != nil && parent.CreatedByID != author.ID {
			if err := fanout.CommentReplied(ctx, task, parent.CreatedByID); err != nil {
				return err
			}
		}
		comment.CreatedBy = author
		created = comment
		return nil
	})
	if err != nil {
		s.logger.Warnw("comment_create_failed", "task_id", input.TaskID, "caller_id", caller.UserID, "error", err)
		return nil, err
	}
	s.logger.Infow("comment_created", "comment_id", created.ID, "task_id", created.TaskID, "caller_id", caller.UserID)
	return created, nil
}

func canEditComment(caller domain.Caller, c *domain.Comment) bool {
	return caller.IsAdmin() || c.CreatedByID == caller.UserID
}

func (s *commentService) UpdateComment(ctx context.Context, caller domain.Caller, id uint, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrCommentEmpty
	}
	comment, err := loadComment(ctx, s.repos.Comments, id)
	if err != nil {
		return nil, err
	}
	if !canEditComment(caller, comment) {
		return nil, ErrCommentAccessDenied
	}
	comment.Content = content
	comment.UpdatedAt = s.now()
	if err := s.repos.Comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes the comment and every reply below it.
func (s *commentService) DeleteComment(ctx context.Context, caller domain.Caller, id uint) error {
	return s.uow.Do(ctx, func(repos ports.Repositories) error {
		comment, err := loadComment(ctx, repos.Comments, id)
		if err != nil {
			return err
		}
		if !canEditComment(caller, comment) {
			return ErrCommentAccessDenied
		}
		all, err := repos.Comments.GetByTask(ctx, comment.TaskID)
		if err != nil {
			return err
		}
		ids := subtreeIDs(all, comment.ID)
		if err := repos.Comments.Delete(ctx, ids...); err != nil {
			return err
		}
		s.logger.Infow("comment_deleted", "comment_id", id, "removed", len(ids), "caller_id", caller.UserID)
		return nil
	})
}

func subtreeIDs(comments []domain.Comment, root uint) []uint {
	children := make(map[uint][]uint)
	for _, c := range comments {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}
	ids := []uint{root}
	for i := 0; i < len(ids); i++ {
		ids = append(ids, children[ids[i]]...)
	}
	return ids
}

func (s *commentService) authorizeTask(ctx context.Context, caller domain.Caller, taskID uint) error {
	task, err := loadTask(ctx, s.repos.Tasks, taskID)
	if err != nil {
		return err
	}
	return s.authz.AuthorizeView(caller, task).Err(ErrCommentAccessDenied)
}

func (s *commentService) GetComment(ctx context.Context, caller domain.Caller, id uint) (*domain.Comment, error) {
	comment, err := loadComment(ctx, s.repos.Comments, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeTask(ctx, caller, comment.TaskID); err != nil {
		return nil, err
	}
	return comment, nil
}

// GetThread returns the root comments of a task with their replies nested
// below them, each level in creation order.
func (s *commentService) GetThread(ctx context.Context, caller domain.Caller, taskID uint) ([]ports.CommentNode, error) {
	if err := s.authorizeTask(ctx, caller, taskID); err != nil {
		return nil, err
	}
	comments, err := s.repos.Comments.GetByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return BuildThread(comments), nil
}

// BuildThread arranges flat comments into trees by parent id. Replies whose
// parent is missing are treated as roots.
func BuildThread(comments []domain.Comment) []ports.CommentNode {
	present := make(map[uint]struct{}, len(comments))
	for _, c := range comments {
		present[c.ID] = struct{}{}
	}
	children := make(map[uint][]int)
	var roots []int
	for i, c := range comments {
		if c.ParentID != nil {
			if _, ok := present[*c.ParentID]; ok {
				children[*c.ParentID] = append(children[*c.ParentID], i)
				continue
			}
		}
		roots = append(roots, i)
	}

	var build func(i int) ports.CommentNode
	build = func(i int) ports.CommentNode {
		node := ports.CommentNode{Comment: comments[i], Replies: []ports.CommentNode{}}
		for _, j := range children[comments[i].ID] {
			node.Replies = append(node.Replies, build(j))
		}
		return node
	}
	out := make([]ports.CommentNode, 0, len(roots))
	for _, i := range roots {
		out = append(out, build(i))
	}
	return out
}

func (s *commentService) ListComments(ctx context.Context, caller domain.Caller, taskID uint, page ports.PageRequest) (ports.Page[domain.Comment], error) {
	if err := s.authorizeTask(ctx, caller, taskID); err != nil {
		return ports.Page[domain.Comment]{}, err
	}
	page = s.pager.Clamp(page)
	items, total, err := s.repos.Comments.GetByTaskPaged(ctx, taskID, page)
	if err != nil {
		return ports.Page[domain.Comment]{}, err
	}
	return ports.NewPage(items, page, total), nil
}
