package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
)

// memStore backs every fake repository. Slices keep insertion order so reads
// behave like a table scan.
type memStore struct {
	nextID        uint
	users         []domain.User
	tasks         []domain.Task
	labels        []domain.Label
	history       []domain.TaskHistoryEntry
	notifications []domain.Notification
	comments      []domain.Comment
	attachments   []domain.Attachment
	taskLabels    map[uint][]uint

	// failNotify makes every notification write fail.
	failNotify error
}

func newMemStore() *memStore {
	return &memStore{taskLabels: map[uint][]uint{}}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

type memSnapshot struct {
	nextID        uint
	users         []domain.User
	tasks         []domain.Task
	labels        []domain.Label
	history       []domain.TaskHistoryEntry
	notifications []domain.Notification
	comments      []domain.Comment
	attachments   []domain.Attachment
	taskLabels    map[uint][]uint
}

func (s *memStore) snapshot() memSnapshot {
	tl := make(map[uint][]uint, len(s.taskLabels))
	for k, v := range s.taskLabels {
		tl[k] = append([]uint(nil), v...)
	}
	return memSnapshot{
		nextID:        s.nextID,
		users:         append([]domain.User(nil), s.users...),
		tasks:         append([]domain.Task(nil), s.tasks...),
		labels:        append([]domain.Label(nil), s.labels...),
		history:       append([]domain.TaskHistoryEntry(nil), s.history...),
		notifications: append([]domain.Notification(nil), s.notifications...),
		comments:      append([]domain.Comment(nil), s.comments...),
		attachments:   append([]domain.Attachment(nil), s.attachments...),
		taskLabels:    tl,
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.nextID = snap.nextID
	s.users = snap.users
	s.tasks = snap.tasks
	s.labels = snap.labels
	s.history = snap.history
	s.notifications = snap.notifications
	s.comments = snap.comments
	s.attachments = snap.attachments
	s.taskLabels = snap.taskLabels
}

func (s *memStore) repos() ports.Repositories {
	return ports.Repositories{
		Tasks:         &fakeTaskRepo{s},
		Users:         &fakeUserRepo{s},
		Labels:        &fakeLabelRepo{s},
		History:       &fakeHistoryRepo{s},
		Notifications: &fakeNotificationRepo{s},
		Comments:      &fakeCommentRepo{s},
		Attachments:   &fakeAttachmentRepo{s},
	}
}

// fakeUnitOfWork rolls the whole store back when fn fails.
type fakeUnitOfWork struct {
	s *memStore
}

func (u *fakeUnitOfWork) Do(ctx context.Context, fn func(repos ports.Repositories) error) error {
	snap := u.s.snapshot()
	if err := fn(u.s.repos()); err != nil {
		u.s.restore(snap)
		return err
	}
	return nil
}

func paginate[T any](items []T, page ports.PageRequest) []T {
	if page.Size <= 0 {
		return items
	}
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ==================== Tasks ====================

type fakeTaskRepo struct{ s *memStore }

func (r *fakeTaskRepo) index(id uint) int {
	for i := range r.s.tasks {
		if r.s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *fakeTaskRepo) hydrate(t domain.Task) domain.Task {
	t.Labels = nil
	for _, lid := range r.s.taskLabels[t.ID] {
		for _, l := range r.s.labels {
			if l.ID == lid {
				t.Labels = append(t.Labels, l)
			}
		}
	}
	t.AssignedTo = nil
	if t.AssignedToID != nil {
		for i := range r.s.users {
			if r.s.users[i].ID == *t.AssignedToID {
				u := r.s.users[i]
				t.AssignedTo = &u
			}
		}
	}
	return t
}

func strip(t domain.Task) domain.Task {
	t.Labels = nil
	t.AssignedTo = nil
	t.CreatedBy = nil
	return t
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *domain.Task) error {
	task.ID = r.s.id()
	r.s.tasks = append(r.s.tasks, strip(*task))
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id uint) (*domain.Task, error) {
	i := r.index(id)
	if i < 0 {
		return nil, ports.ErrRecordNotFound
	}
	t := r.hydrate(r.s.tasks[i])
	return &t, nil
}

func (r *fakeTaskRepo) Exists(ctx context.Context, id uint) (bool, error) {
	return r.index(id) >= 0, nil
}

func (r *fakeTaskRepo) GetAll(ctx context.Context) ([]domain.Task, error) {
	out := make([]domain.Task, 0, len(r.s.tasks))
	for _, t := range r.s.tasks {
		out = append(out, r.hydrate(t))
	}
	return out, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (r *fakeTaskRepo) Find(ctx context.Context, f ports.TaskFilter, page ports.PageRequest) ([]domain.Task, int64, error) {
	var matched []domain.Task
	for _, stored := range r.s.tasks {
		t := r.hydrate(stored)
		if f.Title != "" && !containsFold(t.Title, f.Title) {
			continue
		}
		if f.Description != "" && !containsFold(t.Description, f.Description) {
			continue
		}
		if f.Status != "" && string(t.Status) != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.AssignedToID != nil && !t.IsAssignedTo(*f.AssignedToID) {
			continue
		}
		if len(f.LabelIDs) > 0 {
			hit := false
			for _, id := range f.LabelIDs {
				hit = hit || t.HasLabel(id)
			}
			if !hit {
				continue
			}
		}
		matched = append(matched, t)
	}
	return paginate(matched, page), int64(len(matched)), nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	i := r.index(task.ID)
	if i < 0 {
		return ports.ErrRecordNotFound
	}
	r.s.tasks[i] = strip(*task)
	return nil
}

func (r *fakeTaskRepo) AddLabel(ctx context.Context, task *domain.Task, label *domain.Label) error {
	for _, id := range r.s.taskLabels[task.ID] {
		if id == label.ID {
			return nil
		}
	}
	r.s.taskLabels[task.ID] = append(r.s.taskLabels[task.ID], label.ID)
	return nil
}

func (r *fakeTaskRepo) RemoveLabel(ctx context.Context, task *domain.Task, label *domain.Label) error {
	ids := r.s.taskLabels[task.ID]
	out := ids[:0:0]
	for _, id := range ids {
		if id != label.ID {
			out = append(out, id)
		}
	}
	r.s.taskLabels[task.ID] = out
	return nil
}

func (r *fakeTaskRepo) ClearLabels(ctx context.Context, task *domain.Task) error {
	delete(r.s.taskLabels, task.ID)
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id uint) error {
	i := r.index(id)
	if i < 0 {
		return ports.ErrRecordNotFound
	}
	r.s.tasks = append(r.s.tasks[:i:i], r.s.tasks[i+1:]...)
	return nil
}

// ==================== Users ====================

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) index(id uint) int {
	for i := range r.s.users {
		if r.s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("duplicate email %q", u.Email)
		}
	}
	u.ID = r.s.id()
	r.s.users = append(r.s.users, *u)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	i := r.index(id)
	if i < 0 {
		return nil, ports.ErrRecordNotFound
	}
	u := r.s.users[i]
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ports.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role domain.UserRole) (int64, error) {
	users, _ := r.GetByRole(ctx, role)
	return int64(len(users)), nil
}

func (r *fakeUserRepo) Search(ctx context.Context, query string, role *domain.UserRole, page ports.PageRequest) ([]domain.User, int64, error) {
	var matched []domain.User
	for _, u := range r.s.users {
		if role != nil && u.Role != *role {
			continue
		}
		if query != "" && !containsFold(u.Name, query) && !containsFold(u.Email, query) {
			continue
		}
		matched = append(matched, u)
	}
	return paginate(matched, page), int64(len(matched)), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	i := r.index(u.ID)
	if i < 0 {
		return ports.ErrRecordNotFound
	}
	r.s.users[i] = *u
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	i := r.index(id)
	if i < 0 {
		return ports.ErrRecordNotFound
	}
	r.s.users = append(r.s.users[:i:i], r.s.users[i+1:]...)
	kept := r.s.attachments[:0:0]
	for _, a := range r.s.attachments {
		if a.UploadedByID != id {
			kept = append(kept, a)
		}
	}
	r.s.attachments = kept
	return nil
}

// ==================== Labels ====================

type fakeLabelRepo struct{ s *memStore }

func (r *fakeLabelRepo) index(id uint) int {
	for i := range r.s.labels {
		if r.s.labels[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *fakeLabelRepo) Create(ctx context.Context, l *domain.Label) error {
	l.ID = r.s.id()
	r.s.labels = append(r.s.labels, *l)
	return nil
}

func (r *fakeLabelRepo) GetByID(ctx context.Context, id uint) (*domain.Label, error) {
	i := r.index(id)
	if i < 0 {
		return nil, ports.ErrRecordNotFound
	}
	l := r.s.labels[i]
	return &l, nil
}

func (r *fakeLabelRepo) GetByIDs(ctx context.Context, ids []uint) ([]domain.Label, error) {
	var out []domain.Label
	for _, id := range ids {
		if i := r.index(id); i >= 0 {
			out = append(out, r.s.labels[i])
		}
	}
	return out, nil
}

func (r *fakeLabelRepo) List(ctx context.Context, page ports.PageRequest) ([]domain.Label, int64, error) {
	all := append([]domain.Label(nil), r.s.labels...)
	return paginate(all, page), int64(len(all)), nil
}

func (r *fakeLabelRepo) SearchByName(ctx context.Context, name string) ([]domain.Label, error) {
	var out []domain.Label
	for _, l := range r.s.labels {
		if containsFold(l.Name, name) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLabelRepo) Update(ctx context.Context, l *domain.Label) error {
	i := r.index(l.ID)
	if i < 0 {
		return ports.ErrRecordNotFound
	}
	r.s.labels[i] = *l
	return nil
}

func (r *fakeLabelRepo) Delete(ctx context.Context, id uint) error {
	i := r.index(id)
	if i < 0 {
		return ports.ErrRecordNotFound
	}
	r.s.labels = append(r.s.labels[:i:i], r.s.labels[i+1:]...)
	for taskID := range r.s.taskLabels {
		(&fakeTaskRepo{r.s}).RemoveLabel(ctx, &domain.Task{ID: taskID}, &domain.Label{ID: id})
	}
	return nil
}

// ==================== History ====================

type fakeHistoryRepo struct{ s *memStore }

func (r *fakeHistoryRepo) Create(ctx context.Context, e *domain.TaskHistoryEntry) error {
	e.ID = r.s.id()
	r.s.history = append(r.s.history, *e)
	return nil
}

func (r *fakeHistoryRepo) GetByTask(ctx context.Context, taskID uint, page ports.PageRequest) ([]domain.TaskHistoryEntry, int64, error) {
	var out []domain.TaskHistoryEntry
	for _, e := range r.s.history {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ModifiedAt.Equal(out[j].ModifiedAt) {
			return out[i].ModifiedAt.After(out[j].ModifiedAt)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, page), int64(len(out)), nil
}

func (r *fakeHistoryRepo) DeleteByTask(ctx context.Context, taskID uint) error {
	out := r.s.history[:0:0]
	for _, e := range r.s.history {
		if e.TaskID != taskID {
			out = append(out, e)
		}
	}
	r.s.history = out
	return nil
}

// ==================== Notifications ====================

type fakeNotificationRepo struct{ s *memStore }

func (r *fakeNotificationRepo) index(id uint) int {
	for i := range r.s.notifications {
		if r.s.notifications[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	if r.s.failNotify != nil {
		return r.s.failNotify
	}
	n.ID = r.s.id()
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id uint) (*domain.Notification, error) {
	i := r.index(id)
	if i < 0 {
		return nil, ports.ErrRecordNotFound
	}
	n := r.s.notifications[i]
	return &n, nil
}

func (r *fakeNotificationRepo) GetByUser(ctx context.Context, userID uint, unreadOnly bool, page ports.PageRequest) ([]domain.Notification, int64, error) {
	var out []domain.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		n := r.s.notifications[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	return paginate(out, page), int64(len(out)), nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var n int64
	for _, x := range r.s.notifications {
		if x.UserID == userID && !x.Read {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id uint) error {
	i := r.index(id)
	if i < 0 {
		return ports.ErrRecordNotFound
	}
	r.s.notifications[i].Read = true
	return nil
}

func (r *fakeNotificationRepo) DetachTask(ctx context.Context, taskID uint) error {
	for i := range r.s.notifications {
		if r.s.notifications[i].TaskID != nil && *r.s.notifications[i].TaskID == taskID {
			r.s.notifications[i].TaskID = nil
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, id uint) error {
	i := r.index(id)
	if i < 0 {
		return ports.ErrRecordNotFound
	}
	r.s.notifications = append(r.s.notifications[:i:i], r.s.notifications[i+1:]...)
	return nil
}

// ==================== Comments ====================

type fakeCommentRepo struct{ s *memStore }

func (r *fakeCommentRepo) index(id uint) int {
	for i := range r.s.comments {
		if r.s.comments[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *fakeCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	c.ID = r.s.id()
	r.s.comments = append(r.s.comments, *c)
	return nil
}

func (r *fakeCommentRepo) GetByID(ctx context.Context, id uint) (*domain.Comment, error) {
	i := r.index(id)
	if i < 0 {
		return nil, ports.ErrRecordNotFound
	}
	c := r.s.comments[i]
	return &c, nil
}

func (r *fakeCommentRepo) GetByTask(ctx context.Context, taskID uint) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range r.s.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) GetByTaskPaged(ctx context.Context, taskID uint, page ports.PageRequest) ([]domain.Comment, int64, error) {
	all, _ := r.GetByTask(ctx, taskID)
	return paginate(all, page), int64(len(all)), nil
}

func (r *fakeCommentRepo) Update(ctx context.Context, c *domain.Comment) error {
	i := r.index(c.ID)
	if i < 0 {
		return ports.ErrRecordNotFound
	}
	r.s.comments[i] = *c
	return nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, ids ...uint) error {
	drop := map[uint]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	out := r.s.comments[:0:0]
	for _, c := range r.s.comments {
		if !drop[c.ID] {
			out = append(out, c)
		}
	}
	r.s.comments = out
	return nil
}

func (r *fakeCommentRepo) DeleteByTask(ctx context.Context, taskID uint) error {
	out := r.s.comments[:0:0]
	for _, c := range r.s.comments {
		if c.TaskID != taskID {
			out = append(out, c)
		}
	}
	r.s.comments = out
	return nil
}

// ==================== Attachments ====================

type fakeAttachmentRepo struct{ s *memStore }

func (r *fakeAttachmentRepo) index(id uint) int {
	for i := range r.s.attachments {
		if r.s.attachments[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, a *domain.Attachment) error {
	a.ID = r.s.id()
	r.s.attachments = append(r.s.attachments, *a)
	return nil
}

func (r *fakeAttachmentRepo) GetByID(ctx context.Context, id uint) (*domain.Attachment, error) {
	i := r.index(id)
	if i < 0 {
		return nil, ports.ErrRecordNotFound
	}
	a := r.s.attachments[i]
	return &a, nil
}

func (r *fakeAttachmentRepo) GetByTask(ctx context.Context, taskID uint) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, a := range r.s.attachments {
		if a.TaskID == taskID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttachmentRepo) GetByTaskPaged(ctx context.Context, taskID uint, page ports.PageRequest) ([]domain.Attachment, int64, error) {
	all, _ := r.GetByTask(ctx, taskID)
	return paginate(all, page), int64(len(all)), nil
}

func (r *fakeAttachmentRepo) GetByUploader(ctx context.Context, userID uint) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, a := range r.s.attachments {
		if a.UploadedByID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttachmentRepo) Delete(ctx context.Context, id uint) error {
	i := r.index(id)
	if i < 0 {
		return ports.ErrRecordNotFound
	}
	r.s.attachments = append(r.s.attachments[:i:i], r.s.attachments[i+1:]...)
	return nil
}

func (r *fakeAttachmentRepo) DeleteByTask(ctx context.Context, taskID uint) error {
	out := r.s.attachments[:0:0]
	for _, a := range r.s.attachments {
		if a.TaskID != taskID {
			out = append(out, a)
		}
	}
	r.s.attachments = out
	return nil
}

// ==================== Collaborators ====================

type fakeFileStore struct {
	files      map[string][]byte
	failDelete error
	deleted    []string
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[string][]byte{}}
}

func (f *fakeFileStore) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.files[key] = data
	return int64(len(data)), nil
}

func (f *fakeFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.files[key]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeFileStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	if f.failDelete != nil {
		return f.failDelete
	}
	delete(f.files, key)
	return nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeTokens struct {
	expires time.Time
}

func (f fakeTokens) Issue(caller domain.Caller) (string, time.Time, error) {
	return fmt.Sprintf("token-%d-%s", caller.UserID, caller.Role), f.expires, nil
}

// ==================== Fixtures ====================

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func (s *memStore) addUser(name string, role domain.UserRole) domain.User {
	u := domain.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		PasswordHash: "hashed:secret",
		Role:         role,
	}
	(&fakeUserRepo{s}).Create(context.Background(), &u)
	return u
}

func (s *memStore) addLabel(name string) domain.Label {
	l := domain.Label{Name: name, Color: "#ff0000"}
	(&fakeLabelRepo{s}).Create(context.Background(), &l)
	return l
}

func (s *memStore) addTask(title string, status domain.TaskStatus, assignee *uint, createdAt time.Time) domain.Task {
	t := domain.Task{
		Title:        title,
		Description:  "desc " + title,
		Status:       status,
		Priority:     domain.DefaultPriority,
		AssignedToID: assignee,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	(&fakeTaskRepo{s}).Create(context.Background(), &t)
	return t
}

func (s *memStore) notificationsFor(userID uint) []domain.Notification {
	var out []domain.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (s *memStore) historyFor(taskID uint) []domain.TaskHistoryEntry {
	var out []domain.TaskHistoryEntry
	for _, e := range s.history {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func admin(u domain.User) domain.Caller    { return domain.Caller{UserID: u.ID, Role: domain.RoleAdmin} }
func employee(u domain.User) domain.Caller { return domain.Caller{UserID: u.ID, Role: domain.RoleEmployee} }

func newTestTaskService(s *memStore) ports.TaskService {
	return NewTaskService(TaskServiceConfig{
		Repos:       s.repos(),
		UnitOfWork:  &fakeUnitOfWork{s},
		Files:       newFakeFileStore(),
		Messages:    NewMessages("en"),
		Now:         fixedClock,
		EnableLocks: true,
	})
}
