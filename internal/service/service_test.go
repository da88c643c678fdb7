package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/jabbarSoomro/project-management/internal/model"
	"github.com/jabbarSoomro/project-management/internal/store"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// mockProjectStore 内存实现，用于服务层测试。
type mockProjectStore struct {
	projects  map[uint]*model.Project
	nextID    uint
	createErr error
}

func newMockProjectStore() *mockProjectStore {
	return &mockProjectStore{projects: map[uint]*model.Project{}, nextID: 1}
}

func (m *mockProjectStore) Create(ctx context.Context, project *model.Project) error {
	if m.createErr != nil {
		return m.createErr
	}
	project.ID = m.nextID
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	m.nextID++
	cp := *project
	m.projects[project.ID] = &cp
	return nil
}

func (m *mockProjectStore) FindByID(ctx context.Context, id uint) (*model.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockProjectStore) FindByIDWithTasks(ctx context.Context, id uint) (*model.Project, error) {
	return m.FindByID(ctx, id)
}

func (m *mockProjectStore) ListByOwner(ctx context.Context, ownerID uint, page, perPage int) (*store.ProjectPage, error) {
	var owned []model.Project
	for _, p := range m.projects {
		if p.UserID == ownerID {
			owned = append(owned, *p)
		}
	}
	// 与真实存储一致：新创建的在前
	sort.Slice(owned, func(i, j int) bool { return owned[i].ID > owned[j].ID })
	total := int64(len(owned))
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}
	return &store.ProjectPage{
		Projects:    owned,
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}, nil
}

// mockTaskStore 内存实现。
type mockTaskStore struct {
	tasks     map[uint]*model.Task
	nextID    uint
	createErr error
}

func newMockTaskStore() *mockTaskStore {
	return &mockTaskStore{tasks: map[uint]*model.Task{}, nextID: 1}
}

func (m *mockTaskStore) Create(ctx context.Context, task *model.Task) error {
	if m.createErr != nil {
		return m.createErr
	}
	task.ID = m.nextID
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	m.nextID++
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *mockTaskStore) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *mockTaskStore) FindByIDWithRelations(ctx context.Context, id uint) (*model.Task, error) {
	return m.FindByID(ctx, id)
}

func (m *mockTaskStore) ListByProject(ctx context.Context, projectID uint) ([]model.Task, error) {
	var out []model.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

// mockUserStore 内存实现。
type mockUserStore struct {
	users  map[uint]*model.User
	nextID uint
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: map[uint]*model.User{}, nextID: 1}
}

func (m *mockUserStore) Create(ctx context.Context, user *model.User) error {
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.nextID++
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// mockNotifier 记录发布调用。
type mockNotifier struct {
	published []uint
	err       error
}

func (m *mockNotifier) NotifyAssignment(ctx context.Context, taskID uint, source string) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, taskID)
	return nil
}

var errStoreDown = errors.New("store unavailable")
