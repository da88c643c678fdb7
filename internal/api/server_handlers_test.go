package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jabbarSoomro/project-management/internal/model"
	"github.com/jabbarSoomro/project-management/internal/service"
	"github.com/jabbarSoomro/project-management/internal/store"

	"github.com/gin-gonic/gin"
)

type mockProjectManager struct {
	createFunc func(ctx context.Context, ownerID uint, in service.CreateProjectInput) (*model.Project, error)
	getFunc    func(ctx context.Context, id uint) (*model.Project, error)
	listFunc   func(ctx context.Context, ownerID uint, page, perPage int) (*store.ProjectPage, error)
}

func (m *mockProjectManager) CreateProject(ctx context.Context, ownerID uint, in service.CreateProjectInput) (*model.Project, error) {
	return m.createFunc(ctx, ownerID, in)
}

func (m *mockProjectManager) GetProjectWithTasks(ctx context.Context, id uint) (*model.Project, error) {
	return m.getFunc(ctx, id)
}

func (m *mockProjectManager) ListOwnerProjects(ctx context.Context, ownerID uint, page, perPage int) (*store.ProjectPage, error) {
	return m.listFunc(ctx, ownerID, page, perPage)
}

type mockTaskManager struct {
	createFunc  func(ctx context.Context, projectID uint, in service.CreateTaskInput) (*model.Task, error)
	getFunc     func(ctx context.Context, id uint) (*model.Task, error)
	createCalls int
}

func (m *mockTaskManager) CreateTask(ctx context.Context, projectID uint, in service.CreateTaskInput) (*model.Task, error) {
	m.createCalls++
	return m.createFunc(ctx, projectID, in)
}

func (m *mockTaskManager) GetTaskWithRelations(ctx context.Context, id uint) (*model.Task, error) {
	return m.getFunc(ctx, id)
}

func newTestServer(projects ProjectManager, tasks TaskManager) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := &Server{
		logger:   logger,
		projects: projects,
		tasks:    tasks,
	}

	r := gin.New()
	withUser := func(h gin.HandlerFunc) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set("userID", uint(1))
			h(c)
		}
	}
	r.POST("/projects", withUser(s.handleCreateProject))
	r.GET("/projects", withUser(s.handleListProjects))
	r.GET("/projects/:id", withUser(s.handleGetProject))
	r.POST("/projects/:id/tasks", withUser(s.handleCreateTask))
	r.GET("/tasks/:id", withUser(s.handleGetTask))
	return s, r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateProject_Normal(t *testing.T) {
	var gotOwner uint
	projects := &mockProjectManager{
		createFunc: func(ctx context.Context, ownerID uint, in service.CreateProjectInput) (*model.Project, error) {
			gotOwner = ownerID
			return &model.Project{
				ID:        1,
				Title:     in.Title,
				Client:    in.Client,
				StartDate: in.StartDate,
				EndDate:   in.EndDate,
				Status:    model.ProjectStatusPending,
				UserID:    ownerID,
			}, nil
		},
	}
	_, r := newTestServer(projects, &mockTaskManager{})

	w := doJSON(r, http.MethodPost, "/projects", createProjectRequest{
		Title:     "Website Redesign",
		Client:    "Acme Corp",
		StartDate: "2025-01-01",
		EndDate:   "2025-06-30",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if gotOwner != 1 {
		t.Errorf("expected owner from auth context, got %d", gotOwner)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Project created successfully")) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestCreateProject_ValidationError(t *testing.T) {
	projects := &mockProjectManager{
		createFunc: func(ctx context.Context, ownerID uint, in service.CreateProjectInput) (*model.Project, error) {
			return nil, &service.ValidationError{Fields: map[string]string{
				"title": "The title field is required.",
			}}
		},
	}
	_, r := newTestServer(projects, &mockTaskManager{})

	w := doJSON(r, http.MethodPost, "/projects", createProjectRequest{Client: "Acme"})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("The given data was invalid.")) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestListProjects_Meta(t *testing.T) {
	projects := &mockProjectManager{
		listFunc: func(ctx context.Context, ownerID uint, page, perPage int) (*store.ProjectPage, error) {
			return &store.ProjectPage{
				Projects:    []model.Project{{ID: 1, Title: "P", UserID: ownerID}},
				CurrentPage: 2,
				LastPage:    3,
				PerPage:     10,
				Total:       25,
			}, nil
		},
	}
	_, r := newTestServer(projects, &mockTaskManager{})

	w := doJSON(r, http.MethodGet, "/projects?page=2", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Meta paginationMeta `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Meta.CurrentPage != 2 || resp.Meta.LastPage != 3 || resp.Meta.Total != 25 {
		t.Errorf("unexpected meta: %+v", resp.Meta)
	}
}

func TestGetProject_NotFound(t *testing.T) {
	projects := &mockProjectManager{
		getFunc: func(ctx context.Context, id uint) (*model.Project, error) {
			return nil, nil
		},
	}
	_, r := newTestServer(projects, &mockTaskManager{})

	w := doJSON(r, http.MethodGet, "/projects/999", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Project not found")) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestCreateTask_Normal(t *testing.T) {
	deadline := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	task := &model.Task{
		ID:             5,
		ProjectID:      1,
		Title:          "Wireframes",
		Deadline:       deadline,
		Status:         model.TaskStatusPending,
		AssignedUserID: 2,
		AssignedUser:   model.User{ID: 2, Name: "Dana", Email: "dana@example.com"},
	}
	tasks := &mockTaskManager{
		createFunc: func(ctx context.Context, projectID uint, in service.CreateTaskInput) (*model.Task, error) {
			return task, nil
		},
		getFunc: func(ctx context.Context, id uint) (*model.Task, error) {
			return task, nil
		},
	}
	_, r := newTestServer(&mockProjectManager{}, tasks)

	w := doJSON(r, http.MethodPost, "/projects/1/tasks", createTaskRequest{
		Title:          "Wireframes",
		Deadline:       "2025-02-01",
		AssignedUserID: 2,
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if tasks.createCalls != 1 {
		t.Fatalf("expected create task to be called")
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"dana@example.com"`)) {
		t.Errorf("expected assigned user in response: %s", w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"2025-02-01"`)) {
		t.Errorf("expected formatted deadline in response: %s", w.Body.String())
	}
}

func TestCreateTask_ProjectNotFound(t *testing.T) {
	tasks := &mockTaskManager{
		createFunc: func(ctx context.Context, projectID uint, in service.CreateTaskInput) (*model.Task, error) {
			return nil, service.ErrProjectNotFound
		},
	}
	_, r := newTestServer(&mockProjectManager{}, tasks)

	w := doJSON(r, http.MethodPost, "/projects/999/tasks", createTaskRequest{
		Title:          "Wireframes",
		Deadline:       "2025-02-01",
		AssignedUserID: 2,
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Project not found")) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestCreateTask_InvalidBody(t *testing.T) {
	tasks := &mockTaskManager{
		createFunc: func(ctx context.Context, projectID uint, in service.CreateTaskInput) (*model.Task, error) {
			return nil, nil
		},
	}
	_, r := newTestServer(&mockProjectManager{}, tasks)

	req := httptest.NewRequest(http.MethodPost, "/projects/1/tasks", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if tasks.createCalls != 0 {
		t.Fatalf("create should not be called on invalid body")
	}
}

func TestGetTask_NotFound(t *testing.T) {
	tasks := &mockTaskManager{
		getFunc: func(ctx context.Context, id uint) (*model.Task, error) {
			return nil, nil
		},
	}
	_, r := newTestServer(&mockProjectManager{}, tasks)

	w := doJSON(r, http.MethodGet, "/tasks/999", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Task not found")) {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}
