package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jabbarSoomro/project-management/internal/model"
	"github.com/jabbarSoomro/project-management/internal/pkg/metrics"
	"github.com/jabbarSoomro/project-management/internal/store"
)

// CreateProjectInput 创建项目的输入。
type CreateProjectInput struct {
	Title     string
	Client    string
	StartDate time.Time
	EndDate   time.Time
	Status    string // 为空时默认为 pending
}

// ProjectService 项目生命周期管理。
type ProjectService struct {
	projects store.ProjectStore
	logger   *slog.Logger

	defaultPageSize int
	maxPageSize     int
}

// NewProjectService 创建项目服务。
func NewProjectService(projects store.ProjectStore, logger *slog.Logger, defaultPageSize, maxPageSize int) *ProjectService {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &ProjectService{
		projects:        projects,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// validateCreateProject 校验创建项目的输入。
func validateCreateProject(in *CreateProjectInput) *ValidationError {
	fields := map[string]string{}

	if in.Title == "" {
		fields["title"] = "The title field is required."
	} else if len(in.Title) > 255 {
		fields["title"] = "The title may not be greater than 255 characters."
	}

	if in.Client == "" {
		fields["client"] = "The client field is required."
	} else if len(in.Client) > 255 {
		fields["client"] = "The client may not be greater than 255 characters."
	}

	if in.StartDate.IsZero() {
		fields["start_date"] = "The start date field is required."
	}
	if in.EndDate.IsZero() {
		fields["end_date"] = "The end date field is required."
	} else if !in.StartDate.IsZero() && in.EndDate.Before(in.StartDate) {
		fields["end_date"] = "The end date must be a date after or equal to start date."
	}

	if in.Status != "" && !model.ValidProjectStatus(in.Status) {
		fields["status"] = "The selected status is invalid."
	}

	if len(fields) > 0 {
		return newValidationError(fields)
	}
	return nil
}

// CreateProject 以 ownerID 为 Owner 创建一个项目。
//
// Owner 以调用方传入的认证身份为准，输入里携带的任何
// user_id 都不生效。
func (s *ProjectService) CreateProject(ctx context.Context, ownerID uint, in CreateProjectInput) (*model.Project, error) {
	if verr := validateCreateProject(&in); verr != nil {
		return nil, verr
	}

	status := model.ProjectStatus(in.Status)
	if in.Status == "" {
		status = model.ProjectStatusPending
	}

	project := &model.Project{
		Title:     in.Title,
		Client:    in.Client,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Status:    status,
		UserID:    ownerID,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	metrics.ProjectCreatedTotal.Inc()
	s.logger.Info("project created",
		slog.Uint64("project_id", uint64(project.ID)),
		slog.Uint64("owner_id", uint64(ownerID)))

	return project, nil
}

// GetProjectWithTasks 查询项目及其任务列表（含各任务的被指派用户）。
//
// 项目不存在时返回 (nil, nil)。
func (s *ProjectService) GetProjectWithTasks(ctx context.Context, id uint) (*model.Project, error) {
	project, err := s.projects.FindByIDWithTasks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find project %d: %w", id, err)
	}
	return project, nil
}

// GetProject 按 ID 查询项目，不存在时返回 (nil, nil)。
func (s *ProjectService) GetProject(ctx context.Context, id uint) (*model.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find project %d: %w", id, err)
	}
	return project, nil
}

// ListOwnerProjects 分页列出 Owner 的项目，新创建的在前。
//
// page 非法时回退到第 1 页，perPage 非法时回退到默认值，
// 超出上限时截断到上限。
func (s *ProjectService) ListOwnerProjects(ctx context.Context, ownerID uint, page, perPage int) (*store.ProjectPage, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = s.defaultPageSize
	}
	if perPage > s.maxPageSize {
		perPage = s.maxPageSize
	}

	result, err := s.projects.ListByOwner(ctx, ownerID, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list projects for owner %d: %w", ownerID, err)
	}
	return result, nil
}
