package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jabbarSoomro/project-management/internal/model"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL 外键约束失败错误码 (ER_NO_REFERENCED_ROW_2)。
const mysqlErrNoReferencedRow = 1452

// GormProjectStore 基于 GORM 的项目存储实现。
type GormProjectStore struct {
	db *gorm.DB
}

// NewGormProjectStore 创建项目存储。
func NewGormProjectStore(db *gorm.DB) *GormProjectStore {
	return &GormProjectStore{db: db}
}

func (s *GormProjectStore) Create(ctx context.Context, project *model.Project) error {
	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		return wrapConstraint("create project", err)
	}
	return nil
}

func (s *GormProjectStore) FindByID(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project
	err := s.db.WithContext(ctx).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	return &project, nil
}

func (s *GormProjectStore) FindByIDWithTasks(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project
	err := s.db.WithContext(ctx).
		Preload("Tasks").
		Preload("Tasks.AssignedUser").
		First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project with tasks: %w", err)
	}
	return &project, nil
}

func (s *GormProjectStore) ListByOwner(ctx context.Context, ownerID uint, page, perPage int) (*ProjectPage, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Project{}).
		Where("user_id = ?", ownerID).
		Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}

	projects := []model.Project{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	return &ProjectPage{
		Projects:    projects,
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}, nil
}

// GormTaskStore 基于 GORM 的任务存储实现。
type GormTaskStore struct {
	db *gorm.DB
}

// NewGormTaskStore 创建任务存储。
func NewGormTaskStore(db *gorm.DB) *GormTaskStore {
	return &GormTaskStore{db: db}
}

func (s *GormTaskStore) Create(ctx context.Context, task *model.Task) error {
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return wrapConstraint("create task", err)
	}
	return nil
}

func (s *GormTaskStore) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := s.db.WithContext(ctx).First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

func (s *GormTaskStore) FindByIDWithRelations(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := s.db.WithContext(ctx).
		Preload("Project").
		Preload("AssignedUser").
		First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find task with relations: %w", err)
	}
	return &task, nil
}

func (s *GormTaskStore) ListByProject(ctx context.Context, projectID uint) ([]model.Task, error) {
	tasks := []model.Task{}
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// GormUserStore 基于 GORM 的用户存储实现。
type GormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore 创建用户存储。
func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Create(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *GormUserStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// wrapConstraint 将 MySQL 外键错误转换为 ErrConstraint。
func wrapConstraint(op string, err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrNoReferencedRow {
		return fmt.Errorf("%s: %w: %v", op, ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
