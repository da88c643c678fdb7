package store

import (
	"context"
	"errors"

	"github.com/jabbarSoomro/project-management/internal/model"
)

// ErrConstraint 表示写入时外键引用的行不存在。
var ErrConstraint = errors.New("foreign key constraint violated")

// ProjectPage 项目分页结果。
type ProjectPage struct {
	Projects    []model.Project `json:"projects"`
	CurrentPage int             `json:"current_page"` // 当前页码（从 1 开始）
	LastPage    int             `json:"last_page"`    // 最后一页页码
	PerPage     int             `json:"per_page"`     // 每页数量
	Total       int64           `json:"total"`        // Owner 的项目总数
}

// ProjectStore 定义项目持久化接口。
//
// 未命中的查询返回 (nil, nil)，而不是错误。
type ProjectStore interface {
	// Create 插入项目并回填生成的 ID 与时间戳。
	Create(ctx context.Context, project *model.Project) error
	// FindByID 按 ID 查找项目。
	FindByID(ctx context.Context, id uint) (*model.Project, error)
	// FindByIDWithTasks 按 ID 查找项目，并预加载任务及各任务的被指派用户。
	FindByIDWithTasks(ctx context.Context, id uint) (*model.Project, error)
	// ListByOwner 按 Owner 分页列出项目，新创建的在前。
	ListByOwner(ctx context.Context, ownerID uint, page, perPage int) (*ProjectPage, error)
}

// TaskStore 定义任务持久化接口。
type TaskStore interface {
	// Create 插入任务并回填生成的 ID 与时间戳。
	Create(ctx context.Context, task *model.Task) error
	// FindByID 按 ID 查找任务。
	FindByID(ctx context.Context, id uint) (*model.Task, error)
	// FindByIDWithRelations 按 ID 查找任务，并预加载所属项目与被指派用户。
	FindByIDWithRelations(ctx context.Context, id uint) (*model.Task, error)
	// ListByProject 列出项目下的全部任务。
	ListByProject(ctx context.Context, projectID uint) ([]model.Task, error)
}

// UserStore 定义用户持久化接口。
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
