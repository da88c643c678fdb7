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

// AssignmentNotifier 任务指派通知的发布端。
//
// 发布是异步投递的起点：发布成功只表示消息进了队列，
// 不代表邮件已经送达。
type AssignmentNotifier interface {
	NotifyAssignment(ctx context.Context, taskID uint, source string) error
}

// CreateTaskInput 创建任务的输入。
type CreateTaskInput struct {
	Title          string
	Deadline       time.Time
	AssignedUserID uint
	Status         string // 为空时默认为 pending
}

// TaskService 任务生命周期管理。
type TaskService struct {
	tasks    store.TaskStore
	projects store.ProjectStore
	users    store.UserStore
	notifier AssignmentNotifier
	logger   *slog.Logger

	// 测试里可替换，用于固定"今天"
	now func() time.Time
}

// NewTaskService 创建任务服务。
func NewTaskService(tasks store.TaskStore, projects store.ProjectStore, users store.UserStore, notifier AssignmentNotifier, logger *slog.Logger) *TaskService {
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		users:    users,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ErrProjectNotFound 表示任务要挂载的项目不存在。
var ErrProjectNotFound = fmt.Errorf("project not found")

// validateCreateTask 校验创建任务的输入（不含存在性检查）。
func (s *TaskService) validateCreateTask(in *CreateTaskInput) map[string]string {
	fields := map[string]string{}

	if in.Title == "" {
		fields["title"] = "The title field is required."
	} else if len(in.Title) > 255 {
		fields["title"] = "The title may not be greater than 255 characters."
	}

	if in.Deadline.IsZero() {
		fields["deadline"] = "The deadline field is required."
	} else {
		// 截止日期不能早于当天（按日比较，忽略时分秒）
		now := s.now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, in.Deadline.Location())
		if in.Deadline.Before(today) {
			fields["deadline"] = "The deadline must be a date after or equal to today."
		}
	}

	if in.AssignedUserID == 0 {
		fields["assigned_user_id"] = "The assigned user id field is required."
	}

	if in.Status != "" && !model.ValidTaskStatus(in.Status) {
		fields["status"] = "The selected status is invalid."
	}

	return fields
}

// CreateTask 在指定项目下创建任务，并发布指派通知。
//
// 流程:
//  1. 校验输入（标题、截止日期、状态枚举）
//  2. 确认项目与被指派用户存在
//  3. 持久化任务
//  4. 发布通知消息（失败只记日志，不影响任务创建结果）
//
// 项目不存在时返回 ErrProjectNotFound。
func (s *TaskService) CreateTask(ctx context.Context, projectID uint, in CreateTaskInput) (*model.Task, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("find project %d: %w", projectID, err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	fields := s.validateCreateTask(&in)

	if in.AssignedUserID != 0 {
		assignee, err := s.users.FindByID(ctx, in.AssignedUserID)
		if err != nil {
			return nil, fmt.Errorf("find user %d: %w", in.AssignedUserID, err)
		}
		if assignee == nil {
			fields["assigned_user_id"] = "The selected assigned user id is invalid."
		}
	}

	if len(fields) > 0 {
		return nil, newValidationError(fields)
	}

	status := model.TaskStatus(in.Status)
	if in.Status == "" {
		status = model.TaskStatusPending
	}

	task := &model.Task{
		ProjectID:      projectID,
		Title:          in.Title,
		Deadline:       in.Deadline,
		AssignedUserID: in.AssignedUserID,
		Status:         status,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	metrics.TaskCreatedTotal.Inc()
	s.logger.Info("task created",
		slog.Uint64("task_id", uint64(task.ID)),
		slog.Uint64("project_id", uint64(projectID)),
		slog.Uint64("assigned_user_id", uint64(in.AssignedUserID)))

	// 通知发布失败不回滚任务：邮件是尽力投递的副作用
	if err := s.notifier.NotifyAssignment(ctx, task.ID, "task_create"); err != nil {
		s.logger.Error("schedule assignment notification failed",
			slog.Uint64("task_id", uint64(task.ID)),
			slog.String("error", err.Error()))
	}

	return task, nil
}

// GetTaskWithRelations 查询任务及其所属项目与被指派用户。
//
// 任务不存在时返回 (nil, nil)。
func (s *TaskService) GetTaskWithRelations(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.tasks.FindByIDWithRelations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	return task, nil
}
