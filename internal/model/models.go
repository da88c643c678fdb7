package model

import (
	"time"

	"gorm.io/gorm"
)

// ProjectStatus 项目状态枚举。
type ProjectStatus string

const (
	ProjectStatusPending    ProjectStatus = "pending"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
)

// ValidProjectStatus 判断给定字符串是否为合法的项目状态。
func ValidProjectStatus(s string) bool {
	switch ProjectStatus(s) {
	case ProjectStatusPending, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusOnHold:
		return true
	}
	return false
}

// TaskStatus 任务状态枚举。
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// ValidTaskStatus 判断给定字符串是否为合法的任务状态。
func ValidTaskStatus(s string) bool {
	switch TaskStatus(s) {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked:
		return true
	}
	return false
}

// Project 表示一个项目。
//
// 项目归属于唯一的 Owner（User），并拥有若干任务。
// 删除用户时级联删除其项目；项目本身只做软删除。
type Project struct {
	ID        uint           `gorm:"primaryKey"` // 项目唯一标识
	CreatedAt time.Time      // 创建时间
	UpdatedAt time.Time      // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index"` // 软删除标记

	Title     string        `gorm:"not null;size:255"`  // 项目标题
	Client    string        `gorm:"not null;size:255"`  // 客户名称
	StartDate time.Time     `gorm:"not null;type:date"` // 开始日期
	EndDate   time.Time     `gorm:"not null;type:date"` // 结束日期

	Status ProjectStatus `gorm:"not null;size:20;default:pending;index:idx_projects_status_user,priority:1"` // 项目状态
	UserID uint          `gorm:"not null;index:idx_projects_status_user,priority:2"`                         // Owner 用户 ID
	User   User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`                              // Owner 用户

	Tasks []Task `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"` // 项目下的任务列表
}

// Task 表示项目下的一个任务。
//
// 任务归属于唯一的项目，并指派给唯一的用户。
// 删除父项目或被指派用户时级联删除任务；任务创建是通知分发的触发点。
type Task struct {
	ID        uint           `gorm:"primaryKey"` // 任务唯一标识
	CreatedAt time.Time      // 创建时间
	UpdatedAt time.Time      // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index"` // 软删除标记

	ProjectID uint      `gorm:"not null;index:idx_tasks_project_status,priority:1"` // 所属项目 ID
	Project   Project   `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`   // 所属项目
	Title     string    `gorm:"not null;size:255"`                                  // 任务标题
	Deadline  time.Time `gorm:"not null;type:date"`                                 // 截止日期（创建时必须不早于当天）

	AssignedUserID uint `gorm:"not null;index"`                                        // 被指派用户 ID
	AssignedUser   User `gorm:"foreignKey:AssignedUserID;constraint:OnDelete:CASCADE"` // 被指派用户

	Status TaskStatus `gorm:"not null;size:20;default:pending;index:idx_tasks_project_status,priority:2"` // 任务状态
}
