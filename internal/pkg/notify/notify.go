package notify

import (
	"context"

	"github.com/jabbarSoomro/project-management/internal/model"
)

// Notifier 定义通知接口。
type Notifier interface {
	// SendTaskAssigned 向任务的被指派用户发送指派通知。
	//
	// 参数:
	//   ctx: 上下文
	//   task: 任务（需预加载 Project 与 AssignedUser）
	SendTaskAssigned(ctx context.Context, task *model.Task) error
}
