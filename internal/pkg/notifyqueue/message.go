package notifyqueue

import "time"

// EventTaskAssigned 任务被指派事件。
const EventTaskAssigned = "task_assigned"

// NotifyMessage 表示通知队列中的消息结构。
//
// 消息只携带任务 ID：邮件内容由消费端在执行时重新读取任务状态生成，
// 任务在排队期间被修改或删除时直接跳过投递。
type NotifyMessage struct {
	TaskID    uint      `json:"task_id"`   // 任务 ID
	Event     string    `json:"event"`     // 事件类型: "task_assigned"
	Timestamp time.Time `json:"timestamp"` // 消息创建时间
	Retry     int       `json:"retry"`     // 重试次数
	Source    string    `json:"source"`    // 消息来源: "task_create"
}

// NewTaskAssignedMessage 创建一条任务指派通知消息。
func NewTaskAssignedMessage(taskID uint, source string) *NotifyMessage {
	return &NotifyMessage{
		TaskID:    taskID,
		Event:     EventTaskAssigned,
		Timestamp: time.Now(),
		Retry:     0,
		Source:    source,
	}
}
