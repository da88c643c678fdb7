package notifyqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jabbarSoomro/project-management/internal/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// Producer 通知生产者，负责发布通知消息到队列。
//
// 由 API 服务使用，任务创建成功后把指派事件发布到 Redis Streams。
type Producer struct {
	queue  *NotifyQueue
	logger *slog.Logger
}

// NewProducer 创建一个新的通知生产者。
//
// 参数:
//   - rdb: Redis 客户端
//   - logger: 日志记录器
//   - streamName: Stream 名称（可选，默认为 "taskhub:notify:queue"）
//
// 返回值:
//   - *Producer: 生产者实例
func NewProducer(rdb *redis.Client, logger *slog.Logger, streamName ...string) *Producer {
	stream := "taskhub:notify:queue"
	if len(streamName) > 0 && streamName[0] != "" {
		stream = streamName[0]
	}

	return &Producer{
		queue:  NewNotifyQueue(rdb, logger, stream),
		logger: logger,
	}
}

// NotifyAssignment 发布一条任务指派通知到队列。
//
// 投递相对调用方是异步的：发布成功不代表邮件送达，
// 调用方也拿不到取消已发布消息的句柄。
//
// 参数:
//   - ctx: 上下文
//   - taskID: 任务 ID
//   - source: 消息来源（如 "task_create"）
//
// 返回值:
//   - error: 发布失败时返回错误
func (p *Producer) NotifyAssignment(ctx context.Context, taskID uint, source string) error {
	if taskID == 0 {
		return fmt.Errorf("invalid task id: %d", taskID)
	}

	if source == "" {
		source = "unknown"
	}

	msg := NewTaskAssignedMessage(taskID, source)
	if err := p.queue.Publish(ctx, msg); err != nil {
		p.logger.Error("publish notification failed",
			slog.Uint64("task_id", uint64(taskID)),
			slog.String("source", source),
			slog.String("error", err.Error()))
		return err
	}

	metrics.NotifyPublishedTotal.Inc()
	p.logger.Info("notification scheduled",
		slog.Uint64("task_id", uint64(taskID)),
		slog.String("source", source))

	return nil
}

// QueueLength 获取当前队列长度。
func (p *Producer) QueueLength(ctx context.Context) (int64, error) {
	return p.queue.StreamInfo(ctx)
}
