// Package notifier 实现通知投递 Worker。
//
// 它从 Redis Streams 消费任务指派事件，回读任务最新状态，
// 并通过 Worker Pool 并发投递邮件。
package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/jabbarSoomro/project-management/internal/model"
	"github.com/jabbarSoomro/project-management/internal/pkg/metrics"
	"github.com/jabbarSoomro/project-management/internal/pkg/notify"
	"github.com/jabbarSoomro/project-management/internal/pkg/notifyqueue"
	"github.com/jabbarSoomro/project-management/internal/pkg/queue"
)

// TaskStore 投递时回读任务状态的消费端接口。
type TaskStore interface {
	FindByIDWithRelations(ctx context.Context, id uint) (*model.Task, error)
}

// Worker 通知投递 Worker。
//
// 投递语义是 at-least-once：消息只有在处理完成后才会被 Ack，
// Worker 崩溃后 Pending 消息会被重新认领，收件人可能收到重复邮件。
type Worker struct {
	consumer *notifyqueue.Consumer
	pool     *queue.Queue
	tasks    TaskStore
	notifier notify.Notifier
	logger   *slog.Logger

	readBackoff     time.Duration
	shutdownTimeout time.Duration
}

// NewWorker 创建通知投递 Worker。
//
// 参数:
//   - consumer: 队列消费者
//   - tasks: 任务存储
//   - notifier: 邮件通知器
//   - logger: 日志记录器
//   - poolSize: Worker Pool 大小
//   - capacity: Worker Pool 队列容量
func NewWorker(consumer *notifyqueue.Consumer, tasks TaskStore, notifier notify.Notifier, logger *slog.Logger, poolSize, capacity int) *Worker {
	return &Worker{
		consumer:        consumer,
		pool:            queue.NewQueue(logger, poolSize, capacity),
		tasks:           tasks,
		notifier:        notifier,
		logger:          logger,
		readBackoff:     1 * time.Second,
		shutdownTimeout: 30 * time.Second,
	}
}

// Run 启动消费循环，直到 ctx 被取消。
//
// 循环每轮从队列读取一批消息，逐条提交给 Worker Pool 投递。
// 读取出错时退避后重试，不会让单次 Redis 抖动终止整个循环。
func (w *Worker) Run(ctx context.Context) error {
	w.pool.Start(ctx)
	defer func() {
		if err := w.pool.ShutdownWithTimeout(w.shutdownTimeout); err != nil {
			w.logger.Error("worker pool shutdown", slog.String("error", err.Error()))
		}
	}()

	w.logger.Info("notifier worker started",
		slog.String("group", w.consumer.GroupName()))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notifier worker stopping")
			return nil
		default:
		}

		msgs, err := w.consumer.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("read notifications failed", slog.String("error", err.Error()))
			select {
			case <-time.After(w.readBackoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		for _, msg := range msgs {
			m := msg
			if err := w.pool.EnqueueBlocking(ctx, func(jobCtx context.Context) error {
				return w.deliver(jobCtx, m)
			}); err != nil {
				// 入队失败时不 Ack，消息留在 Pending 等待重新认领
				w.logger.Warn("enqueue delivery failed",
					slog.String("msg_id", m.ID),
					slog.String("error", err.Error()))
			}
		}
	}
}

// deliver 投递单条通知。
//
// 执行时回读任务的最新状态：任务已被删除则跳过并 Ack，
// 投递失败则交给消费者按重试策略处理。
func (w *Worker) deliver(ctx context.Context, msg *notifyqueue.MessageWithID) error {
	task, err := w.tasks.FindByIDWithRelations(ctx, msg.Message.TaskID)
	if err != nil {
		w.logger.Error("load task failed",
			slog.Uint64("task_id", uint64(msg.Message.TaskID)),
			slog.String("error", err.Error()))
		if _, ferr := w.consumer.HandleFailure(ctx, msg, err); ferr != nil {
			w.logger.Error("handle failure failed",
				slog.String("msg_id", msg.ID),
				slog.String("error", ferr.Error()))
		}
		return err
	}

	if task == nil {
		// 任务在消息排队期间被删除，直接确认并跳过
		metrics.NotifySkippedTotal.Inc()
		w.logger.Info("notification skipped, task gone",
			slog.Uint64("task_id", uint64(msg.Message.TaskID)),
			slog.String("msg_id", msg.ID))
		return w.consumer.Ack(ctx, msg.ID)
	}

	if err := w.notifier.SendTaskAssigned(ctx, task); err != nil {
		metrics.NotifyFailedTotal.Inc()
		action, ferr := w.consumer.HandleFailure(ctx, msg, err)
		if ferr != nil {
			w.logger.Error("handle failure failed",
				slog.String("msg_id", msg.ID),
				slog.String("error", ferr.Error()))
		} else {
			w.logger.Warn("notification delivery failed",
				slog.Uint64("task_id", uint64(task.ID)),
				slog.String("action", string(action)),
				slog.String("error", err.Error()))
		}
		return err
	}

	metrics.NotifySentTotal.Inc()
	w.logger.Info("notification delivered",
		slog.Uint64("task_id", uint64(task.ID)),
		slog.Uint64("assigned_user_id", uint64(task.AssignedUserID)))

	return w.consumer.Ack(ctx, msg.ID)
}
