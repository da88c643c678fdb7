package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 通知投递相关指标。
var (
	// NotifyPublishedTotal 发布到通知队列的消息总数。
	NotifyPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_notify_published_total",
		Help: "Total number of notification messages published to the queue.",
	})

	// NotifySentTotal 成功发送的通知邮件总数。
	NotifySentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_notify_sent_total",
		Help: "Total number of notification emails delivered.",
	})

	// NotifyFailedTotal 发送失败的通知总数（将按策略重试）。
	NotifyFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_notify_failed_total",
		Help: "Total number of notification deliveries that failed.",
	})

	// NotifySkippedTotal 因任务已删除/不完整而跳过的通知总数。
	NotifySkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_notify_skipped_total",
		Help: "Total number of notifications skipped because the task no longer exists.",
	})

	// NotifyDLQTotal 进入死信队列的消息总数。
	NotifyDLQTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_notify_dlq_total",
		Help: "Total number of notification messages moved to the dead letter stream.",
	})

	// NotifyAutoClaimTotal 通过 XAUTOCLAIM 接管的 Pending 消息总数。
	NotifyAutoClaimTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_notify_autoclaim_total",
		Help: "Total number of pending messages reclaimed from the stream.",
	})

	// ProjectCreatedTotal 创建成功的项目总数。
	ProjectCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_project_created_total",
		Help: "Total number of projects created.",
	})

	// TaskCreatedTotal 创建成功的任务总数。
	TaskCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_task_created_total",
		Help: "Total number of tasks created.",
	})

	// RateLimitRejectedTotal 被限流拒绝的请求总数。
	RateLimitRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskhub_ratelimit_rejected_total",
		Help: "Total number of requests rejected by the rate limiter.",
	})

	workerPoolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taskhub_notifier_worker_pool_size",
		Help: "Configured size of the notifier worker pool.",
	})
)

// InitMetrics 初始化静态指标值。
func InitMetrics(poolSize int) {
	workerPoolSize.Set(float64(poolSize))
}
