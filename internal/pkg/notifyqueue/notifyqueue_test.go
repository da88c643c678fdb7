package notifyqueue

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestQueue(t *testing.T) (*redis.Client, *slog.Logger) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return rdb, logger
}

func TestProducerConsumer_Flow(t *testing.T) {
	rdb, logger := newTestQueue(t)
	ctx := context.Background()

	producer := NewProducer(rdb, logger, "test:notify:queue")
	consumer, err := NewConsumer(rdb, logger, "test:notify:queue", "test_group", "consumer-1",
		WithBlockTime(10*time.Millisecond))
	if err != nil {
		t.Fatalf("failed to create consumer: %v", err)
	}

	if err := producer.NotifyAssignment(ctx, 42, "task_create"); err != nil {
		t.Fatalf("NotifyAssignment failed: %v", err)
	}

	length, err := producer.QueueLength(ctx)
	if err != nil {
		t.Fatalf("QueueLength failed: %v", err)
	}
	if length != 1 {
		t.Errorf("expected queue length 1, got %d", length)
	}

	msgs, err := consumer.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}

	msg := msgs[0].Message
	if msg.TaskID != 42 {
		t.Errorf("expected task_id 42, got %d", msg.TaskID)
	}
	if msg.Event != EventTaskAssigned {
		t.Errorf("expected event %q, got %q", EventTaskAssigned, msg.Event)
	}
	if msg.Source != "task_create" {
		t.Errorf("expected source task_create, got %q", msg.Source)
	}

	if err := consumer.Ack(ctx, msgs[0].ID); err != nil {
		t.Fatalf("Ack failed: %v", err)
	}

	pending, err := consumer.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if pending != 0 {
		t.Errorf("expected 0 pending after ack, got %d", pending)
	}
}

func TestProducer_InvalidTaskID(t *testing.T) {
	rdb, logger := newTestQueue(t)

	producer := NewProducer(rdb, logger, "test:notify:queue")
	if err := producer.NotifyAssignment(context.Background(), 0, "task_create"); err == nil {
		t.Fatal("expected error for task id 0")
	}
}

func TestConsumer_HandleFailure_RetryThenDLQ(t *testing.T) {
	rdb, logger := newTestQueue(t)
	ctx := context.Background()

	producer := NewProducer(rdb, logger, "test:notify:queue")
	consumer, err := NewConsumer(rdb, logger, "test:notify:queue", "test_group", "consumer-1",
		WithBlockTime(10*time.Millisecond),
		WithMaxRetry(1))
	if err != nil {
		t.Fatalf("failed to create consumer: %v", err)
	}

	if err := producer.NotifyAssignment(ctx, 7, "task_create"); err != nil {
		t.Fatalf("NotifyAssignment failed: %v", err)
	}

	msgs, err := consumer.Read(ctx)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d (err=%v)", len(msgs), err)
	}

	// 第一次失败：重入队
	cause := context.DeadlineExceeded
	action, err := consumer.HandleFailure(ctx, msgs[0], cause)
	if err != nil {
		t.Fatalf("HandleFailure failed: %v", err)
	}
	if action != FailureActionRetry {
		t.Fatalf("expected retry, got %s", action)
	}

	msgs, err = consumer.Read(ctx)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("expected requeued message, got %d (err=%v)", len(msgs), err)
	}
	if msgs[0].Message.Retry != 1 {
		t.Errorf("expected retry counter 1, got %d", msgs[0].Message.Retry)
	}

	// 第二次失败：超过 maxRetry，进入死信队列
	action, err = consumer.HandleFailure(ctx, msgs[0], cause)
	if err != nil {
		t.Fatalf("HandleFailure failed: %v", err)
	}
	if action != FailureActionDLQ {
		t.Fatalf("expected dlq, got %s", action)
	}

	dlqLen, err := rdb.XLen(ctx, "test:notify:queue:dlq").Result()
	if err != nil {
		t.Fatalf("xlen dlq failed: %v", err)
	}
	if dlqLen != 1 {
		t.Errorf("expected 1 message in dlq, got %d", dlqLen)
	}
}
