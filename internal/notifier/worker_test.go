package notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/jabbarSoomro/project-management/internal/model"
	"github.com/jabbarSoomro/project-management/internal/pkg/notifyqueue"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)
	return redis.NewClient(&redis.Options{Addr: s.Addr()})
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockTaskStore 按 ID 返回预置任务。
type mockTaskStore struct {
	mu    sync.Mutex
	tasks map[uint]*model.Task
}

func (m *mockTaskStore) FindByIDWithRelations(ctx context.Context, id uint) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

// mockNotifier 记录投递调用。
type mockNotifier struct {
	mu    sync.Mutex
	sent  []uint
	fails int // 前 N 次调用返回错误
}

func (m *mockNotifier) SendTaskAssigned(ctx context.Context, task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails > 0 {
		m.fails--
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, task.ID)
	return nil
}

func (m *mockNotifier) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newWorkerFixture(t *testing.T, rdb *redis.Client, tasks *mockTaskStore, mn *mockNotifier, opts ...notifyqueue.ConsumerOption) *Worker {
	t.Helper()

	logger := newTestLogger()
	baseOpts := []notifyqueue.ConsumerOption{
		notifyqueue.WithBlockTime(50 * time.Millisecond),
		notifyqueue.WithPendingIdle(10 * time.Minute),
	}
	consumer, err := notifyqueue.NewConsumer(rdb, logger, "test:notify:queue", "notifier_group", "worker-1", append(baseOpts, opts...)...)
	if err != nil {
		t.Fatalf("create consumer: %v", err)
	}

	return NewWorker(consumer, tasks, mn, logger, 2, 10)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWorker_DeliversNotification(t *testing.T) {
	rdb := newTestRedis(t)
	defer rdb.Close()
	logger := newTestLogger()

	tasks := &mockTaskStore{tasks: map[uint]*model.Task{
		42: {
			ID:             42,
			Title:          "Wireframes",
			AssignedUserID: 2,
			AssignedUser:   model.User{ID: 2, Name: "Dana", Email: "dana@example.com"},
		},
	}}
	mn := &mockNotifier{}
	w := newWorkerFixture(t, rdb, tasks, mn)

	producer := notifyqueue.NewProducer(rdb, logger, "test:notify:queue")
	if err := producer.NotifyAssignment(context.Background(), 42, "test"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	waitFor(t, 3*time.Second, func() bool { return mn.sentCount() == 1 })

	cancel()
	<-done

	if mn.sent[0] != 42 {
		t.Errorf("expected delivery for task 42, got %v", mn.sent)
	}
}

func TestWorker_SkipsDeletedTask(t *testing.T) {
	rdb := newTestRedis(t)
	defer rdb.Close()
	logger := newTestLogger()

	// 任务表为空：相当于消息排队期间任务被删除
	tasks := &mockTaskStore{tasks: map[uint]*model.Task{}}
	mn := &mockNotifier{}
	w := newWorkerFixture(t, rdb, tasks, mn)

	producer := notifyqueue.NewProducer(rdb, logger, "test:notify:queue")
	if err := producer.NotifyAssignment(context.Background(), 7, "test"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// 消息被跳过并 Ack：Pending 归零，且没有投递
	waitFor(t, 3*time.Second, func() bool {
		pending, err := w.consumer.Pending(context.Background())
		return err == nil && pending == 0
	})

	cancel()
	<-done

	if mn.sentCount() != 0 {
		t.Errorf("expected no delivery for deleted task, got %v", mn.sent)
	}
}

func TestWorker_RetriesFailedDelivery(t *testing.T) {
	rdb := newTestRedis(t)
	defer rdb.Close()
	logger := newTestLogger()

	tasks := &mockTaskStore{tasks: map[uint]*model.Task{
		42: {
			ID:             42,
			Title:          "Wireframes",
			AssignedUserID: 2,
			AssignedUser:   model.User{ID: 2, Name: "Dana", Email: "dana@example.com"},
		},
	}}
	// 第一次投递失败，消息重新入队后第二次成功
	mn := &mockNotifier{fails: 1}
	w := newWorkerFixture(t, rdb, tasks, mn, notifyqueue.WithMaxRetry(3))

	producer := notifyqueue.NewProducer(rdb, logger, "test:notify:queue")
	if err := producer.NotifyAssignment(context.Background(), 42, "test"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	waitFor(t, 5*time.Second, func() bool { return mn.sentCount() == 1 })

	cancel()
	<-done
}
