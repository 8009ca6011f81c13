package queue

import (
	"fmt"
	"time"

	"taskpush/internal/delivery"

	"github.com/hibiken/asynq"
)

// Name is the queue worker events are delivered on.
const Name = "push"

// RedisOpt builds the asynq connection options shared by client, server and inspector.
func RedisOpt(redisAddr, password string, db int) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	}
}

// NewClient creates a new asynq client connected to Redis.
func NewClient(redisAddr, password string, db int) *asynq.Client {
	return asynq.NewClient(RedisOpt(redisAddr, password, db))
}

// NewInspector creates an asynq inspector used to observe worker liveness.
func NewInspector(redisAddr, password string, db int) *asynq.Inspector {
	return asynq.NewInspector(RedisOpt(redisAddr, password, db))
}

// NewServer creates the worker's asynq server.
func NewServer(redisAddr, password string, db int, concurrency int) *asynq.Server {
	return asynq.NewServer(
		RedisOpt(redisAddr, password, db),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				Name:      10, // priority weight
				"default": 1,
			},
			RetryDelayFunc: RetryDelay,
		},
	)
}

// RetryDelay backs off exponentially from 2s, capped at one minute.
// Worker events are interactive, so retries stay short.
func RetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n < 1 {
		n = 1
	}
	if n > 6 {
		return time.Minute
	}
	d := time.Duration(2*(1<<uint(n-1))) * time.Second
	if d > time.Minute {
		return time.Minute
	}
	return d
}

// Enqueuer is the part of *asynq.Client used to publish worker events.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueuePushReceived enqueues an inbound push payload for the worker.
func EnqueuePushReceived(client Enqueuer, payload []byte, maxRetry int) (*asynq.TaskInfo, error) {
	task, err := delivery.NewPushReceivedTask(payload)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return enqueue(client, task, maxRetry)
}

// EnqueueNotificationClick enqueues a notification interaction for the worker.
func EnqueueNotificationClick(client Enqueuer, n delivery.Notification, maxRetry int) (*asynq.TaskInfo, error) {
	task, err := delivery.NewNotificationClickTask(n)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return enqueue(client, task, maxRetry)
}

func enqueue(client Enqueuer, task *asynq.Task, maxRetry int) (*asynq.TaskInfo, error) {
	info, err := client.Enqueue(task,
		asynq.MaxRetry(maxRetry),
		asynq.Queue(Name),
	)
	if err != nil {
		return nil, fmt.Errorf("enqueuing task: %w", err)
	}
	return info, nil
}
