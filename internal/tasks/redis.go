package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
)

// RedisDispatcher pushes tasks onto a redis list consumed by the Worker.
type RedisDispatcher struct {
	rdb   *redis.Client
	queue string
}

func NewRedisDispatcher(rdb *redis.Client, queue string) *RedisDispatcher {
	return &RedisDispatcher{rdb: rdb, queue: queue}
}

func (d *RedisDispatcher) Dispatch(ctx context.Context, t Task) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if err := d.rdb.LPush(ctx, d.queue, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// HandlerFunc processes one task. A returned error triggers a retry unless
// the worker's Fatal predicate says otherwise.
type HandlerFunc func(ctx context.Context, t Task) error

// Worker pops tasks off the redis list and routes them to registered
// handlers, retrying transient failures up to MaxAttempts.
type Worker struct {
	rdb         *redis.Client
	queue       string
	handlers    map[string]HandlerFunc
	maxAttempts int

	// Fatal reports whether an error must not be retried (caller misuse,
	// unresolvable actions). Transient failures are re-dispatched.
	Fatal func(error) bool
}

func NewWorker(rdb *redis.Client, queue string, maxAttempts int) *Worker {
	return &Worker{
		rdb:         rdb,
		queue:       queue,
		handlers:    make(map[string]HandlerFunc),
		maxAttempts: maxAttempts,
		Fatal:       func(error) bool { return false },
	}
}

func (w *Worker) Handle(kind string, fn HandlerFunc) {
	w.handlers[kind] = fn
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("task worker started", "queue", w.queue)
	for {
		res, err := w.rdb.BRPop(ctx, 5*time.Second, w.queue).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				slog.Info("task worker stopped")
				return
			}
			if !errors.Is(err, redis.Nil) {
				slog.Error("task queue pop failed", "error", err)
				time.Sleep(time.Second)
			}
			continue
		}
		// BRPop returns [queue, payload].
		if len(res) != 2 {
			continue
		}
		w.process(ctx, []byte(res[1]))
	}
}

func (w *Worker) process(ctx context.Context, payload []byte) {
	var t Task
	if err := json.Unmarshal(payload, &t); err != nil {
		slog.Error("dropping malformed task", "error", err)
		return
	}

	fn, ok := w.handlers[t.Kind]
	if !ok {
		slog.Error("dropping task with unknown kind", "kind", t.Kind)
		return
	}

	err := fn(ctx, t)
	if err == nil {
		return
	}

	if w.Fatal(err) {
		slog.Error("task failed fatally", "kind", t.Kind, "decision_id", t.DecisionID, "error", err)
		sentry.CaptureException(err)
		return
	}

	if t.Attempt+1 >= w.maxAttempts {
		slog.Error("task exhausted retries", "kind", t.Kind, "decision_id", t.DecisionID, "attempts", t.Attempt+1, "error", err)
		sentry.CaptureException(err)
		return
	}

	t.Attempt++
	slog.Warn("task failed, retrying", "kind", t.Kind, "attempt", t.Attempt, "error", err)
	retry, marshalErr := json.Marshal(t)
	if marshalErr != nil {
		return
	}
	if pushErr := w.rdb.LPush(ctx, w.queue, retry).Err(); pushErr != nil {
		slog.Error("failed to requeue task", "kind", t.Kind, "error", pushErr)
	}
}
