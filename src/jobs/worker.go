// Package jobs runs background work on asynq.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
)

// Invalidator drops cached advice. advice.Service satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context, studentIDs ...string) error
}

func HandleInvalidateAdviceTask(inv Invalidator, logger log.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload InvalidateAdvicePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			level.Error(logger).Log("msg", "payload decode failed", "task", t.Type(), "err", err)
			return errors.Wrap(asynq.SkipRetry, err.Error())
		}
		if len(payload.StudentIDs) == 0 {
			return nil
		}
		if err := inv.Invalidate(ctx, payload.StudentIDs...); err != nil {
			return err
		}
		level.Info(logger).Log("msg", "advice invalidated", "students", len(payload.StudentIDs))
		return nil
	}
}

func RegisterHandlers(mux *asynq.ServeMux, inv Invalidator, logger log.Logger) {
	mux.HandleFunc(TypeInvalidateAdvice, HandleInvalidateAdviceTask(inv, logger))
}

// NewServer returns nil when Redis is not configured.
func NewServer(redisURI string, logger log.Logger) *asynq.Server {
	if redisURI == "" {
		return nil
	}
	return asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisURI},
		asynq.Config{
			Concurrency: 4,
			Logger:      asynqLogger{logger},
		},
	)
}

// Enqueuer schedules jobs. A nil client drops them.
type Enqueuer struct {
	client *asynq.Client
	logger log.Logger
}

func NewEnqueuer(client *asynq.Client, logger log.Logger) *Enqueuer {
	return &Enqueuer{client: client, logger: logger}
}

func (e *Enqueuer) InvalidateAdvice(ctx context.Context, studentIDs []string) error {
	if e == nil || e.client == nil || len(studentIDs) == 0 {
		return nil
	}
	task, err := NewInvalidateAdviceTask(studentIDs)
	if err != nil {
		return err
	}
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return errors.Wrap(err, "enqueue advice invalidation")
	}
	level.Debug(e.logger).Log("msg", "task enqueued", "task", info.Type, "id", info.ID)
	return nil
}

// asynqLogger routes asynq's own logging through go-kit.
type asynqLogger struct {
	l log.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { level.Debug(a.l).Log("msg", fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { level.Info(a.l).Log("msg", fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { level.Warn(a.l).Log("msg", fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { level.Error(a.l).Log("msg", fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) {
	level.Error(a.l).Log("msg", fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}
