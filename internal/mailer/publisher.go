// Package mailer hands mail jobs off to an external delivery queue.
// Delivery itself happens outside this service; publishing is
// fire-and-forget and never blocks the request path for long.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/userhub/userhub/internal/metrics"
)

const (
	// StreamKey is the Redis stream consumed by the mail worker.
	StreamKey = "stream:mail_jobs"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 10000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// Job types understood by the delivery worker.
const (
	JobConfirmation  = "confirmation"
	JobPasswordReset = "password_reset"
)

// Job is the message format pushed to the mail stream.
type Job struct {
	Type   string `json:"type"`
	UserID string `json:"uid"`
	Email  string `json:"to"`
	Token  string `json:"token"`
	SentAt int64  `json:"t"` // Unix milliseconds
}

// Publisher enqueues mail jobs to a Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new mail job publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "mailer.publisher"),
		metrics: recorder,
	}
}

// Publish adds a mail job to the stream. The error return exists for
// logging only; callers treat the handoff as fire-and-forget and never
// retry or fail the request on a dropped job.
func (p *Publisher) Publish(ctx context.Context, job Job) error {
	if job.SentAt == 0 {
		job.SentAt = time.Now().UnixMilli()
	}

	data, err := json.Marshal(job)
	if err != nil {
		p.metrics.IncMailJobPublished("dropped")
		return fmt.Errorf("marshal mail job: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	err = p.redis.XAdd(publishCtx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Err()

	if err != nil {
		p.metrics.IncMailJobPublished("dropped")
		p.logger.Warn("mail job dropped",
			slog.String("type", job.Type),
			slog.String("user_id", job.UserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish mail job: %w", err)
	}

	p.metrics.IncMailJobPublished("success")
	p.logger.Debug("mail job published",
		slog.String("type", job.Type),
		slog.String("user_id", job.UserID),
	)

	return nil
}
