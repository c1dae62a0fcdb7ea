// Package worker processes queued email jobs: magic-link sign-in mail and
// welcome mail after profile completion.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/reindeer-games/backend/internal/mailer"
	"github.com/reindeer-games/backend/pkg/queue"
)

// EmailProcessor consumes the email queue and delivers mail over SMTP.
type EmailProcessor struct {
	mailer *mailer.Mailer
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates an email job processor.
func NewEmailProcessor(m *mailer.Mailer, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{mailer: m, queue: q, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeMagicLink:
		var payload queue.MagicLinkPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		body := "Click the link below to sign in to Reindeer Games:\n\n" +
			payload.Link + "\n\n" +
			"The link is valid for one hour and can be used once. " +
			"If you did not request it, you can ignore this email.\n"
		return p.mailer.Send(payload.RecipientEmail, "Sign in to Reindeer Games", body)

	case queue.JobTypeWelcome:
		var payload queue.WelcomePayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		body := fmt.Sprintf("Hi %s,\n\n"+
			"Your profile is all set. Head over to the board and suggest your first event!\n",
			payload.DisplayName)
		return p.mailer.Send(payload.RecipientEmail, "Welcome to Reindeer Games", body)

	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}
