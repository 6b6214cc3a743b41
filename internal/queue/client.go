package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const TaskTypePublishPost = "post:publish"

// PublishPostPayload wraps the post id carried by a durable publish task.
type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}

// PublishTaskID is the deterministic task id for a post's publish job. One
// id per post means a post can never have two live jobs; rescheduling
// removes the old task and enqueues under the same id.
func PublishTaskID(postID int64) string {
	return fmt.Sprintf("post:publish:%d", postID)
}

// Enqueuer is the narrow queue contract the scheduler depends on.
type Enqueuer interface {
	EnqueuePublish(ctx context.Context, postID int64, delay time.Duration) (string, error)
	Remove(ctx context.Context, taskID string) error
}

// Client wraps the asynq client and inspector behind the Enqueuer contract.
type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	attempts  int
}

func NewClient(client *asynq.Client, inspector *asynq.Inspector, attempts int) *Client {
	return &Client{
		client:    client,
		inspector: inspector,
		attempts:  attempts,
	}
}

func (c *Client) EnqueuePublish(ctx context.Context, postID int64, delay time.Duration) (string, error) {
	payload, err := json.Marshal(PublishPostPayload{PostID: postID})
	if err != nil {
		return "", err
	}

	task := asynq.NewTask(TaskTypePublishPost, payload)

	// MaxRetry counts redeliveries after the first run, so attempts=3 means
	// MaxRetry(2) for three total executions.
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.TaskID(PublishTaskID(postID)),
		asynq.ProcessIn(delay),
		asynq.MaxRetry(c.attempts-1),
	)
	if err != nil {
		return "", err
	}

	slog.Info("publish task enqueued", "task_id", info.ID, "post_id", postID, "delay", delay)
	return info.ID, nil
}

// Remove deletes a pending task. A task that already completed or was never
// enqueued is not an error; the caller only needs it gone.
func (c *Client) Remove(ctx context.Context, taskID string) error {
	err := c.inspector.DeleteTask("default", taskID)
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return err
}
