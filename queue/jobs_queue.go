package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

type JobType string

const (
	JobTypeSendNotification JobType = "send_notification"
)

const (
	DefaultMaxRetries = 5
	DefaultRetryDelay = 15 * time.Second
)

type Job struct {
	ID         string                 `json:"id"`
	Type       JobType                `json:"type"`
	Data       map[string]interface{} `json:"data"`
	CreatedAt  time.Time              `json:"created_at"`
	RetryCount int                    `json:"retry_count"`
}

// StringField returns a string value from the job payload.
func (j *Job) StringField(key string) (string, bool) {
	v, ok := j.Data[key].(string)
	return v, ok && v != ""
}

type Queue struct {
	client     *redis.Client
	queueName  string
	processing string
	delayed    string
	failed     string
	maxRetries int
	retryDelay time.Duration
}

func NewQueue(redisURL, queueName string) (*Queue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewQueueWithClient(client, queueName), nil
}

func NewQueueWithClient(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:     client,
		queueName:  queueName,
		processing: queueName + ":processing",
		delayed:    queueName + ":delayed",
		failed:     queueName + ":failed",
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
}

// SetRetryPolicy overrides the number of retries and the base backoff delay.
func (q *Queue) SetRetryPolicy(maxRetries int, baseDelay time.Duration) {
	q.maxRetries = maxRetries
	q.retryDelay = baseDelay
}

func (q *Queue) Enqueue(ctx context.Context, jobType JobType, data map[string]interface{}) (*Job, error) {
	job := &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}

	jobJSON, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.client.RPush(ctx, q.queueName, jobJSON).Err(); err != nil {
		return nil, fmt.Errorf("failed to push job to queue: %w", err)
	}

	log.Printf("Enqueued job %s of type %s", job.ID, job.Type)
	return job, nil
}

// Dequeue blocks up to timeout for the next job. It returns nil, nil when
// the queue stayed empty.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("unexpected BLPOP result format")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	if err := q.client.RPush(ctx, q.processing, result[1]).Err(); err != nil {
		log.Printf("Warning: Failed to move job %s to processing queue: %v", job.ID, err)
	}

	return &job, nil
}

func (q *Queue) CompleteJob(ctx context.Context, job *Job) error {
	jobJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.client.LRem(ctx, q.processing, 1, jobJSON).Err(); err != nil {
		return fmt.Errorf("failed to remove job from processing queue: %w", err)
	}

	log.Printf("Completed job %s of type %s", job.ID, job.Type)
	return nil
}

// IsLastAttempt reports whether a failure of the current run exhausts the
// retry budget.
func (q *Queue) IsLastAttempt(job *Job) bool {
	return job.RetryCount >= q.maxRetries
}

// RetryDelay is the backoff before retry n (1-based): base * 2^(n-1).
func (q *Queue) RetryDelay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	return q.retryDelay * time.Duration(1<<(n-1))
}

// FailJob removes the job from the processing list and either schedules a
// retry on the delayed set or parks it on the failed list.
func (q *Queue) FailJob(ctx context.Context, job *Job, cause error) error {
	// The processing entry was stored before RetryCount changed.
	original, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.client.LRem(ctx, q.processing, 1, original).Err(); err != nil {
		log.Printf("Warning: Failed to remove job %s from processing queue: %v", job.ID, err)
	}

	last := q.IsLastAttempt(job)
	job.RetryCount++
	if job.Data == nil {
		job.Data = map[string]interface{}{}
	}
	job.Data["last_error"] = cause.Error()

	if !last {
		delay := q.RetryDelay(job.RetryCount)
		retryAt := time.Now().Add(delay)

		updated, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("failed to marshal job: %w", err)
		}

		if err := q.client.ZAdd(ctx, q.delayed, &redis.Z{
			Score:  float64(retryAt.Unix()),
			Member: updated,
		}).Err(); err != nil {
			log.Printf("Warning: Failed to add job to delayed queue, adding to failed queue: %v", err)
			if err := q.client.RPush(ctx, q.failed, updated).Err(); err != nil {
				return fmt.Errorf("failed to push job to failed queue: %w", err)
			}
			return nil
		}

		log.Printf("Job %s of type %s scheduled for retry %d/%d in %s",
			job.ID, job.Type, job.RetryCount, q.maxRetries, delay)
		return nil
	}

	job.Data["all_retries_exhausted"] = true
	final, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.client.RPush(ctx, q.failed, final).Err(); err != nil {
		return fmt.Errorf("failed to push job to failed queue: %w", err)
	}

	log.Printf("Job %s of type %s moved to failed queue after %d attempts", job.ID, job.Type, job.RetryCount)
	return nil
}

// ProcessDelayedJobs moves every delayed job whose time has come back onto
// the main queue. It returns how many jobs were moved.
func (q *Queue) ProcessDelayedJobs(ctx context.Context) (int, error) {
	now := time.Now().Unix()

	jobs, err := q.client.ZRangeByScore(ctx, q.delayed, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get delayed jobs: %w", err)
	}

	moved := 0
	for _, jobJSON := range jobs {
		// ZRem first so two tickers never both requeue the same entry.
		removed, err := q.client.ZRem(ctx, q.delayed, jobJSON).Result()
		if err != nil {
			log.Printf("Warning: Failed to remove job from delayed queue: %v", err)
			continue
		}
		if removed == 0 {
			continue
		}

		if err := q.client.RPush(ctx, q.queueName, jobJSON).Err(); err != nil {
			log.Printf("Warning: Failed to move delayed job to main queue: %v", err)
			continue
		}
		moved++
	}

	if moved > 0 {
		log.Printf("Moved %d delayed jobs to queue %s", moved, q.queueName)
	}
	return moved, nil
}

// Stats returns the length of the main, delayed and failed collections.
func (q *Queue) Stats(ctx context.Context) (pending, delayed, failed int64, err error) {
	if pending, err = q.client.LLen(ctx, q.queueName).Result(); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to read queue length: %w", err)
	}
	if delayed, err = q.client.ZCard(ctx, q.delayed).Result(); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to read delayed queue length: %w", err)
	}
	if failed, err = q.client.LLen(ctx, q.failed).Result(); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to read failed queue length: %w", err)
	}
	return pending, delayed, failed, nil
}

func (q *Queue) Client() *redis.Client {
	return q.client
}

func (q *Queue) Close() error {
	return q.client.Close()
}
