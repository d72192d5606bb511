package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"plan-payment-api/database"
	"plan-payment-api/queue"
)

// JobSource is the part of the Redis queue the worker consumes.
type JobSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
	CompleteJob(ctx context.Context, job *queue.Job) error
	FailJob(ctx context.Context, job *queue.Job, cause error) error
	IsLastAttempt(job *queue.Job) bool
	ProcessDelayedJobs(ctx context.Context) (int, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, notificationID string, final bool) error
}

// Worker delivers queued confirmation emails.
type Worker struct {
	queue         JobSource
	notifications Deliverer
	pollTimeout   time.Duration
	delayedEvery  time.Duration
	shutdown      chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	isRunning     bool
}

func NewWorker(q JobSource, notifications Deliverer) *Worker {
	return &Worker{
		queue:         q,
		notifications: notifications,
		pollTimeout:   5 * time.Second,
		delayedEvery:  5 * time.Second,
		shutdown:      make(chan struct{}),
	}
}

// Start launches concurrency delivery goroutines plus one goroutine that
// promotes due retries from the delayed set.
func (w *Worker) Start(concurrency int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return
	}
	w.isRunning = true

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(i)
	}

	w.wg.Add(1)
	go w.promoteDelayedJobs()

	log.Printf("Started %d worker goroutines", concurrency)
}

// Stop signals every goroutine to exit and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	w.mu.Unlock()

	log.Println("Stopping worker...")
	close(w.shutdown)
	w.wg.Wait()
	log.Println("Worker stopped")
}

func (w *Worker) processJobs(workerID int) {
	defer w.wg.Done()
	log.Printf("Worker %d starting", workerID)

	for {
		select {
		case <-w.shutdown:
			log.Printf("Worker %d shutting down", workerID)
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), w.pollTimeout+5*time.Second)
		job, err := w.queue.Dequeue(ctx, w.pollTimeout)
		cancel()

		if err != nil {
			log.Printf("Worker %d: Error dequeuing job: %v", workerID, err)
			w.sleep(time.Second)
			continue
		}

		if job == nil {
			continue
		}

		log.Printf("Worker %d processing job %s of type %s (retry %d)", workerID, job.ID, job.Type, job.RetryCount)
		w.handle(workerID, job)
	}
}

func (w *Worker) handle(workerID int, job *queue.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	jobErr := w.processJob(ctx, job)
	cancel()

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if jobErr != nil {
		log.Printf("Worker %d: Error processing job %s: %v", workerID, job.ID, jobErr)
		if err := w.queue.FailJob(ctx, job, jobErr); err != nil {
			log.Printf("Worker %d: Error marking job %s as failed: %v", workerID, job.ID, err)
		}
		return
	}

	if err := w.queue.CompleteJob(ctx, job); err != nil {
		log.Printf("Worker %d: Error marking job %s as complete: %v", workerID, job.ID, err)
	}
}

func (w *Worker) processJob(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeSendNotification:
		return w.processSendNotification(ctx, job)
	default:
		log.Printf("Dropping job %s with unknown type %s", job.ID, job.Type)
		return nil
	}
}

func (w *Worker) processSendNotification(ctx context.Context, job *queue.Job) error {
	notificationID, ok := job.StringField("notification_id")
	if !ok {
		log.Printf("Dropping job %s: invalid notification_id in job data", job.ID)
		return nil
	}

	err := w.notifications.Deliver(ctx, notificationID, w.queue.IsLastAttempt(job))
	if errors.Is(err, database.ErrNotificationNotFound) {
		log.Printf("Dropping job %s: notification %s does not exist", job.ID, notificationID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delivery of notification %s failed: %w", notificationID, err)
	}
	return nil
}

func (w *Worker) promoteDelayedJobs() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.delayedEvery)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if _, err := w.queue.ProcessDelayedJobs(ctx); err != nil {
				log.Printf("Error processing delayed jobs: %v", err)
			}
			cancel()
		}
	}
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.shutdown:
	case <-time.After(d):
	}
}
