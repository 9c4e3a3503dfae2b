package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lifecarechoice/leadgate/internal/metrics"
)

// Task is one best-effort delivery (email notification, webhook forward)
// queued after a lead has been durably accepted. Sink, when set, names the
// downstream sink for failure metrics.
type Task struct {
	Name   string
	Sink   string
	LeadID string
	Run    func(ctx context.Context) error
}

// Dispatcher executes fire-and-forget tasks on a bounded queue with a
// capped retry budget. Callers never block on delivery and never observe
// delivery failures; outcomes are logged only.
type Dispatcher struct {
	queue       chan Task
	workers     int
	maxAttempts int
	retryDelay  time.Duration
	taskTimeout time.Duration
	logger      *slog.Logger
	wg          sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
	TaskTimeout time.Duration
}

func NewDispatcher(cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 128
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 30 * time.Second
	}

	return &Dispatcher{
		queue:       make(chan Task, cfg.QueueSize),
		workers:     cfg.Workers,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		taskTimeout: cfg.TaskTimeout,
		logger:      logger,
	}
}

// Start launches the worker goroutines. The context bounds each task
// attempt; cancelling it drains nothing further.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
}

// Enqueue adds a task without blocking. When the queue is full or the
// dispatcher has stopped the task is dropped and logged; delivery here is
// best-effort by contract. The mutex keeps the send from racing Stop's
// close of the queue.
func (d *Dispatcher) Enqueue(task Task) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.Warn("dispatcher stopped, dropping task",
			slog.String("task", task.Name),
			slog.String("lead_id", task.LeadID))
		return false
	}

	select {
	case d.queue <- task:
		return true
	default:
		d.logger.Warn("dispatcher queue full, dropping task",
			slog.String("task", task.Name),
			slog.String("lead_id", task.LeadID))
		return false
	}
}

// Stop closes the queue and waits for in-flight tasks to finish. Enqueue
// calls arriving after Stop report the task as dropped.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()

	for task := range d.queue {
		d.runWithRetries(ctx, task)
	}
}

func (d *Dispatcher) runWithRetries(ctx context.Context, task Task) {
	var err error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, d.taskTimeout)
		err = task.Run(attemptCtx)
		cancel()

		if err == nil {
			if attempt > 1 {
				d.logger.Info("task succeeded after retry",
					slog.String("task", task.Name),
					slog.String("lead_id", task.LeadID),
					slog.Int("attempt", attempt))
			}
			return
		}

		if ctx.Err() != nil {
			break
		}
		if attempt < d.maxAttempts && d.retryDelay > 0 {
			time.Sleep(d.retryDelay)
		}
	}

	d.logger.Error("task failed after all attempts",
		slog.String("task", task.Name),
		slog.String("lead_id", task.LeadID),
		slog.Int("attempts", d.maxAttempts),
		slog.Any("error", err))

	if task.Sink != "" {
		metrics.RecordSinkFailure(task.Sink)
	}
}
