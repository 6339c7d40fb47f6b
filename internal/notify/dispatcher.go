package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Danhnam1/Audit-System-sub000/internal/core/events"
)

// Job is one webhook delivery: a grant lifecycle event serialized for the
// admin application's notification endpoint.
type Job struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker delivering notification", "worker_id", w.ID, "event_id", job.EventID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type Config struct {
	WebhookURL string
	APIKey     string
	Timeout    time.Duration
	MaxWorkers int
	QueueSize  int
}

// Dispatcher fans grant events out to the admin application over a bounded
// worker pool. Delivery is strictly best-effort: a full queue drops the
// job with a log line, and a failed POST is not retried. The grant protocol
// never depends on a notification landing.
type Dispatcher struct {
	webhookURL string
	apiKey     string
	timeout    time.Duration
	logger     *slog.Logger
	httpClient *http.Client

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewDispatcher(config Config, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	d := &Dispatcher{
		webhookURL: config.WebhookURL,
		apiKey:     config.APIKey,
		timeout:    timeout,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},

		maxWorkers: maxWorkers,
		jobQueue:   make(chan Job, queueSize),
		workerPool: make(chan chan Job, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	d.startWorkerPool()

	return d
}

func (d *Dispatcher) startWorkerPool() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			worker := NewWorker(i, d.workerPool, d.logger)
			worker.Start(d.ctx, &d.wg, d.deliver)
		}

		go d.dispatch()

		d.logger.Info("notification worker pool started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	d.wg.Add(1)
	defer d.wg.Done()

	for {
		select {
		case job := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- job:
				case <-d.ctx.Done():
					return
				}
			case <-d.ctx.Done():
				return
			}
		case <-d.ctx.Done():
			return
		}
	}
}

// SubscribeTo registers the dispatcher for all grant lifecycle events.
func (d *Dispatcher) SubscribeTo(bus *events.EventBus) {
	handler := func(ctx context.Context, event events.Event) error {
		d.Enqueue(event)
		return nil
	}
	bus.Subscribe(events.EventTypeGrantIssued, handler)
	bus.Subscribe(events.EventTypeGrantScanned, handler)
	bus.Subscribe(events.EventTypeGrantRevoked, handler)
}

// Enqueue queues an event for delivery, dropping it when the queue is full.
func (d *Dispatcher) Enqueue(event events.Event) {
	payload, _ := event.Payload().(map[string]interface{})
	job := Job{
		EventID:   event.EventID(),
		EventType: event.EventType(),
		Timestamp: event.OccurredAt(),
		Payload:   payload,
	}

	select {
	case d.jobQueue <- job:
		d.logger.Debug("notification queued",
			"event_id", job.EventID,
			"event_type", job.EventType,
			"queue_length", len(d.jobQueue))
	default:
		d.logger.Warn("notification queue full, dropping event",
			"event_id", job.EventID,
			"event_type", job.EventType,
			"queue_capacity", cap(d.jobQueue))
	}
}

func (d *Dispatcher) deliver(job Job) {
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()

	body, err := json.Marshal(job)
	if err != nil {
		d.logger.Error("failed to marshal notification", "event_id", job.EventID, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		d.logger.Error("failed to build notification request", "event_id", job.EventID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Warn("notification delivery failed", "event_id", job.EventID, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		d.logger.Warn("notification rejected",
			"event_id", job.EventID,
			"status", resp.StatusCode)
		return
	}

	d.logger.Debug("notification delivered", "event_id", job.EventID, "event_type", job.EventType)
}

func (d *Dispatcher) Shutdown() {
	d.logger.Info("shutting down notification dispatcher")
	d.cancel()
	d.wg.Wait()
	d.logger.Info("notification dispatcher shutdown complete")
}
