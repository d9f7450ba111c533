// Package async provides the async category adapter. HandleData enqueues a job
// and returns a Future at once; a single dispatcher runs jobs in submission
// order and fans each job out over its employees.
package async

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/upb/employee-management/adapters"
)

// Provider is the canonical provider name
const Provider adapters.ProviderName = "http"

// Aliases are additional names the provider is registered under
var Aliases = []adapters.ProviderName{"aiohttp"}

// Recognized option keys
const (
	OptEndpoint  = "endpoint"
	OptWorkers   = "workers"
	OptQueueSize = "queue_size"
	OptTimeout   = "timeout"
)

var knownOptions = []string{OptEndpoint, OptWorkers, OptQueueSize, OptTimeout}

const (
	defaultWorkers   = 4
	defaultQueueSize = 64
	defaultTimeout   = 30 * time.Second
)

// Failure codes carried by adapters.Error
const (
	CodeInvalidPayload = "invalid_payload"
	CodeQueueFull      = "queue_full"
	CodeUnknownTask    = "unknown_task"
	CodeTaskFailed     = "task_failed"
	CodeTimeout        = "timeout"
)

// TaskFunc processes one employee of a job. It must return promptly once ctx is done.
type TaskFunc func(ctx context.Context, employeeID string) (map[string]any, error)

// taskPayload is the accepted HandleData input
type taskPayload struct {
	Task        string   `json:"task" validate:"required"`
	EmployeeIDs []string `json:"employee_ids" validate:"required,min=1,dive,required"`
}

type job struct {
	id          string
	task        string
	employeeIDs []string
	ctx         context.Context
	cancel      context.CancelFunc
	future      *adapters.Future
}

// Adapter is the async task adapter
type Adapter struct {
	*adapters.Lifecycle
	logger *zap.Logger

	tasksMu sync.RWMutex
	tasks   map[string]TaskFunc

	// set during Initialize
	remote    *remoteClient
	workers   int
	timeout   time.Duration
	queue     chan *job
	baseCtx   context.Context
	cancelAll context.CancelFunc
	done      chan struct{}

	pendingMu sync.Mutex
	pending   map[string]*job
}

// New creates an uninitialized async adapter with the built-in tasks registered
func New(logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{
		Lifecycle: adapters.NewLifecycle(adapters.CategoryAsync, Provider),
		logger:    logger.With(zap.String("adapter", "async/http")),
		tasks:     make(map[string]TaskFunc),
		pending:   make(map[string]*job),
	}
	a.tasks[TaskProcessPayroll] = processPayroll
	return a
}

// RegisterTask adds or replaces a local task
func (a *Adapter) RegisterTask(name string, fn TaskFunc) error {
	if name == "" {
		return errors.New("task name cannot be empty")
	}
	if fn == nil {
		return errors.New("task function cannot be nil")
	}
	a.tasksMu.Lock()
	defer a.tasksMu.Unlock()
	a.tasks[name] = fn
	return nil
}

// Initialize starts the dispatcher
func (a *Adapter) Initialize(ctx context.Context, opts adapters.Options) error {
	return a.Lifecycle.Initialize(opts, knownOptions, func() error {
		endpoint, err := opts.String(OptEndpoint, "")
		if err != nil {
			return err
		}
		workers, err := opts.Int(OptWorkers, defaultWorkers)
		if err != nil {
			return err
		}
		queueSize, err := opts.Int(OptQueueSize, defaultQueueSize)
		if err != nil {
			return err
		}
		timeout, err := opts.Duration(OptTimeout, defaultTimeout)
		if err != nil {
			return err
		}
		if workers < 1 {
			return fmt.Errorf("%s must be at least 1", OptWorkers)
		}
		if queueSize < 1 {
			return fmt.Errorf("%s must be at least 1", OptQueueSize)
		}
		if timeout <= 0 {
			return fmt.Errorf("%s must be positive", OptTimeout)
		}
		if endpoint != "" {
			remote, err := newRemoteClient(endpoint, &http.Client{Timeout: timeout})
			if err != nil {
				return err
			}
			a.remote = remote
		}

		a.workers = workers
		a.timeout = timeout
		a.queue = make(chan *job, queueSize)
		a.baseCtx, a.cancelAll = context.WithCancel(context.Background())
		a.done = make(chan struct{})

		go a.dispatch()

		a.logger.Info("async adapter initialized",
			zap.Int("workers", workers),
			zap.Int("queue_size", queueSize),
			zap.Duration("timeout", timeout),
			zap.Bool("remote", a.remote != nil))
		return nil
	})
}

// HandleData validates and enqueues a job. The returned future settles when
// the job completes, fails, times out or is cancelled.
func (a *Adapter) HandleData(ctx context.Context, payload adapters.Payload) (*adapters.Future, error) {
	var future *adapters.Future
	err := a.Use(func() error {
		var p taskPayload
		if err := payload.Decode(&p); err != nil {
			return adapters.NewOperationError(adapters.CategoryAsync, Provider, CodeInvalidPayload, "invalid task payload", false, err)
		}

		jobCtx, cancel := context.WithTimeout(a.baseCtx, a.timeout)
		j := &job{
			id:          uuid.NewString(),
			task:        p.Task,
			employeeIDs: p.EmployeeIDs,
			ctx:         jobCtx,
			cancel:      cancel,
		}
		j.future = adapters.NewFuture(j.id, cancel)

		a.pendingMu.Lock()
		select {
		case a.queue <- j:
			a.pending[j.id] = j
			a.pendingMu.Unlock()
		default:
			a.pendingMu.Unlock()
			cancel()
			return adapters.NewOperationError(adapters.CategoryAsync, Provider, CodeQueueFull, "job queue is full", true, nil)
		}

		a.logger.Debug("job enqueued",
			zap.String("job_id", j.id),
			zap.String("task", j.task),
			zap.Int("employees", len(j.employeeIDs)))
		future = j.future
		return nil
	})
	return future, err
}

// Close cancels every pending job and stops the dispatcher
func (a *Adapter) Close() error {
	return a.Lifecycle.Close(func() error {
		a.cancelAll()

		a.pendingMu.Lock()
		for _, j := range a.pending {
			j.future.Cancel()
		}
		a.pendingMu.Unlock()

		close(a.queue)
		<-a.done
		a.logger.Info("async adapter closed")
		return nil
	})
}

// Pending returns the number of jobs not yet finished
func (a *Adapter) Pending() int {
	a.pendingMu.Lock()
	defer a.pendingMu.Unlock()
	return len(a.pending)
}

func (a *Adapter) dispatch() {
	defer close(a.done)
	for j := range a.queue {
		a.run(j)
	}
}

func (a *Adapter) run(j *job) {
	defer func() {
		j.cancel()
		a.pendingMu.Lock()
		delete(a.pending, j.id)
		a.pendingMu.Unlock()
	}()

	if j.future.State() != adapters.FuturePending {
		return
	}

	exec, err := a.resolveTask(j.task)
	if err != nil {
		j.future.Fail(err)
		return
	}

	start := time.Now()
	results := make([]map[string]any, len(j.employeeIDs))

	g, gctx := errgroup.WithContext(j.ctx)
	g.SetLimit(a.workers)
	for i, employeeID := range j.employeeIDs {
		i, employeeID := i, employeeID
		g.Go(func() error {
			out, err := exec(gctx, employeeID)
			if err != nil {
				return fmt.Errorf("employee %s: %w", employeeID, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		switch {
		case errors.Is(j.ctx.Err(), context.DeadlineExceeded):
			j.future.Fail(adapters.NewOperationError(adapters.CategoryAsync, Provider, CodeTimeout,
				fmt.Sprintf("task %s timed out", j.task), true, err))
		case j.ctx.Err() != nil:
			j.future.Cancel()
		default:
			j.future.Fail(adapters.NewOperationError(adapters.CategoryAsync, Provider, CodeTaskFailed,
				fmt.Sprintf("task %s failed", j.task), adapters.IsRetryable(err), err))
		}
		a.logger.Warn("job failed",
			zap.String("job_id", j.id),
			zap.String("task", j.task),
			zap.Error(err))
		return
	}

	j.future.Resolve(adapters.NewResult(a, map[string]any{
		"job_id":    j.id,
		"task":      j.task,
		"processed": len(results),
		"results":   results,
	}))
	a.logger.Debug("job completed",
		zap.String("job_id", j.id),
		zap.String("task", j.task),
		zap.Duration("elapsed", time.Since(start)))
}

// resolveTask prefers a local task and falls back to the remote endpoint
func (a *Adapter) resolveTask(name string) (TaskFunc, error) {
	a.tasksMu.RLock()
	fn, ok := a.tasks[name]
	a.tasksMu.RUnlock()
	if ok {
		return fn, nil
	}
	if a.remote != nil {
		return a.remote.task(name), nil
	}
	return nil, adapters.NewOperationError(adapters.CategoryAsync, Provider, CodeUnknownTask,
		fmt.Sprintf("unknown task %q", name), false, nil)
}
