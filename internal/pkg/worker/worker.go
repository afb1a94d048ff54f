package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Christentimmy/CasaRanche-Backend/pkg/metrics"

	"go.uber.org/zap"
)

var (
	errPanicked = errors.New("task panicked")
	errDropped  = errors.New("task dropped")
)

// Task 异步任务
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

type job struct {
	ctx   context.Context
	task  Task
	retry int // 重试次数
}

// Options 任务池参数
type Options struct {
	Workers     int
	QueueSize   int
	MaxRetry    int
	RetryDelay  time.Duration // 第 n 次重试前等待 n*RetryDelay
	TaskTimeout time.Duration // 单次执行超时
}

type WorkerPool struct {
	taskQueue  chan job
	retryQueue chan job // 重试队列
	opts       Options
	log        *zap.Logger

	mu      sync.RWMutex
	stopped bool
	quit    chan struct{}
	wg      sync.WaitGroup
}

func NewWorkerPool(opts Options, log *zap.Logger) *WorkerPool {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = 30 * time.Second
	}
	retrySize := opts.QueueSize / 2
	if retrySize == 0 {
		retrySize = 1
	}
	return &WorkerPool{
		taskQueue:  make(chan job, opts.QueueSize),
		retryQueue: make(chan job, retrySize),
		opts:       opts,
		log:        log,
		quit:       make(chan struct{}),
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	// 启动重试处理协程
	p.wg.Add(1)
	go p.retryWorker()
	p.log.Info("worker pool started", zap.Int("workers", p.opts.Workers), zap.Int("queue_size", p.opts.QueueSize))
}

// Submit 提交任务，队列已满或任务池已停止时返回 false
func (p *WorkerPool) Submit(ctx context.Context, task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.log.Warn("worker pool stopped, task dropped", zap.String("task", task.Name()))
		return false
	}

	select {
	case p.taskQueue <- job{ctx: ctx, task: task}:
		metrics.GetGlobalCollector().UpdateQueueDepth(len(p.taskQueue))
		return true
	default:
		p.logFailedTask(job{task: task}, nil, "queue full")
		return false
	}
}

// Stop 停止接收新任务，处理完队列中剩余任务后返回；ctx 到期则放弃等待
func (p *WorkerPool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.quit)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.dropLeftovers()
		p.log.Info("worker pool drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.taskQueue:
			p.process(id, j)
		case <-p.quit:
			// 退出前处理完剩余任务
			for {
				select {
				case j := <-p.taskQueue:
					p.process(id, j)
				default:
					return
				}
			}
		}
	}
}

func (p *WorkerPool) process(id int, j job) {
	metrics.GetGlobalCollector().UpdateQueueDepth(len(p.taskQueue))

	err := p.run(j)
	if err == nil {
		metrics.GetGlobalCollector().RecordFollowupJob(j.task.Name(), nil)
		return
	}

	p.log.Warn("task failed",
		zap.Int("worker", id),
		zap.String("task", j.task.Name()),
		zap.Int("attempt", j.retry+1),
		zap.Error(err),
	)

	// 如果未达到最大重试次数，加入重试队列
	if j.retry >= p.opts.MaxRetry {
		p.logFailedTask(j, err, "max retries exceeded")
		return
	}
	select {
	case <-p.quit:
		p.logFailedTask(j, err, "pool stopping")
		return
	default:
	}
	j.retry++
	select {
	case p.retryQueue <- j:
	default:
		p.logFailedTask(j, err, "retry queue full")
	}
}

func (p *WorkerPool) run(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("task panicked", zap.String("task", j.task.Name()), zap.Any("panic", r))
			err = errPanicked
		}
	}()

	ctx, cancel := context.WithTimeout(j.ctx, p.opts.TaskTimeout)
	defer cancel()
	return j.task.Run(ctx)
}

func (p *WorkerPool) retryWorker() {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.retryQueue:
			// 延迟重试，避免立即重试
			timer := time.NewTimer(time.Duration(j.retry) * p.opts.RetryDelay)
			select {
			case <-timer.C:
			case <-p.quit:
				timer.Stop()
				p.logFailedTask(j, nil, "pool stopped before retry")
				continue
			}

			// 计时期间可能已停止，worker 退出后再入队就没人处理了
			select {
			case <-p.quit:
				p.logFailedTask(j, nil, "pool stopped before retry")
				continue
			default:
			}

			select {
			case p.taskQueue <- j:
			default:
				p.logFailedTask(j, nil, "queue full on retry")
			}
		case <-p.quit:
			for {
				select {
				case j := <-p.retryQueue:
					p.logFailedTask(j, nil, "pool stopped before retry")
				default:
					return
				}
			}
		}
	}
}

// dropLeftovers 所有协程退出后仍留在队列里的任务记为丢弃
func (p *WorkerPool) dropLeftovers() {
	for {
		select {
		case j := <-p.taskQueue:
			p.logFailedTask(j, nil, "pool stopped")
		case j := <-p.retryQueue:
			p.logFailedTask(j, nil, "pool stopped before retry")
		default:
			return
		}
	}
}

// logFailedTask 死信，只记录日志
func (p *WorkerPool) logFailedTask(j job, err error, reason string) {
	metrics.GetGlobalCollector().RecordFollowupJob(j.task.Name(), errDropped)
	p.log.Error("task dropped",
		zap.String("task", j.task.Name()),
		zap.Int("retries", j.retry),
		zap.String("reason", reason),
		zap.Error(err),
	)
}
