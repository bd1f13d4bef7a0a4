// Package workerpool 是固定 worker 数 + 有界队列的任务池。
//
// Submit 只负责入队，调用方（传输层线程）最多阻塞到入队为止；
// 任务在 worker 内执行，单个任务 panic 会被捕获，worker 继续服务后续任务。
package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"WebCore/modules/kit/errx"
	"WebCore/modules/kit/logx"
)

// Policy 决定队列满时 Submit 的行为。
type Policy string

const (
	// PolicyReject 队列满立即返回 ErrQueueFull。
	PolicyReject Policy = "reject"
	// PolicyBlock 队列满时等待，最多 SubmitTimeout。
	PolicyBlock Policy = "block"
)

const (
	CodeQueueFull  errx.Code = "WORKER_QUEUE_FULL"
	CodePoolClosed errx.Code = "WORKER_POOL_CLOSED"
)

var (
	ErrQueueFull  = errx.NewSys(CodeQueueFull, "worker queue is full")
	ErrPoolClosed = errx.NewSys(CodePoolClosed, "worker pool is closed")
)

// Task 是提交给池的工作单元。ctx 为 Submit 时传入的 context。
type Task func(ctx context.Context)

type Options struct {
	Workers       int
	QueueSize     int
	Policy        Policy
	SubmitTimeout time.Duration
	Logger        logx.Logger
	// OnPanic 在任务 panic 被捕获后回调，可为空。
	OnPanic func(ctx context.Context, r *panics.Recovered)
}

type job struct {
	ctx  context.Context
	task Task
}

// Pool 并发安全。
type Pool struct {
	opts    Options
	queue   chan job
	workers *pool.Pool

	mu     sync.RWMutex
	closed bool

	submitted atomic.Int64
	rejected  atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
	running   atomic.Int64
}

// Stats 是池的运行计数快照。
type Stats struct {
	Workers   int
	Queued    int
	Running   int64
	Submitted int64
	Rejected  int64
	Completed int64
	Panicked  int64
}

// New 创建并立即启动 worker。
func New(opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}
	if opts.Policy == "" {
		opts.Policy = PolicyReject
	}
	if opts.Logger == nil {
		opts.Logger = logx.Nop()
	}

	p := &Pool{
		opts:    opts,
		queue:   make(chan job, opts.QueueSize),
		workers: pool.New().WithMaxGoroutines(opts.Workers),
	}
	for i := 0; i < opts.Workers; i++ {
		p.workers.Go(p.loop)
	}
	return p
}

func (p *Pool) loop() {
	for j := range p.queue {
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	p.running.Add(1)
	defer p.running.Add(-1)

	var pc panics.Catcher
	pc.Try(func() { j.task(j.ctx) })
	if r := pc.Recovered(); r != nil {
		p.panicked.Add(1)
		logx.ReportPanicWithLoggerContext(j.ctx, p.opts.Logger, "workerpool.task", r.Value, r.Stack)
		if p.opts.OnPanic != nil {
			p.opts.OnPanic(j.ctx, r)
		}
		return
	}
	p.completed.Add(1)
}

// Submit 把任务放入队列。返回 ErrQueueFull/ErrPoolClosed 时任务不会被执行。
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	j := job{ctx: ctx, task: task}
	switch p.opts.Policy {
	case PolicyBlock:
		if err := p.enqueueWait(ctx, j); err != nil {
			p.rejected.Add(1)
			return err
		}
	default:
		select {
		case p.queue <- j:
		default:
			p.rejected.Add(1)
			return ErrQueueFull.WithData("queue_size", p.opts.QueueSize)
		}
	}
	p.submitted.Add(1)
	return nil
}

func (p *Pool) enqueueWait(ctx context.Context, j job) error {
	var timeout <-chan time.Time
	if p.opts.SubmitTimeout > 0 {
		t := time.NewTimer(p.opts.SubmitTimeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case p.queue <- j:
		return nil
	case <-timeout:
		return ErrQueueFull.WithData("waited", p.opts.SubmitTimeout.String())
	case <-ctx.Done():
		return ErrQueueFull.WithCause(ctx.Err())
	}
}

// Stop 拒绝新任务，等待已入队任务执行完毕。可重复调用。
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.workers.Wait()
	p.opts.Logger.Info("worker pool stopped",
		zap.Int64("completed", p.completed.Load()),
		zap.Int64("panicked", p.panicked.Load()),
		zap.Int64("rejected", p.rejected.Load()),
	)
}

func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   p.opts.Workers,
		Queued:    len(p.queue),
		Running:   p.running.Load(),
		Submitted: p.submitted.Load(),
		Rejected:  p.rejected.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
	}
}
