package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/conc/panics"
)

func TestPool_执行全部任务(t *testing.T) {
	p := New(Options{Workers: 4, QueueSize: 64})

	var n atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		if err := p.Submit(context.Background(), func(ctx context.Context) {
			defer wg.Done()
			n.Add(1)
		}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	wg.Wait()
	p.Stop()

	if n.Load() != 50 {
		t.Fatalf("期望执行 50 个任务, got=%d", n.Load())
	}
	if s := p.Stats(); s.Completed != 50 || s.Submitted != 50 {
		t.Fatalf("统计不符: %+v", s)
	}
}

func TestPool_panic不影响后续任务(t *testing.T) {
	var recovered atomic.Value
	p := New(Options{
		Workers:   1,
		QueueSize: 4,
		OnPanic: func(ctx context.Context, r *panics.Recovered) {
			recovered.Store(r.Value)
		},
	})

	done := make(chan struct{})
	_ = p.Submit(context.Background(), func(ctx context.Context) { panic("boom") })
	_ = p.Submit(context.Background(), func(ctx context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("panic 之后 worker 未继续执行")
	}
	p.Stop()

	if recovered.Load() != "boom" {
		t.Fatalf("期望回调拿到 panic 值, got=%v", recovered.Load())
	}
	if s := p.Stats(); s.Panicked != 1 || s.Completed != 1 {
		t.Fatalf("统计不符: %+v", s)
	}
}

func TestPool_reject策略队列满立即失败(t *testing.T) {
	p := New(Options{Workers: 1, QueueSize: 1, Policy: PolicyReject})
	release := make(chan struct{})
	started := make(chan struct{})

	_ = p.Submit(context.Background(), func(ctx context.Context) {
		close(started)
		<-release
	})
	<-started
	if err := p.Submit(context.Background(), func(ctx context.Context) {}); err != nil {
		t.Fatalf("队列还有一个空位: %v", err)
	}

	err := p.Submit(context.Background(), func(ctx context.Context) {})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("期望 ErrQueueFull, got=%v", err)
	}
	close(release)
	p.Stop()

	if p.Stats().Rejected != 1 {
		t.Fatalf("期望拒绝计数 1, got=%d", p.Stats().Rejected)
	}
}

func TestPool_block策略超时(t *testing.T) {
	p := New(Options{Workers: 1, QueueSize: 0, Policy: PolicyBlock, SubmitTimeout: 20 * time.Millisecond})
	release := make(chan struct{})
	started := make(chan struct{})

	_ = p.Submit(context.Background(), func(ctx context.Context) {
		close(started)
		<-release
	})
	<-started

	begin := time.Now()
	err := p.Submit(context.Background(), func(ctx context.Context) {})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("期望超时后 ErrQueueFull, got=%v", err)
	}
	if time.Since(begin) < 20*time.Millisecond {
		t.Fatalf("block 策略应至少等待 SubmitTimeout")
	}
	close(release)
	p.Stop()
}

func TestPool_Stop后拒绝提交(t *testing.T) {
	p := New(Options{Workers: 2, QueueSize: 2})
	p.Stop()
	p.Stop()

	if err := p.Submit(context.Background(), func(ctx context.Context) {}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("期望 ErrPoolClosed, got=%v", err)
	}
}

func TestPool_Stop等待已入队任务(t *testing.T) {
	p := New(Options{Workers: 1, QueueSize: 8})
	var n atomic.Int32
	for i := 0; i < 8; i++ {
		_ = p.Submit(context.Background(), func(ctx context.Context) {
			time.Sleep(time.Millisecond)
			n.Add(1)
		})
	}
	p.Stop()
	if n.Load() != 8 {
		t.Fatalf("Stop 应等待队列排空, got=%d", n.Load())
	}
}
