package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeWaker struct {
	mu      sync.Mutex
	wake    chan struct{}
	pending bool
}

func newFakeWaker() *fakeWaker {
	return &fakeWaker{wake: make(chan struct{}, 1)}
}

func (w *fakeWaker) Request() {
	w.mu.Lock()
	w.pending = true
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *fakeWaker) ManualWake() <-chan struct{} { return w.wake }

func (w *fakeWaker) ConsumeManualRun() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	requested := w.pending
	w.pending = false
	return requested
}

// 任务上报执行用非阻塞发送, 避免宿主阻塞在测试通道上
func reportRun(runs chan struct{}) {
	select {
	case runs <- struct{}{}:
	default:
	}
}

func waitForRuns(t *testing.T, runs <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-runs:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for run %d of %d", i+1, n)
		}
	}
}

func TestHostRunsOnSchedule(t *testing.T) {
	runs := make(chan struct{}, 16)
	task := NewFuncTask("tick", func(ctx context.Context) error {
		reportRun(runs)
		return nil
	})
	host := NewHost(task,
		func(now time.Time) time.Time { return now.Add(5 * time.Millisecond) },
		WithStartupJitter(0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- host.Start(ctx) }()

	waitForRuns(t, runs, 3)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestHostClampsPastNextTime(t *testing.T) {
	runs := make(chan struct{}, 16)
	task := NewFuncTask("tick", func(ctx context.Context) error {
		reportRun(runs)
		return nil
	})
	// 过去的时刻按立即重跑处理, 循环不会停
	host := NewHost(task,
		func(now time.Time) time.Time { return now.Add(-time.Hour) },
		WithStartupJitter(0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- host.Start(ctx) }()

	waitForRuns(t, runs, 2)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestHostSurvivesErrorsAndPanics(t *testing.T) {
	runs := make(chan struct{}, 16)
	count := 0
	task := NewFuncTask("flaky", func(ctx context.Context) error {
		count++
		reportRun(runs)
		switch count {
		case 1:
			return errors.New("transient")
		case 2:
			panic("boom")
		default:
			return nil
		}
	})
	host := NewHost(task,
		func(now time.Time) time.Time { return now.Add(time.Millisecond) },
		WithStartupJitter(0),
		WithErrorBackoff(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- host.Start(ctx) }()

	waitForRuns(t, runs, 3)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestHostManualWake(t *testing.T) {
	runs := make(chan struct{}, 16)
	task := NewFuncTask("manual", func(ctx context.Context) error {
		runs <- struct{}{}
		return nil
	})
	waker := newFakeWaker()
	// 启动跑一次之后定时远在未来, 只有手动唤醒能让它再跑
	host := NewHost(task,
		func(now time.Time) time.Time { return now.Add(time.Hour) },
		WithStartupJitter(0),
		WithWaker(waker))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- host.Start(ctx) }()

	waitForRuns(t, runs, 1)

	waker.Request()
	waitForRuns(t, runs, 1)

	// 没有新的请求就不再跑
	select {
	case <-runs:
		t.Fatal("unexpected run without a manual request")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
