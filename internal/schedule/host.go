package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

const (
	defaultErrorBackoff  = time.Minute
	defaultStartupJitter = 5 * time.Second
)

// Waker 外部的 "立即跑一次" 信号源, ConsumeManualRun 读后即清
type Waker interface {
	ManualWake() <-chan struct{}
	ConsumeManualRun() bool
}

// Host 通用调度循环: 一个 Task 加一个 NextRunFunc.
// 先执行再睡到下一次, 任务 panic 或返回错误都不会终止循环,
// 只会多等一个退避间隔.
type Host struct {
	task Task
	next NextRunFunc

	waker         Waker
	startupJitter time.Duration
	errorBackoff  time.Duration
	nowFn         func() time.Time
}

type HostOption func(*Host)

func WithWaker(w Waker) HostOption {
	return func(h *Host) {
		h.waker = w
	}
}

func WithStartupJitter(max time.Duration) HostOption {
	return func(h *Host) {
		if max >= 0 {
			h.startupJitter = max
		}
	}
}

func WithErrorBackoff(d time.Duration) HostOption {
	return func(h *Host) {
		if d > 0 {
			h.errorBackoff = d
		}
	}
}

func WithHostNowFunc(fn func() time.Time) HostOption {
	return func(h *Host) {
		if fn != nil {
			h.nowFn = fn
		}
	}
}

func NewHost(task Task, next NextRunFunc, opts ...HostOption) *Host {
	h := &Host{
		task:          task,
		next:          next,
		startupJitter: defaultStartupJitter,
		errorBackoff:  defaultErrorBackoff,
		nowFn:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start 阻塞运行直到 ctx 取消, 返回 ctx.Err()
func (h *Host) Start(ctx context.Context) error {
	if h.startupJitter > 0 {
		if err := h.sleep(ctx, time.Duration(rand.Int63n(int64(h.startupJitter)))); err != nil {
			return err
		}
	}

	for {
		if err := h.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("task run failed", "task", h.task.Name(), "err", err)
			if err := h.sleep(ctx, h.errorBackoff); err != nil {
				return err
			}
		}

		now := h.nowFn()
		next := h.next(now)
		wait := next.Sub(now)
		if wait < 0 {
			// 负的睡眠时间按立即重跑处理
			slog.Warn("schedule produced a past run time, running again immediately",
				"task", h.task.Name(), "next", next)
			wait = 0
		} else {
			slog.Info("task sleeping until next run", "task", h.task.Name(), "next", next)
		}

		manual, err := h.waitFor(ctx, wait)
		if err != nil {
			return err
		}
		if manual && h.waker != nil && !h.waker.ConsumeManualRun() {
			// 唤醒信号对应的请求已被消费, 继续按原计划睡
			remaining := next.Sub(h.nowFn())
			if _, err := h.waitFor(ctx, remaining); err != nil {
				return err
			}
		}
	}
}

// waitFor 返回的 bool 表示被手动唤醒而不是定时器到点
func (h *Host) waitFor(ctx context.Context, wait time.Duration) (bool, error) {
	if wait < 0 {
		wait = 0
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	if h.waker != nil {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
			return false, nil
		case <-h.waker.ManualWake():
			return true, nil
		}
	}
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-timer.C:
		return false, nil
	}
}

func (h *Host) runOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", h.task.Name(), r)
		}
	}()
	return h.task.Run(ctx)
}

func (h *Host) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FuncTask 把一个函数适配成 Task
type FuncTask struct {
	name string
	run  func(ctx context.Context) error
}

func NewFuncTask(name string, run func(ctx context.Context) error) Task {
	return FuncTask{name: name, run: run}
}

func (t FuncTask) Run(ctx context.Context) error {
	return t.run(ctx)
}

func (t FuncTask) Name() string {
	return t.name
}
