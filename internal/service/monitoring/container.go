package monitoring

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultRecentTTL  = time.Hour
	defaultMaxNotices = 200
)

// Registry 进程内唯一的可变共享资源: 持有全部 Monitor, 负责去重、
// 近期触发抑制和手动执行信号. 所有变更操作都在同一把锁下串行.
// 进程重启后由持久层重建, 它只是缓存, 但 "是否已经通知过"
// 以它为准.
type Registry struct {
	mu       sync.Mutex
	monitors map[MonitorKey]*Monitor

	// emitted 控制 UpdateValue 对持续触发的 monitor 的再次产出;
	// recent 是通知层派发成功后登记的抑制集. 两者都按窗口截止时间存,
	// 回到 Idle 时一起清掉 (走完一个来回立即重新布防).
	emitted   map[MonitorKey]time.Time
	recent    map[MonitorKey]time.Time
	recentTTL time.Duration

	manualRun bool
	wake      chan struct{}

	notices    []Notice
	maxNotices int

	nowFn func() time.Time
}

type RegistryOption func(r *Registry)

func WithRecentTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.recentTTL = ttl
		}
	}
}

func WithMaxNotices(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxNotices = n
		}
	}
}

func WithNowFunc(nowFn func() time.Time) RegistryOption {
	return func(r *Registry) {
		if nowFn != nil {
			r.nowFn = nowFn
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		monitors:   make(map[MonitorKey]*Monitor),
		emitted:    make(map[MonitorKey]time.Time),
		recent:     make(map[MonitorKey]time.Time),
		recentTTL:  defaultRecentTTL,
		wake:       make(chan struct{}, 1),
		maxNotices: defaultMaxNotices,
		nowFn:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register 按 key 插入或替换, 重复注册不报错, 后写覆盖
func (r *Registry) Register(m Monitor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.Status = StatusIdle
	cp := m
	r.monitors[m.Key()] = &cp
}

// Deregister 不存在时为 no-op
func (r *Registry) Deregister(source Source, ticker string, ownerId int64) {
	key := MonitorKey{Source: source, Ticker: ticker, OwnerId: ownerId}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.monitors, key)
	delete(r.emitted, key)
	delete(r.recent, key)
}

// UpdateReference 更新 ticker 下某类条件的比较基准 (所有 owner),
// 返回更新的 monitor 数
func (r *Registry) UpdateReference(source Source, ticker string, reference decimal.Decimal) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for key, m := range r.monitors {
		if key.Source == source && key.Ticker == ticker {
			m.Reference = reference
			n++
		}
	}
	return n
}

// UpdateValue 用一个取好的快照值重新评估该 ticker 的全部 Monitor,
// 返回本次调用新产生的告警. 仍处于 Triggered 的 monitor 只有在
// 抑制窗口过期后才会再次出现; 回到 Idle 会清掉抑制记录, 重新触发
// 立即生效.
func (r *Registry) UpdateValue(ticker string, value decimal.Decimal, when time.Time) []TriggeredAlert {
	r.mu.Lock()
	defer r.mu.Unlock()

	var alerts []TriggeredAlert
	for key, m := range r.monitors {
		if key.Ticker != ticker {
			continue
		}

		ev := Evaluate(m.Condition, value, m.Reference)
		m.LastObserved = value

		if !ev.Fired {
			if m.Status == StatusTriggered {
				// 回到 Idle 重新布防
				delete(r.emitted, key)
				delete(r.recent, key)
			}
			m.Status = StatusIdle
			continue
		}

		emit := false
		if m.Status == StatusIdle {
			m.Status = StatusTriggered
			emit = true
		} else if deadline, ok := r.emitted[key]; !ok || !when.Before(deadline) {
			// 持续触发且抑制窗口已过
			emit = true
		}
		if !emit {
			continue
		}

		m.LastTriggeredAt = when
		r.emitted[key] = when.Add(r.recentTTL)
		alerts = append(alerts, TriggeredAlert{
			Id:             uuid.NewString(),
			Source:         key.Source,
			Ticker:         key.Ticker,
			OwnerId:        key.OwnerId,
			TriggeredValue: ev.Triggered,
			WatchedValue:   ev.Watched,
			When:           when,
			Description:    ev.Description,
			Format:         ev.Format,
		})
	}
	return alerts
}

// HasRecentlyTriggered 抑制判定, 供通知层在派发前调用
func (r *Registry) HasRecentlyTriggered(key MonitorKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	deadline, ok := r.recent[key]
	if !ok {
		return false
	}
	if r.nowFn().After(deadline) {
		delete(r.recent, key)
		return false
	}
	return true
}

// AddToRecent 派发成功后登记, 窗口从告警时刻起算
func (r *Registry) AddToRecent(alert TriggeredAlert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	when := alert.When
	if when.IsZero() {
		when = r.nowFn()
	}
	r.recent[alert.Key()] = when.Add(r.recentTTL)
}

// TickersFor 指定条件种类涉及的 ticker 去重列表, 顺序稳定
func (r *Registry) TickersFor(sources ...Source) []string {
	want := make(map[Source]struct{}, len(sources))
	for _, s := range sources {
		want[s] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	var tickers []string
	for key := range r.monitors {
		if _, ok := want[key.Source]; !ok {
			continue
		}
		if _, ok := seen[key.Ticker]; ok {
			continue
		}
		seen[key.Ticker] = struct{}{}
		tickers = append(tickers, key.Ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// OwnerFor 为某个 ticker 挑一个持有者, 用于带凭证的行情调用
func (r *Registry) OwnerFor(ticker string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner := int64(0)
	found := false
	for key := range r.monitors {
		if key.Ticker != ticker {
			continue
		}
		if !found || key.OwnerId < owner {
			owner = key.OwnerId
			found = true
		}
	}
	return owner, found
}

// Snapshot 返回全部 Monitor 的副本, 调用方拿不到可变引用
func (r *Registry) Snapshot() []Monitor {
	r.mu.Lock()
	defer r.mu.Unlock()
	monitors := make([]Monitor, 0, len(r.monitors))
	for _, m := range r.monitors {
		monitors = append(monitors, *m)
	}
	sort.Slice(monitors, func(i, j int) bool {
		return monitors[i].Key().String() < monitors[j].Key().String()
	})
	return monitors
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.monitors)
}

// RequestManualRun 运维入口 "立即跑一次", 多次请求合并为一次
func (r *Registry) RequestManualRun() {
	r.mu.Lock()
	r.manualRun = true
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// ConsumeManualRun 读后即清, 每次请求恰好消费一次
func (r *Registry) ConsumeManualRun() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	requested := r.manualRun
	r.manualRun = false
	return requested
}

// ManualWake 调度循环 select 用的唤醒通道
func (r *Registry) ManualWake() <-chan struct{} {
	return r.wake
}

func (r *Registry) AddNotice(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{When: r.nowFn(), Text: text})
	if len(r.notices) > r.maxNotices {
		r.notices = r.notices[len(r.notices)-r.maxNotices:]
	}
}

// Notices 时间顺序的副本
func (r *Registry) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}
