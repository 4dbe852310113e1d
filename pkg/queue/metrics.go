package queue

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricOperation 定义指标操作类型
type MetricOperation string

const (
	OpPush    MetricOperation = "push"
	OpPop     MetricOperation = "pop"
	OpProcess MetricOperation = "process"
)

// LatencyStats 延迟统计
type LatencyStats struct {
	mu    sync.Mutex
	count int64
	total time.Duration
	min   time.Duration
	max   time.Duration
}

// record 记录延迟数据
func (s *LatencyStats) record(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	s.total += d
	if s.min == 0 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
}

// LatencySnapshot 延迟统计快照，单位毫秒
type LatencySnapshot struct {
	Count int64   `json:"count"`
	AvgMs float64 `json:"avg_ms"`
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
}

func (s *LatencyStats) snapshot() LatencySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := LatencySnapshot{
		Count: s.count,
		MinMs: float64(s.min.Microseconds()) / 1000,
		MaxMs: float64(s.max.Microseconds()) / 1000,
	}
	if s.count > 0 {
		snap.AvgMs = float64(s.total.Microseconds()) / 1000 / float64(s.count)
	}
	return snap
}

// QueueMetrics 补偿队列指标
type QueueMetrics struct {
	pushed   atomic.Int64
	replayed atomic.Int64
	retried  atomic.Int64
	dropped  atomic.Int64
	errors   sync.Map // map[MetricOperation]*atomic.Int64

	pushLatency    LatencyStats
	processLatency LatencyStats
}

// NewQueueMetrics 创建新的指标收集器
func NewQueueMetrics() *QueueMetrics {
	return &QueueMetrics{}
}

// RecordError 记录失败操作
func (m *QueueMetrics) RecordError(op MetricOperation) {
	counter, _ := m.errors.LoadOrStore(op, &atomic.Int64{})
	counter.(*atomic.Int64).Add(1)
}

// RecordPushLatency 记录推送延迟
func (m *QueueMetrics) RecordPushLatency(d time.Duration) {
	m.pushLatency.record(d)
}

// RecordProcessLatency 记录处理延迟
func (m *QueueMetrics) RecordProcessLatency(d time.Duration) {
	m.processLatency.record(d)
}

// MetricsSnapshot 指标快照，用于健康检查输出
type MetricsSnapshot struct {
	Pushed         int64                     `json:"pushed"`
	Replayed       int64                     `json:"replayed"`
	Retried        int64                     `json:"retried"`
	Dropped        int64                     `json:"dropped"`
	Errors         map[MetricOperation]int64 `json:"errors"`
	PushLatency    LatencySnapshot           `json:"push_latency"`
	ProcessLatency LatencySnapshot           `json:"process_latency"`
}

// Snapshot 读取当前指标
func (m *QueueMetrics) Snapshot() MetricsSnapshot {
	errs := make(map[MetricOperation]int64)
	m.errors.Range(func(key, value any) bool {
		errs[key.(MetricOperation)] = value.(*atomic.Int64).Load()
		return true
	})

	return MetricsSnapshot{
		Pushed:         m.pushed.Load(),
		Replayed:       m.replayed.Load(),
		Retried:        m.retried.Load(),
		Dropped:        m.dropped.Load(),
		Errors:         errs,
		PushLatency:    m.pushLatency.snapshot(),
		ProcessLatency: m.processLatency.snapshot(),
	}
}
