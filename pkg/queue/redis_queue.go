// Package queue 基于 Redis List 的落库补偿队列
// 回调写库失败时记录被推入队列，由 Worker 异步重试
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"paydash/app/models/payment"
	"paydash/pkg/redis"
)

// Envelope 队列中的一条待补偿记录
type Envelope struct {
	Record   *payment.Payment `json:"record"`
	Attempts int              `json:"attempts"`
	QueuedAt time.Time        `json:"queued_at"`
}

// Options 队列配置
type Options struct {
	Prefix    string
	RateLimit int
	RateBurst int
}

// RecordQueue Redis 补偿队列
type RecordQueue struct {
	client      *redis.RedisClient
	key         string
	rateLimiter *rate.Limiter
	metrics     *QueueMetrics
}

// NewRecordQueue 创建补偿队列
func NewRecordQueue(client *redis.RedisClient, opts Options) *RecordQueue {
	if opts.Prefix == "" {
		opts.Prefix = "paydash"
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1000
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = opts.RateLimit
	}

	return &RecordQueue{
		client:      client,
		key:         fmt.Sprintf("%s:payments:replay", opts.Prefix),
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		metrics:     NewQueueMetrics(),
	}
}

// Key 队列的 Redis key
func (q *RecordQueue) Key() string {
	return q.key
}

// Metrics 指标收集器
func (q *RecordQueue) Metrics() *QueueMetrics {
	return q.metrics
}

// PushRecord 推入一条写库失败的记录
func (q *RecordQueue) PushRecord(ctx context.Context, record *payment.Payment) error {
	if err := q.push(ctx, &Envelope{Record: record, QueuedAt: time.Now()}); err != nil {
		return err
	}
	q.metrics.pushed.Add(1)
	return nil
}

// Requeue 重试失败后放回队列
func (q *RecordQueue) Requeue(ctx context.Context, env *Envelope) error {
	env.Attempts++
	if err := q.push(ctx, env); err != nil {
		return err
	}
	q.metrics.retried.Add(1)
	return nil
}

func (q *RecordQueue) push(ctx context.Context, env *Envelope) error {
	if err := q.rateLimiter.Wait(ctx); err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	start := time.Now()
	defer func() {
		q.metrics.RecordPushLatency(time.Since(start))
	}()

	data, err := json.Marshal(env)
	if err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := q.client.Client.LPush(ctx, q.key, data).Err(); err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to push record: %w", err)
	}
	return nil
}

// PopRecord 阻塞获取一条记录，timeout 内队列为空时返回 nil, nil
func (q *RecordQueue) PopRecord(ctx context.Context, timeout time.Duration) (*Envelope, error) {
	result, err := q.client.Client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		q.metrics.RecordError(OpPop)
		return nil, fmt.Errorf("failed to pop record from queue: %w", err)
	}
	if len(result) != 2 {
		q.metrics.RecordError(OpPop)
		return nil, fmt.Errorf("invalid result from queue")
	}

	var env Envelope
	if err := json.Unmarshal([]byte(result[1]), &env); err != nil {
		q.metrics.RecordError(OpPop)
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	if env.Record == nil {
		q.metrics.RecordError(OpPop)
		return nil, fmt.Errorf("queue entry has no record")
	}
	return &env, nil
}

// Len 当前队列长度
func (q *RecordQueue) Len(ctx context.Context) (int64, error) {
	return q.client.Client.LLen(ctx, q.key).Result()
}

// Ping 检查队列服务健康状态
func (q *RecordQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx)
}
