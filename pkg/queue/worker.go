package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"paydash/app/models/payment"
	"paydash/pkg/logger"
)

// RecordStore 补偿写入的目标
type RecordStore interface {
	Upsert(ctx context.Context, p *payment.Payment) error
}

// Worker 补偿队列工作器
type Worker struct {
	queue    *RecordQueue
	store    RecordStore
	config   WorkerConfig
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// WorkerConfig 工作器配置
type WorkerConfig struct {
	WorkerCount   int           // 并发工作器数量
	MaxRetries    int           // 单条记录最大重试次数
	RetryInterval time.Duration // 重试间隔
	PollTimeout   time.Duration // BRPOP 阻塞时长
	WriteTimeout  time.Duration // 单次写库超时
}

// NewWorker 创建新的工作器组
func NewWorker(q *RecordQueue, store RecordStore, config WorkerConfig) *Worker {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 2
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = 5 * time.Second
	}
	if config.PollTimeout <= 0 {
		config.PollTimeout = time.Second
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}

	return &Worker{
		queue:    q,
		store:    store,
		config:   config,
		stopChan: make(chan struct{}),
	}
}

// Start 启动工作器组
func (w *Worker) Start() {
	for i := 0; i < w.config.WorkerCount; i++ {
		w.wg.Add(1)
		go w.startWorker(i)
	}
}

// startWorker 启动单个工作器
func (w *Worker) startWorker(id int) {
	defer w.wg.Done()

	logger.InfoString("Worker", "Start", fmt.Sprintf("Worker %d started", id))

	for {
		select {
		case <-w.stopChan:
			logger.InfoString("Worker", "Stop", fmt.Sprintf("Worker %d stopping", id))
			return
		default:
		}

		if err := w.ProcessNext(context.Background()); err != nil {
			logger.ErrorString("Worker", "Error", fmt.Sprintf("Worker %d error: %v", id, err))
			w.sleep(time.Second) // 错误恢复延迟
		}
	}
}

// ProcessNext 取出一条记录并重试写库
// 失败且未超过重试次数时放回队列，否则记录日志后丢弃
func (w *Worker) ProcessNext(ctx context.Context) error {
	env, err := w.queue.PopRecord(ctx, w.config.PollTimeout)
	if err != nil {
		return err
	}
	if env == nil {
		return nil
	}

	start := time.Now()
	defer func() {
		w.queue.metrics.RecordProcessLatency(time.Since(start))
	}()

	writeCtx, cancel := context.WithTimeout(ctx, w.config.WriteTimeout)
	err = w.store.Upsert(writeCtx, env.Record)
	cancel()

	if err == nil {
		w.queue.metrics.replayed.Add(1)
		logger.Info("Worker",
			zap.String("order_id", env.Record.OrderID),
			zap.Int("attempts", env.Attempts+1),
			zap.String("result", "replayed"),
		)
		return nil
	}

	w.queue.metrics.RecordError(OpProcess)
	if env.Attempts+1 >= w.config.MaxRetries {
		w.queue.metrics.dropped.Add(1)
		logger.Error("Worker",
			zap.String("order_id", env.Record.OrderID),
			zap.String("gateway", env.Record.Gateway),
			zap.String("status", env.Record.Status),
			zap.Int("attempts", env.Attempts+1),
			zap.String("result", "dropped"),
			zap.Error(err),
		)
		return nil
	}

	w.sleep(w.config.RetryInterval)
	if requeueErr := w.queue.Requeue(ctx, env); requeueErr != nil {
		return fmt.Errorf("requeue %s: %w", env.Record.OrderID, requeueErr)
	}
	return nil
}

// sleep 可被 Stop 打断的等待
func (w *Worker) sleep(d time.Duration) {
	select {
	case <-time.After(d):
	case <-w.stopChan:
	}
}

// Stop 优雅关闭工作器组，ctx 到期后不再等待
func (w *Worker) Stop(ctx context.Context) {
	w.stopOnce.Do(func() { close(w.stopChan) })

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoString("Worker", "Stop", "All workers stopped gracefully")
	case <-ctx.Done():
		logger.WarnString("Worker", "Stop", "Worker shutdown timed out")
	}
}
