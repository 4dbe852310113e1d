package bootstrap

import (
	"time"

	"paydash/app/repositories"
	"paydash/pkg/config"
	"paydash/pkg/logger"
	"paydash/pkg/queue"
	"paydash/pkg/redis"
)

// SetupQueue 创建落库补偿队列并启动工作器
// 未启用或 Redis 不可用时返回 nil，回调写库失败只记录日志
func SetupQueue(manager *redis.RedisManager, payments *repositories.PaymentRepository) (*queue.RecordQueue, *queue.Worker) {
	if manager == nil || !config.GetBool("queue.enabled", true) {
		logger.WarnString("Queue", "Setup", "补偿队列未启用")
		return nil, nil
	}

	recordQueue := queue.NewRecordQueue(manager.Get(redis.QueueDB), queue.Options{
		Prefix:    config.GetString("redis.queue_prefix", "paydash"),
		RateLimit: config.GetInt("queue.rate_limit", 100),
		RateBurst: config.GetInt("queue.rate_burst", 200),
	})

	worker := queue.NewWorker(recordQueue, payments, queue.WorkerConfig{
		WorkerCount:   config.GetInt("queue.worker_count", 2),
		MaxRetries:    config.GetInt("queue.retry_times", 5),
		RetryInterval: time.Duration(config.GetInt("queue.retry_delay", 5)) * time.Second,
	})
	worker.Start()

	logger.InfoString("Queue", "Setup", "补偿队列启动成功")
	return recordQueue, worker
}
