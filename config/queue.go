package config

import "paydash/pkg/config"

func init() {
	config.Add("queue", func() map[string]interface{} {
		return map[string]interface{}{
			// 是否启用落库补偿队列
			"enabled":      config.Env("QUEUE_ENABLED", true),
			"rate_limit":   config.Env("QUEUE_RATE_LIMIT", 100),
			"rate_burst":   config.Env("QUEUE_RATE_BURST", 200),
			"worker_count": config.Env("QUEUE_WORKER_COUNT", 2),
			"retry_times":  config.Env("QUEUE_RETRY_TIMES", 5),
			// 单位：秒
			"retry_delay": config.Env("QUEUE_RETRY_DELAY", 5),
		}
	})
}
