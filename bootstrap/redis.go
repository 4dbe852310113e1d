package bootstrap

import (
	"fmt"

	"paydash/pkg/config"
	"paydash/pkg/redis"
)

// SetupRedis 初始化 Redis，分别连接业务库和队列库
func SetupRedis() (*redis.RedisManager, error) {
	return redis.NewManager(
		fmt.Sprintf("%v:%v", config.GetString("redis.host"), config.GetString("redis.port")),
		config.GetString("redis.username"),
		config.GetString("redis.password"),
		config.GetInt("redis.database"),
		config.GetInt("redis.queue_database"),
	)
}
