/*
Package redis 提供 Redis 连接管理

 1. 连接池管理
 2. 多实例（业务库 / 队列库）隔离
 3. 并发安全
*/
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// 关键配置常量
const (
	// DefaultPoolSize Redis 连接池大小
	DefaultPoolSize = 100
	// DefaultTimeout 默认操作超时时间
	DefaultTimeout = 5 * time.Second
	// DefaultMinIdleConns 最小空闲连接数
	DefaultMinIdleConns = 10
	// DefaultMaxRetries 最大重试次数
	DefaultMaxRetries = 3
	// DefaultIdleTimeout 空闲超时
	DefaultIdleTimeout = 5 * time.Minute
)

// RedisInstance Redis 实例类型
type RedisInstance string

const (
	MainDB  RedisInstance = "main"  // 主数据库实例（用于限流等）
	QueueDB RedisInstance = "queue" // 队列数据库实例（补写支付记录）
)

// RedisClient Redis 客户端封装
type RedisClient struct {
	Client *redis.Client
}

// RedisConfig Redis 配置结构
type RedisConfig struct {
	Address      string
	Username     string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	Timeout      time.Duration
}

// RedisManager 管理多个 Redis 实例
type RedisManager struct {
	instances map[RedisInstance]*RedisClient
	mutex     sync.RWMutex
}

/* 🔄 连接管理相关方法 */

// NewClient 创建新的 Redis 客户端，并测试连接
func NewClient(config RedisConfig) (*RedisClient, error) {
	if config.PoolSize <= 0 {
		config.PoolSize = DefaultPoolSize
	}
	if config.MinIdleConns <= 0 {
		config.MinIdleConns = DefaultMinIdleConns
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	rds := &RedisClient{
		Client: redis.NewClient(&redis.Options{
			Addr:         config.Address,
			Username:     config.Username,
			Password:     config.Password,
			DB:           config.DB,
			PoolSize:     config.PoolSize,     // 连接池大小
			MinIdleConns: config.MinIdleConns, // 最小空闲连接数

			// 连接池配置
			PoolTimeout:     config.Timeout,
			ConnMaxIdleTime: DefaultIdleTimeout,
			ConnMaxLifetime: 24 * time.Hour,

			// 读写超时
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,

			// 重试策略
			MaxRetries:      DefaultMaxRetries,
			MinRetryBackoff: 8 * time.Millisecond,
			MaxRetryBackoff: 512 * time.Millisecond,
		}),
	}

	// 测试连接
	if err := rds.Ping(context.Background()); err != nil {
		_ = rds.Client.Close()
		return nil, fmt.Errorf("redis 连接失败 %s/%d: %w", config.Address, config.DB, err)
	}

	return rds, nil
}

/* 🔍 健康检查方法 */

// Ping 测试 Redis 连接
func (rds *RedisClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	return rds.Client.Ping(ctx).Err()
}

// NewManager 初始化 Redis 管理器，分别连接主库和队列库
func NewManager(address, username, password string, mainDB, queueDB int) (*RedisManager, error) {
	manager := &RedisManager{
		instances: make(map[RedisInstance]*RedisClient),
	}

	dbs := map[RedisInstance]int{
		MainDB:  mainDB,
		QueueDB: queueDB,
	}
	for instance, db := range dbs {
		client, err := NewClient(RedisConfig{
			Address:  address,
			Username: username,
			Password: password,
			DB:       db,
		})
		if err != nil {
			manager.Close()
			return nil, err
		}
		manager.instances[instance] = client
	}

	return manager, nil
}

// Get 获取指定的 Redis 实例，不存在时返回主实例
func (m *RedisManager) Get(instance RedisInstance) *RedisClient {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if client, ok := m.instances[instance]; ok {
		return client
	}
	return m.instances[MainDB]
}

// Close 关闭所有实例
func (m *RedisManager) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for name, client := range m.instances {
		_ = client.Client.Close()
		delete(m.instances, name)
	}
}
