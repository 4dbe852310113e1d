package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"golang.org/x/time/rate"

	"paydash/pkg/app"
	"paydash/pkg/limiter"
	"paydash/pkg/logger"
)

const (
	// DefaultBurst 默认突发请求数量
	DefaultBurst = 100
)

var (
	// 用于存储限流器的并发安全缓存
	limiters sync.Map
	// 记录限流器最近一次被访问的时间
	lastAccess sync.Map
	// 清理协程只启动一次
	cleanupOnce sync.Once
)

// LimitIP 全局限流中间件，针对 IP 进行限流，进程内令牌桶实现
//
// 支持的限流格式:
// - 5 reqs/second:   "5-S"
// - 10 reqs/minute:  "10-M"
// - 1000 reqs/hour:  "1000-H"
// - 2000 reqs/day:   "2000-D"
func LimitIP(limit string) gin.HandlerFunc {
	// 测试环境使用较大限制
	if app.IsTesting() {
		limit = "1000000-H"
	}

	cleanupOnce.Do(func() {
		go cleanupLimiters()
	})

	return func(c *gin.Context) {
		key := limiter.GetKeyIP(c)

		lim, err := getLimiter(key, limit)
		if err != nil {
			logger.ErrorString("限流器", "创建失败", err.Error())
			// 降级处理：允许请求通过
			c.Next()
			return
		}
		lastAccess.Store(key, time.Now())

		if !lim.Allow() {
			abortTooManyRequests(c)
			return
		}

		c.Header("X-RateLimit-Limit", cast.ToString(float64(lim.Limit())))
		c.Header("X-RateLimit-Remaining", cast.ToString(int64(lim.Tokens())))
		c.Next()
	}
}

// LimitPerRoute 针对单个路由的限流中间件，基于 IP + 路由路径，计数存放在 Redis
// 多实例部署时共享同一份计数
func LimitPerRoute(store *limiter.Store, limit string) gin.HandlerFunc {
	if app.IsTesting() {
		limit = "1000000-H"
	}

	return func(c *gin.Context) {
		if store == nil {
			c.Next()
			return
		}

		key := limiter.GetKeyRouteWithIP(c)
		rate, err := store.CheckRate(c, key, limit)
		if err != nil {
			logger.LogIf(err)
			// 降级处理：允许请求通过
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", cast.ToString(rate.Limit))
		c.Header("X-RateLimit-Remaining", cast.ToString(rate.Remaining))
		c.Header("X-RateLimit-Reset", cast.ToString(rate.Reset))

		if rate.Reached {
			abortTooManyRequests(c)
			return
		}

		c.Next()
	}
}

func abortTooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"status":  "error",
		"message": "请求太频繁，请稍后再试",
	})
}

// getLimiter 获取或创建限流器
func getLimiter(key string, limit string) (*rate.Limiter, error) {
	if lim, exists := limiters.Load(key); exists {
		return lim.(*rate.Limiter), nil
	}

	r, err := limiter.ParseLimit(limit)
	if err != nil {
		return nil, err
	}

	lim := rate.NewLimiter(rate.Limit(r.Rate), DefaultBurst)
	actual, _ := limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter), nil
}

// cleanupLimiters 定期清理超过 24 小时未使用的限流器
func cleanupLimiters() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		limiters.Range(func(key, _ interface{}) bool {
			last, ok := lastAccess.Load(key)
			if !ok || now.Sub(last.(time.Time)) > 24*time.Hour {
				limiters.Delete(key)
				lastAccess.Delete(key)
			}
			return true
		})
	}
}
