package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"paydash/app/http/controllers/api/v1/callback"
	"paydash/app/http/controllers/api/v1/catalog"
	"paydash/app/http/controllers/api/v1/health"
	"paydash/app/http/controllers/api/v1/payment"
	"paydash/app/http/controllers/api/v1/terminal"
	"paydash/app/http/middlewares"
	"paydash/app/repositories"
	"paydash/pkg/config"
	"paydash/pkg/database"
	"paydash/pkg/limiter"
	"paydash/pkg/logger"
	paymentpkg "paydash/pkg/payment"
	"paydash/pkg/payment/factory"
	"paydash/pkg/payment/unlimit"
	"paydash/pkg/payment/utils"
	"paydash/pkg/queue"
	"paydash/pkg/redis"
	"paydash/routes"
)

// RouteDeps 路由依赖的基础设施，Redis 与补偿队列可以为空
type RouteDeps struct {
	DB          *gorm.DB
	Redis       *redis.RedisManager
	RecordQueue *queue.RecordQueue
}

// SetupRoute 路由初始化
// 该方法用于设置 Web 应用的路由配置，包括：
// 1. 注册全局中间件
// 2. 组装控制器并注册 API 路由
// 3. 配置 404 处理器
func SetupRoute(router *gin.Engine, deps RouteDeps) error {
	// 注册全局中间件
	registerGlobalMiddleWare(router)

	ctrl, err := buildControllers(deps)
	if err != nil {
		return err
	}

	var store *limiter.Store
	if deps.Redis != nil {
		store, err = limiter.NewStore(deps.Redis.Get(redis.MainDB).Client, config.GetString("app.name"))
		if err != nil {
			return fmt.Errorf("create limiter store: %w", err)
		}
	}

	// 注册 API 路由
	// 具体路由定义在 routes 包中
	routes.RegisterAPIRoutes(router, ctrl, routes.Options{
		CorsOrigin:        config.GetString("app.cors_origin"),
		GlobalRateLimit:   config.GetString("app.api_rate_limit"),
		CallbackRateLimit: config.GetString("app.callback_rate_limit"),
		LimiterStore:      store,
	})

	// 配置 404 路由处理器
	setup404Handler(router)
	return nil
}

// buildControllers 组装仓库、回调处理器和控制器，数据库连接在这里注入
func buildControllers(deps RouteDeps) (routes.Controllers, error) {
	terminals := repositories.NewTerminalRepository(deps.DB)
	payments := repositories.NewPaymentRepository(deps.DB)

	ids, err := utils.NewIDGenerator(config.GetInt64("app.node_id", 1))
	if err != nil {
		return routes.Controllers{}, err
	}

	var opts []paymentpkg.Option
	if deps.RecordQueue != nil {
		opts = append(opts, paymentpkg.WithReplayer(deps.RecordQueue))
	}
	processor := paymentpkg.NewProcessor(
		factory.NewRegistry(),
		paymentpkg.NewTerminalResolver(terminals),
		payments,
		ids,
		opts...,
	)

	origin := config.GetString("app.origin")

	checks := map[string]health.Pinger{
		"database": health.PingFunc(func(ctx context.Context) error { return database.Ping(ctx, deps.DB) }),
	}
	var metrics *queue.QueueMetrics
	if deps.Redis != nil {
		checks["redis"] = deps.Redis.Get(redis.MainDB)
	}
	if deps.RecordQueue != nil {
		checks["queue"] = deps.RecordQueue
		metrics = deps.RecordQueue.Metrics()
	}

	return routes.Controllers{
		Callback: callback.NewCallbackController(processor, origin),
		Payment: payment.NewPaymentController(terminals, payments, unlimit.NewClient(nil), ids, payment.Options{
			Origin:                  origin,
			Pay10PaymentURL:         config.GetString("gateway.pay10.payment_url"),
			Pay10CurrencyCode:       config.GetString("gateway.pay10.currency_code"),
			Pay10TxnType:            config.GetString("gateway.pay10.txn_type"),
			UnlimitAPIBase:          config.GetString("gateway.unlimit.api_base"),
			UnlimitTerminalCode:     config.GetString("gateway.unlimit.terminal_code"),
			UnlimitTerminalPassword: config.GetString("gateway.unlimit.terminal_password"),
		}),
		Terminal: terminal.NewTerminalController(terminals),
		Catalog:  catalog.NewCatalogController(terminals),
		Health:   health.NewHealthController(checks, metrics),
	}, nil
}

// registerGlobalMiddleWare 注册全局中间件
// 设置应用级别的中间件，作用于所有请求
// - Logger 中间件：记录请求日志
// - Recovery 中间件：从 panic 中恢复
func registerGlobalMiddleWare(router *gin.Engine) {
	router.Use(
		middlewares.Logger(),   // 记录请求日志
		middlewares.Recovery(), // 在发生 panic 时恢复
	)
}

// setup404Handler 配置 404 请求处理器
// 根据请求的 Accept 头来返回不同格式的 404 响应：
// - 当请求接受 HTML 时返回 HTML 格式的 404 页面
// - 其他情况返回 JSON 格式的错误信息
func setup404Handler(router *gin.Engine) {
	router.NoRoute(func(c *gin.Context) {
		// 获取请求头中的 Accept 信息
		acceptString := c.Request.Header.Get("Accept")

		// 根据 Accept 返回相应格式的响应
		if strings.Contains(acceptString, "text/html") {
			// 对于 HTML 请求返回简单的文本信息
			c.String(http.StatusNotFound, "页面返回 404")
		} else {
			// 默认返回 JSON 格式的错误信息
			c.JSON(http.StatusNotFound, gin.H{
				"error_code":    404,
				"error_message": "路由未定义，请确认 url 和请求方法是否正确。",
			})
		}
	})

	logger.DebugString("Route", "Setup", "路由注册完成")
}
