// Package routes 注册路由
package routes

import (
	"github.com/gin-gonic/gin"

	"paydash/app/http/controllers/api/v1/callback"
	"paydash/app/http/controllers/api/v1/catalog"
	"paydash/app/http/controllers/api/v1/health"
	"paydash/app/http/controllers/api/v1/payment"
	"paydash/app/http/controllers/api/v1/terminal"
	"paydash/app/http/middlewares"
	"paydash/pkg/limiter"
)

// 路由限流配置
const (
	// 🌍 全局限流：每小时每IP 30000 请求
	GlobalRateLimit = "30000-H"
	// 🔔 网关回调限流：每分钟每IP 600 请求
	CallbackRateLimit = "600-M"
	// 💳 发起支付限流：每分钟每IP 60 请求
	InitiateRateLimit = "60-M"
)

// Controllers 路由依赖的控制器，由 bootstrap 组装后注入
type Controllers struct {
	Callback *callback.CallbackController
	Payment  *payment.PaymentController
	Terminal *terminal.TerminalController
	Catalog  *catalog.CatalogController
	Health   *health.HealthController
}

// Options 路由配置
type Options struct {
	CorsOrigin        string
	GlobalRateLimit   string
	CallbackRateLimit string
	// LimiterStore 为空时按路由限流不生效
	LimiterStore *limiter.Store
}

// RegisterAPIRoutes 注册所有 API 路由
func RegisterAPIRoutes(r *gin.Engine, ctrl Controllers, opts Options) {
	if opts.GlobalRateLimit == "" {
		opts.GlobalRateLimit = GlobalRateLimit
	}
	if opts.CallbackRateLimit == "" {
		opts.CallbackRateLimit = CallbackRateLimit
	}

	r.GET("/healthz", ctrl.Health.Show)

	common := []gin.HandlerFunc{
		middlewares.SecurityHeaders(),
		middlewares.LimitIP(opts.GlobalRateLimit),
		middlewares.Cors(opts.CorsOrigin),
	}

	// 🔔 网关回调与支付中转，路径与前端约定保持一致
	api := r.Group("/api", common...)
	{
		// POST /api/pay10/callback  表单回调，302 跳转结果页
		api.POST("/pay10/callback",
			middlewares.LimitPerRoute(opts.LimiterStore, opts.CallbackRateLimit),
			ctrl.Callback.Pay10,
		)
		// POST /api/unlimit/callback  JSON 回调
		api.POST("/unlimit/callback",
			middlewares.LimitPerRoute(opts.LimiterStore, opts.CallbackRateLimit),
			ctrl.Callback.Unlimit,
		)

		api.POST("/pay10/initiate",
			middlewares.LimitPerRoute(opts.LimiterStore, InitiateRateLimit),
			ctrl.Payment.Pay10Initiate,
		)
		api.POST("/payment/:gateway", ctrl.Payment.Context)
		api.POST("/unlimit/auth", ctrl.Payment.UnlimitAuth)
		api.POST("/unlimit/payments",
			middlewares.LimitPerRoute(opts.LimiterStore, InitiateRateLimit),
			ctrl.Payment.UnlimitPayments,
		)
		api.GET("/payments/:orderId", ctrl.Payment.Show)
	}

	// 🗂 网关目录与终端管理
	v1 := r.Group("/v1", common...)
	{
		v1.GET("/gateways", ctrl.Catalog.Gateways)
		v1.GET("/gateways/:gateway", ctrl.Catalog.Gateway)
		v1.GET("/utilities", ctrl.Catalog.Utilities)

		v1.GET("/gateways/:gateway/terminals", ctrl.Terminal.Index)
		v1.PUT("/gateways/:gateway/terminals/:name", ctrl.Terminal.Update)
		v1.DELETE("/gateways/:gateway/terminals/:name", ctrl.Terminal.Destroy)
	}
}
