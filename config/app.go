// Package config 站点配置信息
package config

import "paydash/pkg/config"

func init() {
	config.Add("app", func() map[string]interface{} {
		return map[string]interface{}{

			// 应用名称
			"name": config.Env("APP_NAME", "PayDash"),

			// 当前环境，用以区分多环境，一般为 local, stage, production, testing
			"env": config.Env("APP_ENV", "production"),

			// 是否进入调试模式
			"debug": config.Env("APP_DEBUG", false),

			// 应用服务端口
			"port": config.Env("APP_PORT", "3000"),

			// 设置时区，日志记录里会使用到
			"timezone": config.Env("TIMEZONE", "Asia/Kolkata"),

			// 对外访问地址，回调结果页跳转和 Pay10 RETURN_URL 使用，为空时取请求自身的 origin
			"origin": config.Env("APP_ORIGIN", ""),

			// snowflake 节点号，多实例部署时每个实例不同
			"node_id": config.Env("APP_NODE_ID", 1),

			// 允许跨域的前端地址
			"cors_origin": config.Env("CORS_ALLOW_ORIGIN", "*"),

			// 限流格式：次数-周期（S/M/H/D）
			"api_rate_limit":      config.Env("API_RATE_LIMIT", "30000-H"),
			"callback_rate_limit": config.Env("CALLBACK_RATE_LIMIT", "600-M"),
		}
	})
}
