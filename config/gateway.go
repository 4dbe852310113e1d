package config

import "paydash/pkg/config"

func init() {
	config.Add("gateway", func() map[string]interface{} {
		return map[string]interface{}{
			"pay10": map[string]interface{}{
				// 浏览器表单提交地址
				"payment_url":   config.Env("PAY10_PAYMENT_URL", "https://secure.pay10.com/pgui/jsp/paymentrequest"),
				"currency_code": config.Env("PAY10_CURRENCY_CODE", "356"),
				"txn_type":      config.Env("PAY10_TXN_TYPE", "SALE"),
			},
			"unlimit": map[string]interface{}{
				// /api/unlimit/auth 使用的上游地址和默认终端
				"api_base":          config.Env("UNLIMIT_API_BASE", "https://sandbox.cardpay.com/api"),
				"terminal_code":     config.Env("UNLIMIT_TERMINAL_CODE", ""),
				"terminal_password": config.Env("UNLIMIT_TERMINAL_PASSWORD", ""),
			},
		}
	})
}
