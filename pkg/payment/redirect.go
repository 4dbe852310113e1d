package payment

import (
	"net/http"
	"net/url"
	"strings"

	"paydash/pkg/payment/types"
)

// ResultPath 前端结果页路径
const ResultPath = "/payment/result"

// ResolveOrigin 优先使用配置的站点地址，未配置时取请求自身的 origin
func ResolveOrigin(configured string, r *http.Request) string {
	if origin := strings.TrimRight(strings.TrimSpace(configured), "/"); origin != "" {
		return origin
	}

	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	} else if r.TLS != nil {
		scheme = "https"
	}

	host := r.Host
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		host = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return scheme + "://" + host
}

// ResultURL 结果页地址，只携带归一化状态和订单号
func ResultURL(origin string, status types.Status, orderID string) string {
	q := "status=" + url.QueryEscape(string(status))
	if orderID != "" {
		q += "&orderId=" + url.QueryEscape(orderID)
	}
	return origin + ResultPath + "?" + q
}
