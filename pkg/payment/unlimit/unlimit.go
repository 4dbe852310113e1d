// Package unlimit Unlimit 网关：JSON 回调归一化，以及令牌交换、创建支付的上游客户端
package unlimit

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cast"

	"paydash/pkg/logger"
	"paydash/pkg/payment/types"
)

// 回调中平铺到记录顶层的字段
var topLevelFields = []string{"payment_method", "merchant_order", "customer", "payment_data", "card_account"}

// successStatuses payment_data.status 的成功终态
var successStatuses = map[string]struct{}{
	"COMPLETED":  {},
	"APPROVED":   {},
	"CONFIRMED":  {},
	"AUTHORIZED": {},
}

// Strategy Unlimit 回调策略
type Strategy struct{}

// New 创建 Unlimit 策略
func New() *Strategy {
	return &Strategy{}
}

func (s *Strategy) Gateway() types.Gateway {
	return types.GatewayUnlimit
}

// CredentialID Unlimit 回调是明文 JSON，不需要查找终端密钥
func (s *Strategy) CredentialID(_ *types.Callback) (string, error) {
	return "", nil
}

// Decode 解析 JSON 回调体，无法解析或不是 JSON 对象时按空对象处理，最终记为失败
func (s *Strategy) Decode(cb *types.Callback, _ string) (*types.Decoded, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(cb.Body, &body); err != nil || body == nil {
		if err != nil {
			logger.WarnString("Unlimit", "回调体不是 JSON 对象", err.Error())
		}
		body = map[string]interface{}{}
	}

	fields := make(map[string]interface{}, len(topLevelFields))
	for _, key := range topLevelFields {
		fields[key] = body[key]
	}
	if fields["payment_data"] == nil {
		fields["payment_data"] = map[string]interface{}{}
	}

	return &types.Decoded{Fields: fields, Raw: body}, nil
}

// Normalize 只有 payment_data.status 属于成功终态时才视为成功
// 订单号取 merchant_order.id，其次 payment_data.id
func (s *Strategy) Normalize(d *types.Decoded) types.Verdict {
	paymentData := nested(d.Fields, "payment_data")

	verdict := types.Verdict{Status: types.StatusFailure}
	if _, ok := successStatuses[strings.ToUpper(strings.TrimSpace(cast.ToString(paymentData["status"])))]; ok {
		verdict.Status = types.StatusSuccess
	}

	if id := cast.ToString(nested(d.Fields, "merchant_order")["id"]); id != "" {
		verdict.OrderID = id
	} else {
		verdict.OrderID = cast.ToString(paymentData["id"])
	}
	return verdict
}

func nested(fields map[string]interface{}, key string) map[string]interface{} {
	if m, ok := fields[key].(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}
