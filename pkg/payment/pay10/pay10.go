// Package pay10 Pay10 网关：ENCDATA 解密、字段解析、状态归一化以及发起支付的表单签名
package pay10

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"paydash/pkg/payment/types"
)

// 回调表单字段
const (
	FieldEncData = "ENCDATA"
	FieldPayID   = "PAY_ID"
)

// ResponseCodeSuccess 网关约定的成功响应码
const ResponseCodeSuccess = "000"

// OrderIDAliases 订单号字段，按优先级排列
var OrderIDAliases = []string{"ORDER_ID", "orderId", "ORDERID", "ORDER_NO", "ORDERNO"}

// Strategy Pay10 回调策略
type Strategy struct{}

// New 创建 Pay10 策略
func New() *Strategy {
	return &Strategy{}
}

func (s *Strategy) Gateway() types.Gateway {
	return types.GatewayPay10
}

// CredentialID 校验 ENCDATA 与 PAY_ID 并返回 PAY_ID
func (s *Strategy) CredentialID(cb *types.Callback) (string, error) {
	if strings.TrimSpace(cb.Form.Get(FieldEncData)) == "" {
		return "", &types.MissingFieldError{Field: FieldEncData}
	}
	payID := strings.TrimSpace(cb.Form.Get(FieldPayID))
	if payID == "" {
		return "", &types.MissingFieldError{Field: FieldPayID}
	}
	return payID, nil
}

// Decode 解密并解析 ENCDATA
func (s *Strategy) Decode(cb *types.Callback, secret string) (*types.Decoded, error) {
	encdata := cb.Form.Get(FieldEncData)

	plain, err := Decrypt(encdata, secret)
	if err != nil {
		return nil, err
	}

	fields, err := ParseFields(plain)
	if err != nil {
		return nil, err
	}

	flat := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		flat[k] = v
	}

	return &types.Decoded{
		Fields: flat,
		Raw:    flat,
		Extra: map[string]interface{}{
			"encdata":      encdata,
			"decryptedRaw": plain,
		},
	}, nil
}

func (s *Strategy) Normalize(d *types.Decoded) types.Verdict {
	fields := make(map[string]string, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = cast.ToString(v)
	}
	return NormalizeFields(fields)
}

// NormalizeFields 将 Pay10 的状态字段归一化为 success / failure
// 状态文本取 STATUS，不存在时取 RESPONSE_MESSAGE；RESPONSE_CODE 为 000 时直接视为成功
func NormalizeFields(fields map[string]string) types.Verdict {
	verdict := types.Verdict{
		Status:  types.StatusFailure,
		OrderID: OrderID(fields),
	}

	if strings.TrimSpace(fields["RESPONSE_CODE"]) == ResponseCodeSuccess {
		verdict.Status = types.StatusSuccess
		return verdict
	}

	if successText(statusText(fields)) {
		verdict.Status = types.StatusSuccess
	}
	return verdict
}

func statusText(fields map[string]string) string {
	if status, ok := fields["STATUS"]; ok {
		return strings.ToLower(status)
	}
	return strings.ToLower(fields["RESPONSE_MESSAGE"])
}

// successText 状态文本包含 success 或 captur 即视为成功，其余一律失败
func successText(text string) bool {
	return strings.Contains(text, "success") || strings.Contains(text, "captur")
}

// OrderID 按别名优先级取第一个非空的订单号
func OrderID(fields map[string]string) string {
	for _, alias := range OrderIDAliases {
		if v := strings.TrimSpace(fields[alias]); v != "" {
			return v
		}
	}
	return ""
}

// String 便于日志输出
func (s *Strategy) String() string {
	return fmt.Sprintf("strategy(%s)", s.Gateway())
}
