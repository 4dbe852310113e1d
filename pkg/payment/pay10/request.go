package pay10

import (
	"errors"
	"math"
	"strconv"

	"paydash/pkg/payment/utils"
)

// 发起支付的固定字段
const (
	TxnTypeSale     = "SALE"
	CurrencyCodeINR = "356"
	FieldHash       = "HASH"
)

// PaymentRequest 浏览器需要提交到 Pay10 支付页的表单
type PaymentRequest struct {
	ActionURL string            `json:"action_url"`
	OrderID   string            `json:"order_id"`
	Fields    map[string]string `json:"fields"`
}

// RequestParams 发起支付所需的参数
type RequestParams struct {
	OrderID      string
	Amount       float64
	PayID        string
	ReturnURL    string
	TxnType      string
	CurrencyCode string
}

// ToMinorUnits 金额转为最小货币单位（分）
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// BuildPaymentRequest 组装支付表单并计算 HASH
// HASH = 大写十六进制 SHA-256(按键名排序的 KEY=VALUE~... 拼接 secretKey)
func BuildPaymentRequest(actionURL string, p RequestParams, secretKey string) (*PaymentRequest, error) {
	if p.PayID == "" || secretKey == "" {
		return nil, errors.New("pay10 terminal is missing PAY_ID or secret key")
	}
	if p.Amount <= 0 {
		return nil, errors.New("amount must be greater than zero")
	}
	if p.TxnType == "" {
		p.TxnType = TxnTypeSale
	}
	if p.CurrencyCode == "" {
		p.CurrencyCode = CurrencyCodeINR
	}

	fields := map[string]string{
		"ORDER_ID":      p.OrderID,
		"AMOUNT":        strconv.FormatInt(ToMinorUnits(p.Amount), 10),
		"TXNTYPE":       p.TxnType,
		"CURRENCY_CODE": p.CurrencyCode,
		"RETURN_URL":    p.ReturnURL,
		FieldPayID:      p.PayID,
	}
	fields[FieldHash] = Hash(fields, secretKey)

	return &PaymentRequest{
		ActionURL: actionURL,
		OrderID:   p.OrderID,
		Fields:    fields,
	}, nil
}

// Hash 计算请求签名，fields 中已有的 HASH 字段不参与计算
func Hash(fields map[string]string, secretKey string) string {
	signed := make(map[string]string, len(fields))
	for k, v := range fields {
		if k == FieldHash {
			continue
		}
		signed[k] = v
	}
	return utils.SHA256HexUpper(EncodeFields(signed) + secretKey)
}
