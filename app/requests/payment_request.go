package requests

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// Pay10InitiateRequest 发起 Pay10 支付
type Pay10InitiateRequest struct {
	Utility string  `json:"utility"`
	Amount  float64 `json:"amount"`
}

// ValidatePay10Initiate 校验发起 Pay10 支付的请求
func ValidatePay10Initiate(c *gin.Context) (*Pay10InitiateRequest, error) {
	rules := govalidator.MapData{
		"utility": []string{"required", utilityRule()},
		"amount":  []string{"required"},
	}
	messages := govalidator.MapData{
		"utility": []string{
			"required:业务类型不能为空",
			"in:不支持的业务类型",
		},
		"amount": []string{
			"required:金额不能为空",
		},
	}

	req, err := ValidateRequest[Pay10InitiateRequest](c, rules, messages)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, ValidationError{Errors: map[string][]string{"amount": {"金额必须大于 0"}}}
	}
	return req, nil
}

// PaymentContextRequest 通用支付上下文请求
type PaymentContextRequest struct {
	Utility    string  `json:"utility"`
	Amount     float64 `json:"amount"`
	CustomerID string  `json:"customerId"`
}

// ValidatePaymentContext 校验通用支付上下文请求
func ValidatePaymentContext(c *gin.Context) (*PaymentContextRequest, error) {
	rules := govalidator.MapData{
		"utility":    []string{"required", utilityRule()},
		"amount":     []string{"required"},
		"customerId": []string{"required"},
	}
	messages := govalidator.MapData{
		"utility": []string{
			"required:业务类型不能为空",
			"in:不支持的业务类型",
		},
		"amount": []string{
			"required:金额不能为空",
		},
		"customerId": []string{
			"required:客户 ID 不能为空",
		},
	}

	req, err := ValidateRequest[PaymentContextRequest](c, rules, messages)
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, ValidationError{Errors: map[string][]string{"amount": {"金额必须大于 0"}}}
	}
	return req, nil
}

// UnlimitAuthRequest Unlimit 令牌交换
type UnlimitAuthRequest struct {
	GrantType    string `json:"grant_type"`
	TerminalCode string `json:"terminal_code"`
	Password     string `json:"password"`
	RefreshToken string `json:"refresh_token"`
}

// BindUnlimitAuth 解析令牌交换请求，字段完整性由授权方式决定
func BindUnlimitAuth(c *gin.Context) (*UnlimitAuthRequest, error) {
	var req UnlimitAuthRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// UnlimitPaymentRequest Unlimit 创建支付，未提供的字段使用默认值
type UnlimitPaymentRequest struct {
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	CustomerEmail string      `json:"customer_email"`
	RequestName   string      `json:"request_name"`
	Utility       string      `json:"utility"`
}

// 创建支付的默认值
const (
	DefaultUnlimitAmount      = "12.34"
	DefaultUnlimitCurrency    = "INR"
	DefaultUnlimitEmail       = "customer@email.com"
	DefaultUnlimitRequestName = "Demo request from UI"
	DefaultUnlimitUtility     = "utility"
)

// BindUnlimitPayment 解析创建支付请求并补全默认值
func BindUnlimitPayment(c *gin.Context) (*UnlimitPaymentRequest, error) {
	var req UnlimitPaymentRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		return nil, err
	}

	if req.Amount == "" {
		req.Amount = DefaultUnlimitAmount
	}
	if req.Currency == "" {
		req.Currency = DefaultUnlimitCurrency
	}
	if req.CustomerEmail == "" {
		req.CustomerEmail = DefaultUnlimitEmail
	}
	if req.RequestName == "" {
		req.RequestName = DefaultUnlimitRequestName
	}
	if req.Utility == "" {
		req.Utility = DefaultUnlimitUtility
	}

	rules := govalidator.MapData{
		"customer_email": []string{"email"},
		"currency":       []string{"len:3"},
	}
	messages := govalidator.MapData{
		"customer_email": []string{"email:邮箱格式不正确"},
		"currency":       []string{"len:币种必须是 3 位代码"},
	}
	if err := ValidateStruct(&req, rules, messages); err != nil {
		return nil, err
	}
	if _, err := req.Amount.Float64(); err != nil {
		return nil, ValidationError{Errors: map[string][]string{"amount": {fmt.Sprintf("金额格式不正确: %s", req.Amount)}}}
	}
	return &req, nil
}
