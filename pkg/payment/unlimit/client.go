package unlimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// 令牌交换支持的授权方式
const (
	GrantPassword     = "password"
	GrantRefreshToken = "refresh_token"
)

var (
	ErrUpstream          = errors.New("unlimit upstream request failed")
	ErrMissingToken      = errors.New("auth token response did not contain an access_token field")
	ErrUnsupportedGrant  = errors.New("unsupported grant_type")
	ErrMissingGrantField = errors.New("missing grant credentials")
)

// UpstreamError 上游返回非 2xx，携带原始状态码和响应体
type UpstreamError struct {
	Status int
	Body   interface{}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%v: status %d", ErrUpstream, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// Client Unlimit HTTP 客户端
// 不设置超时覆盖也不重试，失败原样交给调用方
type Client struct {
	http *resty.Client
}

// NewClient 创建客户端，httpClient 为空时使用 resty 默认客户端
func NewClient(httpClient *http.Client) *Client {
	var rc *resty.Client
	if httpClient != nil {
		rc = resty.NewWithClient(httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetHeader("Accept", "application/json")
	return &Client{http: rc}
}

// TokenRequest 令牌交换参数
type TokenRequest struct {
	GrantType    string
	TerminalCode string
	Password     string
	RefreshToken string
}

// Form 校验并生成表单参数
func (r TokenRequest) Form() (map[string]string, error) {
	form := map[string]string{"grant_type": r.GrantType}
	switch r.GrantType {
	case GrantPassword:
		if r.TerminalCode == "" || r.Password == "" {
			return nil, fmt.Errorf("%w: terminal_code and password are required", ErrMissingGrantField)
		}
		form["terminal_code"] = r.TerminalCode
		form["password"] = r.Password
	case GrantRefreshToken:
		if r.RefreshToken == "" {
			return nil, fmt.Errorf("%w: refresh_token is required", ErrMissingGrantField)
		}
		form["refresh_token"] = r.RefreshToken
	case "":
		return nil, fmt.Errorf("%w: grant_type is required", ErrMissingGrantField)
	default:
		return nil, ErrUnsupportedGrant
	}
	return form, nil
}

// Reply 上游响应：状态码 + 解析后的 JSON（无法解析时为空对象）
type Reply struct {
	Status int
	Body   interface{}
}

// OK 是否 2xx
func (r *Reply) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// ExchangeToken 调用 <apiBase>/auth/token，原样返回上游状态和响应体
func (c *Client) ExchangeToken(ctx context.Context, apiBase string, req TokenRequest) (*Reply, error) {
	form, err := req.Form()
	if err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(endpoint(apiBase, "auth/token"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &Reply{Status: resp.StatusCode(), Body: decodeBody(resp.Body())}, nil
}

// AccessToken 使用 password 授权获取 access token
func (c *Client) AccessToken(ctx context.Context, apiBase, terminalCode, password string) (string, error) {
	reply, err := c.ExchangeToken(ctx, apiBase, TokenRequest{
		GrantType:    GrantPassword,
		TerminalCode: terminalCode,
		Password:     password,
	})
	if err != nil {
		return "", err
	}
	if !reply.OK() {
		return "", &UpstreamError{Status: reply.Status, Body: reply.Body}
	}

	body, _ := reply.Body.(map[string]interface{})
	for _, key := range []string{"access_token", "accessToken"} {
		if token, ok := body[key].(string); ok && token != "" {
			return token, nil
		}
	}
	return "", &TokenError{Body: reply.Body}
}

// TokenError 令牌响应中缺少 access_token
type TokenError struct {
	Body interface{}
}

func (e *TokenError) Error() string { return ErrMissingToken.Error() }

func (e *TokenError) Unwrap() error { return ErrMissingToken }

// PaymentOptions 创建支付的可选参数
type PaymentOptions struct {
	Amount        string
	Currency      string
	CustomerEmail string
	RequestName   string
}

// PaymentPayload 创建支付的请求体
type PaymentPayload struct {
	Request       PayloadRequest       `json:"request"`
	MerchantOrder PayloadMerchantOrder `json:"merchant_order"`
	PaymentMethod string               `json:"payment_method"`
	PaymentData   PayloadPaymentData   `json:"payment_data"`
	Customer      PayloadCustomer      `json:"customer"`
}

type PayloadRequest struct {
	ID   string `json:"id"`
	Time string `json:"time"`
}

type PayloadMerchantOrder struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type PayloadPaymentData struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type PayloadCustomer struct {
	Email string `json:"email"`
}

// NewPaymentPayload 组装支付请求体，request id 与 merchant order id 均为随机 UUID
func NewPaymentPayload(opts PaymentOptions, now time.Time) PaymentPayload {
	return PaymentPayload{
		Request: PayloadRequest{
			ID:   uuid.NewString(),
			Time: now.UTC().Format("2006-01-02T15:04:05.000Z"),
		},
		MerchantOrder: PayloadMerchantOrder{
			ID:          uuid.NewString(),
			Description: fmt.Sprintf("UI Order (\"%s\")", opts.RequestName),
		},
		PaymentMethod: "BANKCARD",
		PaymentData: PayloadPaymentData{
			Amount:   opts.Amount,
			Currency: opts.Currency,
		},
		Customer: PayloadCustomer{Email: opts.CustomerEmail},
	}
}

// CreatePayment 携带 Bearer token 调用 <apiBase>/payments
func (c *Client) CreatePayment(ctx context.Context, apiBase, token string, payload PaymentPayload) (*Reply, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(endpoint(apiBase, "payments"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &Reply{Status: resp.StatusCode(), Body: decodeBody(resp.Body())}, nil
}

func endpoint(apiBase, path string) string {
	return strings.TrimRight(apiBase, "/") + "/" + path
}

// decodeBody 上游返回非 JSON 时按空对象处理
func decodeBody(raw []byte) interface{} {
	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return map[string]interface{}{}
	}
	return body
}
