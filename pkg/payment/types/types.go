// Package types 定义各支付网关共用的类型、错误和策略接口
package types

import (
	"errors"
	"fmt"
	"net/url"
)

// Gateway 支付网关标识
type Gateway string

const (
	GatewayPay10    Gateway = "pay10"
	GatewayUnlimit  Gateway = "unlimit"
	GatewayZwitch   Gateway = "zwitch"
	GatewaySabPaisa Gateway = "sabpaisa"
)

// Status 归一化后的支付状态，只有成功和失败两种
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// IsValid 判断状态是否属于两种合法取值
func (s Status) IsValid() bool {
	return s == StatusSuccess || s == StatusFailure
}

var (
	ErrMissingField       = errors.New("missing required field")
	ErrCredentialNotFound = errors.New("terminal credential not found")
	ErrDecrypt            = errors.New("decrypt payload failed")
	ErrParse              = errors.New("parse payload failed")
	ErrUnsupportedGateway = errors.New("unsupported gateway")
)

// MissingFieldError 入站请求缺少必填字段
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("no %s received", e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// CredentialNotFoundError 入站标识找不到对应的终端配置
type CredentialNotFoundError struct {
	ID string
}

func (e *CredentialNotFoundError) Error() string {
	return fmt.Sprintf("no encryption key found for %q", e.ID)
}

func (e *CredentialNotFoundError) Unwrap() error {
	return ErrCredentialNotFound
}

// Callback 入站回调的原始内容，表单回调使用 Form，JSON 回调使用 Body
type Callback struct {
	Form url.Values
	Body []byte
}

// Decoded 解码后的回调
type Decoded struct {
	// Fields 平铺到记录顶层的厂商字段
	Fields map[string]interface{}
	// Raw 完整的厂商载荷，嵌套保存一份用于审计
	Raw map[string]interface{}
	// Extra 解密前的材料，例如 encdata / decryptedRaw
	Extra map[string]interface{}
}

// Verdict 归一化结果
type Verdict struct {
	Status  Status
	OrderID string
}

// Strategy 单个网关的解码 + 归一化实现
type Strategy interface {
	Gateway() Gateway

	// CredentialID 返回用于查找终端密钥的入站标识，空字符串表示无需密钥
	CredentialID(cb *Callback) (string, error)

	Decode(cb *Callback, secret string) (*Decoded, error)

	Normalize(d *Decoded) Verdict
}
