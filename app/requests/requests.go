// Package requests 处理请求数据和表单验证
package requests

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"

	"paydash/app/models/catalog"
)

// ValidationError 自定义验证错误
type ValidationError struct {
	Errors url.Values
}

// Error 实现 error 接口
func (v ValidationError) Error() string {
	return fmt.Sprintf("验证错误: %v", v.Errors)
}

// ValidateStruct 通用的结构体验证函数，规则以 json 标签命名
func ValidateStruct(data interface{}, rules govalidator.MapData, messages govalidator.MapData) error {
	opts := govalidator.Options{
		Data:     data,
		Rules:    rules,
		Messages: messages,
	}

	if errs := govalidator.New(opts).ValidateStruct(); len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// ValidateRequest 通用的请求验证函数
func ValidateRequest[T any](c *gin.Context, rules govalidator.MapData, messages govalidator.MapData) (*T, error) {
	var req T

	// 1. 解析请求体
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("解析请求失败: %w", err)
	}

	// 2. 验证结构体
	if err := ValidateStruct(&req, rules, messages); err != nil {
		return nil, err
	}

	return &req, nil
}

// bindOptionalJSON 请求体为空时保留零值
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil {
		return nil
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return fmt.Errorf("读取请求失败: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return fmt.Errorf("解析请求失败: %w", err)
	}
	return nil
}

func utilityRule() string {
	return "in:" + strings.Join(catalog.UtilityIDs(), ",")
}
