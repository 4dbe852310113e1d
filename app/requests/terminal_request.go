package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// TerminalRequest 创建或更新终端
type TerminalRequest struct {
	UtilityID        string                 `json:"utility_id"`
	PayloadID        string                 `json:"payload_id"`
	SecretKey        string                 `json:"secret_key"`
	EncryptionKey    string                 `json:"encryption_key"`
	APIBase          string                 `json:"api_base"`
	TerminalCode     string                 `json:"terminal_code"`
	TerminalPassword string                 `json:"terminal_password"`
	Extra            map[string]interface{} `json:"extra"`
}

// ValidateTerminal 校验终端配置，网关相关的必填字段由模型层检查
func ValidateTerminal(c *gin.Context) (*TerminalRequest, error) {
	rules := govalidator.MapData{
		"utility_id":     []string{"required", utilityRule()},
		"encryption_key": []string{"between:16,32"},
		"api_base":       []string{"url"},
	}
	messages := govalidator.MapData{
		"utility_id": []string{
			"required:业务类型不能为空",
			"in:不支持的业务类型",
		},
		"encryption_key": []string{
			"between:加密密钥长度必须为 16 到 32 个字符",
		},
		"api_base": []string{
			"url:API 地址格式不正确",
		},
	}

	return ValidateRequest[TerminalRequest](c, rules, messages)
}
