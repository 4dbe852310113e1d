package terminal

import (
	"fmt"
	"strings"

	"paydash/pkg/helpers"
	"paydash/pkg/payment/types"
)

// requiredFields 各网关保存终端时的必填字段
var requiredFields = map[types.Gateway][]string{
	types.GatewayPay10:   {"payload_id", "secret_key", "encryption_key"},
	types.GatewayUnlimit: {"api_base", "terminal_code", "terminal_password"},
}

// RequiredFields 网关的必填字段，未登记的网关只需要 utility_id
func RequiredFields(gateway types.Gateway) []string {
	return requiredFields[gateway]
}

// MissingFields 返回未填写的必填字段
func (t *Terminal) MissingFields() []string {
	values := map[string]string{
		"payload_id":        t.PayloadID,
		"secret_key":        t.SecretKey,
		"encryption_key":    t.EncryptionKey,
		"api_base":          t.APIBase,
		"terminal_code":     t.TerminalCode,
		"terminal_password": t.TerminalPassword,
	}

	var missing []string
	for _, field := range RequiredFields(types.Gateway(t.Gateway)) {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Validate 校验终端配置是否完整
func (t *Terminal) Validate() error {
	if t.Gateway == "" || t.Name == "" {
		return fmt.Errorf("gateway and name are required")
	}
	if missing := t.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("terminal %s/%s is missing %s", t.Gateway, t.Name, strings.Join(missing, ", "))
	}
	return nil
}

// MaskedView 对外展示的终端信息，密钥只保留末尾 4 位
type MaskedView struct {
	Gateway          string                 `json:"gateway"`
	Name             string                 `json:"name"`
	UtilityID        string                 `json:"utilityId"`
	PayloadID        string                 `json:"payloadId,omitempty"`
	SecretKey        string                 `json:"secretKey,omitempty"`
	EncryptionKey    string                 `json:"encryptionKey,omitempty"`
	APIBase          string                 `json:"apiBase,omitempty"`
	TerminalCode     string                 `json:"terminalCode,omitempty"`
	TerminalPassword string                 `json:"terminalPassword,omitempty"`
	Extra            map[string]interface{} `json:"extra,omitempty"`
}

// Masked 生成脱敏视图，Extra 中的值一律脱敏
func (t *Terminal) Masked() MaskedView {
	var extra map[string]interface{}
	if len(t.Extra) > 0 {
		extra = make(map[string]interface{}, len(t.Extra))
		for k, v := range t.Extra {
			extra[k] = helpers.MaskSecret(fmt.Sprint(v))
		}
	}

	return MaskedView{
		Gateway:          t.Gateway,
		Name:             t.Name,
		UtilityID:        t.UtilityID,
		PayloadID:        t.PayloadID,
		SecretKey:        helpers.MaskSecret(t.SecretKey),
		EncryptionKey:    helpers.MaskSecret(t.EncryptionKey),
		APIBase:          t.APIBase,
		TerminalCode:     t.TerminalCode,
		TerminalPassword: helpers.MaskSecret(t.TerminalPassword),
		Extra:            extra,
	}
}
