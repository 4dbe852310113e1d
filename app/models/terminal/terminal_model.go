// Package terminal 网关终端配置
package terminal

import (
	"gorm.io/datatypes"

	"paydash/app/models"
)

// Terminal 一组绑定到 网关 + 业务 的厂商凭证
type Terminal struct {
	models.BaseModel

	Gateway   string `gorm:"column:gateway;type:varchar(32);not null;uniqueIndex:idx_terminals_gateway_name,priority:1;index:idx_terminals_gateway_utility,priority:1" json:"gateway"`
	Name      string `gorm:"column:name;type:varchar(128);not null;uniqueIndex:idx_terminals_gateway_name,priority:2" json:"name"`
	UtilityID string `gorm:"column:utility_id;type:varchar(64);index:idx_terminals_gateway_utility,priority:2" json:"utilityId"`

	// Pay10
	PayloadID     string `gorm:"column:payload_id;type:varchar(128);index" json:"payloadId,omitempty"`
	SecretKey     string `gorm:"column:secret_key;type:varchar(255)" json:"-"`
	EncryptionKey string `gorm:"column:encryption_key;type:varchar(255)" json:"-"`

	// Unlimit
	APIBase          string `gorm:"column:api_base;type:varchar(255)" json:"apiBase,omitempty"`
	TerminalCode     string `gorm:"column:terminal_code;type:varchar(128)" json:"terminalCode,omitempty"`
	TerminalPassword string `gorm:"column:terminal_password;type:varchar(255)" json:"-"`

	// 其他网关的自由字段
	Extra datatypes.JSONMap `gorm:"column:extra" json:"-"`

	models.CommonTimestampsField
}

// TableName 指定表名
func (Terminal) TableName() string {
	return "terminals"
}
