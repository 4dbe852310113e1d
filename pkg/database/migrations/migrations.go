package migrations

import (
	"paydash/app/models/payment"
	"paydash/app/models/terminal"
)

// RegisterTables 返回需要迁移的表的模型列表
func RegisterTables() []interface{} {
	return []interface{}{
		&terminal.Terminal{},
		&payment.Payment{},
	}
}
