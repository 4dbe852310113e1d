// Package payment 支付回调记录
package payment

import (
	"time"

	"gorm.io/datatypes"

	"paydash/app/models"
)

// Payment 支付回调记录，一个订单号一行，重复回调后写覆盖先写
type Payment struct {
	OrderID          string            `gorm:"column:order_id;primaryKey;type:varchar(128)" json:"orderId"`
	OrderIDGenerated bool              `gorm:"column:order_id_generated;default:false" json:"orderIdGenerated"` // 网关未提供订单号时为 true
	Gateway          string            `gorm:"column:gateway;type:varchar(32);index" json:"gateway"`
	Status           string            `gorm:"column:status;type:varchar(16);index" json:"status"`
	ReceivedAt       time.Time         `gorm:"column:received_at;index" json:"receivedAt"`
	EncData          string            `gorm:"column:enc_data;type:text" json:"encData,omitempty"`
	DecryptedRaw     string            `gorm:"column:decrypted_raw;type:text" json:"decryptedRaw,omitempty"`
	Raw              datatypes.JSONMap `gorm:"column:raw" json:"raw"`
	Document         datatypes.JSONMap `gorm:"column:document" json:"document"`

	models.CommonTimestampsField
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
