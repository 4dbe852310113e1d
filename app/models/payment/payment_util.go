package payment

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"paydash/pkg/payment/types"
)

// Record 组装一条记录所需的输入
type Record struct {
	Gateway          types.Gateway
	Status           types.Status
	OrderID          string
	OrderIDGenerated bool
	ReceivedAt       time.Time
	Fields           map[string]interface{}
	Raw              map[string]interface{}
	Extra            map[string]interface{}
}

// metadataKeys 固定元数据字段，同名的厂商字段会被覆盖
var metadataKeys = []string{"gateway", "status", "orderId", "receivedAt", "raw"}

// Compose 合并厂商字段与元数据生成记录，元数据优先
func Compose(r Record) *Payment {
	doc := make(map[string]interface{}, len(r.Fields)+len(r.Extra)+len(metadataKeys))
	for k, v := range r.Fields {
		doc[k] = v
	}
	for k, v := range r.Extra {
		doc[k] = v
	}

	var orderID interface{} = r.OrderID
	if r.OrderIDGenerated {
		orderID = nil
	}
	doc["gateway"] = string(r.Gateway)
	doc["status"] = string(r.Status)
	doc["orderId"] = orderID
	doc["receivedAt"] = r.ReceivedAt.UTC().Format(time.RFC3339Nano)
	doc["raw"] = r.Raw

	p := &Payment{
		OrderID:          r.OrderID,
		OrderIDGenerated: r.OrderIDGenerated,
		Gateway:          string(r.Gateway),
		Status:           string(r.Status),
		ReceivedAt:       r.ReceivedAt.UTC(),
		Raw:              r.Raw,
		Document:         doc,
	}
	if s, ok := r.Extra["encdata"].(string); ok {
		p.EncData = s
	}
	if s, ok := r.Extra["decryptedRaw"].(string); ok {
		p.DecryptedRaw = s
	}
	return p
}

// Validate 保存前校验
func (p *Payment) Validate() error {
	if p.OrderID == "" {
		return errors.New("order_id is required")
	}
	if p.Gateway == "" {
		return errors.New("gateway is required")
	}
	if !types.Status(p.Status).IsValid() {
		return errors.New("status must be success or failure")
	}
	return nil
}

// BeforeSave GORM 钩子
func (p *Payment) BeforeSave(_ *gorm.DB) error {
	return p.Validate()
}

// StatusView 对外查询时返回的字段，网关原始数据只留在服务端
type StatusView struct {
	OrderID    string `json:"orderId"`
	Gateway    string `json:"gateway"`
	Status     string `json:"status"`
	ReceivedAt string `json:"receivedAt"`
}

// View 生成对外的状态视图
func (p *Payment) View() StatusView {
	return StatusView{
		OrderID:    p.OrderID,
		Gateway:    p.Gateway,
		Status:     p.Status,
		ReceivedAt: p.ReceivedAt.UTC().Format(time.RFC3339Nano),
	}
}

// IsSuccess 是否支付成功
func (p *Payment) IsSuccess() bool {
	return p.Status == string(types.StatusSuccess)
}
