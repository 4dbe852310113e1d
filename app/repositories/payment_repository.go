// Package repositories 数据访问层，*gorm.DB 由启动流程注入
package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paydash/app/models/payment"
)

// paymentUpsertColumns 冲突时覆盖的列，created_at 保留首次写入的时间
var paymentUpsertColumns = []string{
	"order_id_generated", "gateway", "status", "received_at",
	"enc_data", "decrypted_raw", "raw", "document", "updated_at",
}

// PaymentRepository 支付记录仓库
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建仓库实例
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{
		db: db,
	}
}

// Upsert 按订单号写入记录，已存在时整体覆盖（后写覆盖先写）
// 接收时间早于已有记录的写入（如延迟的补偿写入）直接忽略，不会回滚较新的状态
func (r *PaymentRepository) Upsert(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns(paymentUpsertColumns),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "payments.received_at <= excluded.received_at"},
		}},
	}).Create(p).Error
}

// GetByOrderID 根据订单号获取支付记录
func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Count 记录总数
func (r *PaymentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&payment.Payment{}).Count(&total).Error
	return total, err
}
