package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paydash/app/models/terminal"
)

var terminalUpsertColumns = []string{
	"utility_id", "payload_id", "secret_key", "encryption_key",
	"api_base", "terminal_code", "terminal_password", "extra", "updated_at",
}

// TerminalRepository 终端配置仓库
type TerminalRepository struct {
	db *gorm.DB
}

// NewTerminalRepository 创建仓库实例
func NewTerminalRepository(db *gorm.DB) *TerminalRepository {
	return &TerminalRepository{
		db: db,
	}
}

// List 列出网关下的全部终端
func (r *TerminalRepository) List(ctx context.Context, gateway string) ([]terminal.Terminal, error) {
	var terminals []terminal.Terminal
	err := r.db.WithContext(ctx).
		Where("gateway = ?", gateway).
		Order("name ASC").
		Find(&terminals).Error
	return terminals, err
}

// Get 按 网关 + 名称 获取终端
func (r *TerminalRepository) Get(ctx context.Context, gateway, name string) (*terminal.Terminal, error) {
	var t terminal.Terminal
	err := r.db.WithContext(ctx).
		Where("gateway = ? AND name = ?", gateway, name).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Save 按 网关 + 名称 创建或更新终端
func (r *TerminalRepository) Save(ctx context.Context, t *terminal.Terminal) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "gateway"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns(terminalUpsertColumns),
	}).Create(t).Error
}

// Delete 删除终端，不存在时返回 gorm.ErrRecordNotFound
func (r *TerminalRepository) Delete(ctx context.Context, gateway, name string) error {
	result := r.db.WithContext(ctx).
		Where("gateway = ? AND name = ?", gateway, name).
		Delete(&terminal.Terminal{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FirstByPayloadID 跨所有网关查找第一个 payload id 匹配的终端
func (r *TerminalRepository) FirstByPayloadID(ctx context.Context, payloadID string) (*terminal.Terminal, error) {
	var t terminal.Terminal
	err := r.db.WithContext(ctx).
		Where("payload_id = ?", payloadID).
		Order("id ASC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FirstByUtility 查找网关下绑定该业务的第一个终端
func (r *TerminalRepository) FirstByUtility(ctx context.Context, gateway, utility string) (*terminal.Terminal, error) {
	var t terminal.Terminal
	err := r.db.WithContext(ctx).
		Where("gateway = ? AND utility_id = ?", gateway, utility).
		Order("id ASC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UtilitiesWithTerminals 网关下已配置终端的业务列表
func (r *TerminalRepository) UtilitiesWithTerminals(ctx context.Context, gateway string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&terminal.Terminal{}).
		Where("gateway = ? AND utility_id <> ''", gateway).
		Distinct().
		Order("utility_id ASC").
		Pluck("utility_id", &ids).Error
	return ids, err
}
