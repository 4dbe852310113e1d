// Package payment 网关回调处理流程：解析密钥 -> 解码 -> 归一化 -> 落库
// 各网关的差异由 factory 注册的策略提供，这里只负责串联
package payment

import (
	"context"
	"time"

	"go.uber.org/zap"

	paymentmodel "paydash/app/models/payment"
	"paydash/pkg/logger"
	"paydash/pkg/payment/types"
	"paydash/pkg/payment/utils"
)

// StrategyLookup 按网关获取策略
type StrategyLookup interface {
	Lookup(gateway types.Gateway) (types.Strategy, error)
}

// CredentialResolver 入站标识 -> 解密密钥
type CredentialResolver interface {
	Resolve(ctx context.Context, id string) (string, error)
}

// RecordStore 记录写入
type RecordStore interface {
	Upsert(ctx context.Context, p *paymentmodel.Payment) error
}

// RecordReplayer 同步写入失败后的补偿队列
type RecordReplayer interface {
	PushRecord(ctx context.Context, p *paymentmodel.Payment) error
}

// Result 一次回调的处理结果
type Result struct {
	Gateway types.Gateway
	Verdict types.Verdict
	// RecordID 记录主键，网关没有提供订单号时为生成的兜底 ID
	RecordID string
	Record   *paymentmodel.Payment
	// PersistErr 同步写入失败的原因，不影响对用户的响应
	PersistErr error
	// Queued 写入失败后是否已进入补偿队列
	Queued bool
}

// Processor 回调处理器
type Processor struct {
	strategies StrategyLookup
	resolver   CredentialResolver
	store      RecordStore
	replayer   RecordReplayer
	ids        *utils.IDGenerator
	now        func() time.Time
}

// Option 处理器可选项
type Option func(*Processor)

// WithReplayer 设置补偿队列
func WithReplayer(r RecordReplayer) Option {
	return func(p *Processor) {
		p.replayer = r
	}
}

// WithClock 设置时钟，测试使用
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// NewProcessor 创建回调处理器
func NewProcessor(strategies StrategyLookup, resolver CredentialResolver, store RecordStore, ids *utils.IDGenerator, opts ...Option) *Processor {
	p := &Processor{
		strategies: strategies,
		resolver:   resolver,
		store:      store,
		ids:        ids,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process 处理一次回调
// 密钥解析或解码失败时直接返回错误，不会写入任何记录；写入失败只记日志并进入补偿队列
func (p *Processor) Process(ctx context.Context, gateway types.Gateway, cb *types.Callback) (*Result, error) {
	strategy, err := p.strategies.Lookup(gateway)
	if err != nil {
		return nil, err
	}

	credentialID, err := strategy.CredentialID(cb)
	if err != nil {
		return nil, err
	}

	var secret string
	if credentialID != "" {
		secret, err = p.resolver.Resolve(ctx, credentialID)
		if err != nil {
			return nil, err
		}
	}

	decoded, err := strategy.Decode(cb, secret)
	if err != nil {
		logger.Warn("Payment",
			zap.String("gateway", string(gateway)),
			zap.String("credential_id", credentialID),
			zap.Error(err),
		)
		return nil, err
	}

	verdict := strategy.Normalize(decoded)

	result := &Result{
		Gateway:  gateway,
		Verdict:  verdict,
		RecordID: verdict.OrderID,
	}
	if result.RecordID == "" {
		result.RecordID = p.ids.Fallback(string(gateway))
	}

	result.Record = paymentmodel.Compose(paymentmodel.Record{
		Gateway:          gateway,
		Status:           verdict.Status,
		OrderID:          result.RecordID,
		OrderIDGenerated: verdict.OrderID == "",
		ReceivedAt:       p.now(),
		Fields:           decoded.Fields,
		Raw:              decoded.Raw,
		Extra:            decoded.Extra,
	})

	p.persist(ctx, result)

	logger.Info("Payment",
		zap.String("gateway", string(gateway)),
		zap.String("order_id", result.RecordID),
		zap.String("status", string(verdict.Status)),
		zap.Bool("persisted", result.PersistErr == nil),
	)
	return result, nil
}

func (p *Processor) persist(ctx context.Context, result *Result) {
	err := p.store.Upsert(ctx, result.Record)
	if err == nil {
		return
	}

	result.PersistErr = err
	logger.Error("Payment",
		zap.String("gateway", string(result.Gateway)),
		zap.String("order_id", result.RecordID),
		zap.String("stage", "persist"),
		zap.Error(err),
	)

	if p.replayer == nil {
		return
	}
	// 请求可能已经结束，入队不受其取消影响
	if err := p.replayer.PushRecord(context.WithoutCancel(ctx), result.Record); err != nil {
		logger.Error("Payment",
			zap.String("order_id", result.RecordID),
			zap.String("stage", "replay_push"),
			zap.Error(err),
		)
		return
	}
	result.Queued = true
}
