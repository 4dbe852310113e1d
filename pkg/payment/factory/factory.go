// Package factory 按网关标识注册回调策略
package factory

import (
	"fmt"

	"paydash/pkg/payment/pay10"
	"paydash/pkg/payment/types"
	"paydash/pkg/payment/unlimit"
)

// Registry 网关 -> 回调策略
type Registry struct {
	strategies map[types.Gateway]types.Strategy
}

// NewRegistry 创建注册表，未传入策略时注册全部内置网关
func NewRegistry(strategies ...types.Strategy) *Registry {
	if len(strategies) == 0 {
		strategies = []types.Strategy{pay10.New(), unlimit.New()}
	}

	r := &Registry{strategies: make(map[types.Gateway]types.Strategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.Gateway()] = s
	}
	return r
}

// Lookup 获取网关对应的策略
func (r *Registry) Lookup(gateway types.Gateway) (types.Strategy, error) {
	s, ok := r.strategies[gateway]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedGateway, gateway)
	}
	return s, nil
}
