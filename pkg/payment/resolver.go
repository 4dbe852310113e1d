package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"paydash/app/models/terminal"
	"paydash/pkg/payment/types"
)

// TerminalFinder 按 payload id 跨网关查找终端
type TerminalFinder interface {
	FirstByPayloadID(ctx context.Context, payloadID string) (*terminal.Terminal, error)
}

// TerminalResolver 根据入站标识解析终端的解密密钥
type TerminalResolver struct {
	finder TerminalFinder
}

// NewTerminalResolver 创建解析器
func NewTerminalResolver(finder TerminalFinder) *TerminalResolver {
	return &TerminalResolver{finder: finder}
}

// Resolve 返回第一个匹配终端的 encryption key
// 找不到终端或终端没有配置密钥时返回 *types.CredentialNotFoundError，不会回退到任何默认密钥
func (r *TerminalResolver) Resolve(ctx context.Context, id string) (string, error) {
	t, err := r.finder.FirstByPayloadID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &types.CredentialNotFoundError{ID: id}
		}
		return "", fmt.Errorf("lookup terminal for %q: %w", id, err)
	}
	if strings.TrimSpace(t.EncryptionKey) == "" {
		return "", &types.CredentialNotFoundError{ID: id}
	}
	return t.EncryptionKey, nil
}
