// Package utils 支付相关的 ID 生成与摘要工具
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// IDGenerator 基于 snowflake 的订单号生成器
// 同一节点内单调递增，多实例部署时各自配置不同的 node id
type IDGenerator struct {
	node *snowflake.Node
}

// NewIDGenerator 创建 ID 生成器，node 取值范围 0-1023
func NewIDGenerator(node int64) (*IDGenerator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node %d: %w", node, err)
	}
	return &IDGenerator{node: n}, nil
}

// Fallback 回调没有携带订单号时使用的兜底 ID，形如 pay10_2ylrx0k3u5mo
func (g *IDGenerator) Fallback(gateway string) string {
	return gateway + "_" + g.node.Generate().Base36()
}

// OrderID 发起支付时的订单号，形如 ORD_2YLRX0K3U5MO_9F3A1C0D
func (g *IDGenerator) OrderID() string {
	return "ORD_" + strings.ToUpper(g.node.Generate().Base36()) + "_" + strings.ToUpper(GenerateNonceStr(4))
}

// GenerateNonceStr 生成 n 字节的随机十六进制字符串
func GenerateNonceStr(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// SHA256HexUpper 计算大写十六进制的 SHA-256 摘要
func SHA256HexUpper(s string) string {
	sum := sha256.Sum256([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
