package utils

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackIsUniqueUnderConcurrency(t *testing.T) {
	gen, err := NewIDGenerator(1)
	require.NoError(t, err)

	const n = 500
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.Fallback("pay10")
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	for id := range seen {
		assert.True(t, strings.HasPrefix(id, "pay10_"))
		break
	}
}

func TestOrderIDFormat(t *testing.T) {
	gen, err := NewIDGenerator(2)
	require.NoError(t, err)

	parts := strings.Split(gen.OrderID(), "_")
	require.Len(t, parts, 3)
	assert.Equal(t, "ORD", parts[0])
	assert.Equal(t, strings.ToUpper(parts[1]), parts[1])
	assert.Len(t, parts[2], 8)
}

func TestNewIDGeneratorRejectsBadNode(t *testing.T) {
	_, err := NewIDGenerator(5000)
	assert.Error(t, err)
}

func TestSHA256HexUpper(t *testing.T) {
	assert.Equal(t,
		"BA7816BF8F01CFEA414140DE5DAE2223B00361A396177A9CB410FF61F20015AD",
		SHA256HexUpper("abc"))
}
