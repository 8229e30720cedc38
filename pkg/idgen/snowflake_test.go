package idgen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextIDUnique(t *testing.T) {
	const n = 10000
	seen := make(map[int64]bool, n)
	for i := 0; i < n; i++ {
		id := NextID()
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestNextIDConcurrent(t *testing.T) {
	const workers = 8
	const perWorker = 1000

	ids := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ids <- NextID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, workers*perWorker)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestGenerateTransactionNo(t *testing.T) {
	no := GenerateTransactionNo()
	assert.True(t, strings.HasPrefix(no, "TXN"))
	assert.Len(t, no, 3+14+8)

	assert.NotEqual(t, no, GenerateTransactionNo())
}

func TestGenerateOrderNo(t *testing.T) {
	no := GenerateOrderNo()
	assert.True(t, strings.HasPrefix(no, "ORD"))
	assert.Len(t, no, 3+14+8)
}
