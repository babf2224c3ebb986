package transport

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tomb "gopkg.in/tomb.v2"
)

func TestWorkerPoolProcessesTasks(t *testing.T) {
	pool := NewWorkerPool(2)

	var mu sync.Mutex
	var seen []int

	var tb tomb.Tomb
	tb.Go(func() error {
		pool.Setup(&tb, func(_ *tomb.Tomb, task any) error {
			mu.Lock()
			seen = append(seen, task.(int))
			mu.Unlock()
			return nil
		})
		return nil
	})

	pool.AddTask(1)
	pool.AddTask(2)
	pool.AddTask(3)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 10*time.Millisecond)

	tb.Kill(nil)
	_ = tb.Wait()
}
