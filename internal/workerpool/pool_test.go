package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolSubmit(t *testing.T) {
	p := New(4)
	defer p.Close()

	var counter int64
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&counter, 1)
		})
	}

	wg.Wait()
	assert.Equal(t, int64(100), counter)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	p := New(3)
	defer p.Close()

	var inFlight, peak int32
	Map(p, make([]int, 20), func(int) struct{} {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}
	})

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.LessOrEqual(t, p.Running(), p.Cap())
}

func TestMapPreservesOrder(t *testing.T) {
	p := New(8)
	defer p.Close()

	items := []int{5, 1, 4, 2, 3}
	got := Map(p, items, func(n int) int {
		// Larger values finish first
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		return n * 10
	})

	assert.Equal(t, []int{50, 10, 40, 20, 30}, got)
}

func TestPoolSurvivesPanics(t *testing.T) {
	p := New(1)
	defer p.Close()

	got := Map(p, []int{1, 2, 3}, func(n int) int {
		if n == 2 {
			panic("boom")
		}
		return n
	})

	assert.Equal(t, []int{1, 0, 3}, got)
}

func TestPoolClose(t *testing.T) {
	p := New(2)

	var counter int64
	for i := 0; i < 10; i++ {
		p.Submit(func() { atomic.AddInt64(&counter, 1) })
	}
	p.Close()

	assert.True(t, p.IsClosed())
	assert.Equal(t, int64(10), atomic.LoadInt64(&counter))
	assert.False(t, p.Submit(func() {}))

	got := Map(p, []int{1, 2}, func(n int) int { return n })
	assert.Equal(t, []int{0, 0}, got)

	p.Close()
}
