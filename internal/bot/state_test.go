package bot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateStoreFlow(t *testing.T) {
	s := NewStateStore()
	assert.Equal(t, stepDefault, s.Step(1))

	s.Begin(1, stepAdjustTarget)
	s.Put(1, "target", "42")
	assert.Equal(t, stepAdjustTarget, s.Step(1))

	s.Advance(1, stepAdjustDelta)
	assert.Equal(t, stepAdjustDelta, s.Step(1))
	assert.Equal(t, "42", s.Get(1, "target"))

	s.Clear(1)
	assert.Equal(t, stepDefault, s.Step(1))
	assert.Empty(t, s.Get(1, "target"))
}

func TestStateStoreBeginDiscardsPreviousData(t *testing.T) {
	s := NewStateStore()
	s.Begin(1, stepCustomAmount)
	s.Put(1, "bank", "BNP Paribas")

	s.Begin(1, stepDepositAmount)
	assert.Empty(t, s.Get(1, "bank"))
}

func TestStateStoreIsolatesUsers(t *testing.T) {
	s := NewStateStore()
	s.Begin(1, stepCustomAmount)
	s.Put(1, "category", "FICHES")

	assert.Equal(t, stepDefault, s.Step(2))
	assert.Empty(t, s.Get(2, "category"))
}

func TestStateStoreConcurrentAccess(t *testing.T) {
	s := NewStateStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.Begin(id, stepDepositAmount)
			s.Put(id, "k", "v")
			_ = s.Step(id)
			_ = s.Get(id, "k")
			s.Clear(id)
		}(int64(i % 5))
	}
	wg.Wait()
}
