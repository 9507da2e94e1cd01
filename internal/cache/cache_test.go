package cache

import (
	"sync"
	"testing"

	"github.com/aristath/oraclefeed/pkg/oraclecore"
	"github.com/stretchr/testify/assert"
)

func TestCache_UpdateAndGet(t *testing.T) {
	c := New()
	consensus := oraclecore.ConsensusPrice{Symbol: "AAPL", Price: 100}

	c.Update(consensus, nil)

	entry, ok := c.Get("AAPL")
	assert.True(t, ok)
	assert.Equal(t, 100.0, entry.LastConsensus.Price)
}

func TestCache_GetMissing(t *testing.T) {
	c := New()
	_, ok := c.Get("MSFT")
	assert.False(t, ok)
}

func TestCache_ConcurrentReadsDoNotRace(t *testing.T) {
	c := New()
	c.Update(oraclecore.ConsensusPrice{Symbol: "AAPL", Price: 1}, nil)
	c.Update(oraclecore.ConsensusPrice{Symbol: "MSFT", Price: 2}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Get("AAPL")
			_ = c.Snapshot()
		}()
	}
	wg.Wait()
}
