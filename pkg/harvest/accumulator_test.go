package harvest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhsharvest/pkg/xhs"
)

func feedWithID(id string) *xhs.Feed {
	return &xhs.Feed{ID: id, ModelType: "note"}
}

func TestAccumulator_OfferDeduplicates(t *testing.T) {
	acc := NewAccumulator()

	assert.True(t, acc.Offer(feedWithID("a")))
	assert.Equal(t, 1, acc.Size())

	// Second offer of the same id changes nothing
	assert.False(t, acc.Offer(feedWithID("a")))
	assert.Equal(t, 1, acc.Size())
}

func TestAccumulator_RejectsUnusableFeeds(t *testing.T) {
	acc := NewAccumulator()

	assert.False(t, acc.Offer(nil))
	assert.False(t, acc.Offer(&xhs.Feed{}))
	assert.Equal(t, 0, acc.Size())
}

func TestAccumulator_PreservesFirstSeenOrder(t *testing.T) {
	acc := NewAccumulator()

	// Fixed interleaving simulating the two producers
	sequence := []string{"s1", "api1", "s2", "api2", "s1", "api3", "s2"}
	for _, id := range sequence {
		acc.Offer(feedWithID(id))
	}

	items := acc.Items()
	require.Len(t, items, 5)
	for i, want := range []string{"s1", "api1", "s2", "api2", "api3"} {
		assert.Equal(t, want, items[i].ID)
	}
}

func TestAccumulator_ItemsReturnsCopy(t *testing.T) {
	acc := NewAccumulator()
	acc.Offer(feedWithID("a"))

	items := acc.Items()
	acc.Offer(feedWithID("b"))

	assert.Len(t, items, 1)
}

func TestAccumulator_Truncate(t *testing.T) {
	acc := NewAccumulator()
	for i := 0; i < 10; i++ {
		acc.Offer(feedWithID(fmt.Sprintf("id-%d", i)))
	}

	acc.Truncate(3)

	items := acc.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "id-0", items[0].ID)
	assert.Equal(t, "id-1", items[1].ID)
	assert.Equal(t, "id-2", items[2].ID)

	// Truncated ids can be offered again
	assert.True(t, acc.Offer(feedWithID("id-5")))
}

func TestAccumulator_TruncateNoOpWithinBound(t *testing.T) {
	acc := NewAccumulator()
	acc.Offer(feedWithID("a"))
	acc.Offer(feedWithID("b"))

	acc.Truncate(5)
	assert.Equal(t, 2, acc.Size())

	acc.Truncate(-1)
	assert.Equal(t, 0, acc.Size())
}

func TestAccumulator_ConcurrentOffers(t *testing.T) {
	acc := NewAccumulator()

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				acc.Offer(feedWithID(fmt.Sprintf("id-%d", i)))
			}
		}()
	}
	wg.Wait()

	// Every id inserted exactly once regardless of interleaving
	assert.Equal(t, 100, acc.Size())
}
