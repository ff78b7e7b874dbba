package pacing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhsharvest/pkg/browser"
)

func TestDelayer_WithinBand(t *testing.T) {
	d := NewDelayer(100*time.Millisecond, 300*time.Millisecond)

	for i := 0; i < 50; i++ {
		delay := d.Delay("scroll")
		assert.GreaterOrEqual(t, delay, 100*time.Millisecond)
		assert.Less(t, delay, 300*time.Millisecond)
	}
}

func TestDelayer_DeterministicSeeds(t *testing.T) {
	d := NewDeterministicDelayer(100*time.Millisecond, 300*time.Millisecond)

	assert.Equal(t, d.Delay("scroll-1"), d.Delay("scroll-1"))
	assert.NotEqual(t, d.Delay("scroll-1"), d.Delay("scroll-2"),
		"distinct seeds should not collide for this band")
}

func TestDelayer_ProductionVaries(t *testing.T) {
	d := NewDelayer(1*time.Millisecond, 100*time.Millisecond)

	seen := make(map[time.Duration]bool)
	for i := 0; i < 20; i++ {
		seen[d.Delay("scroll")] = true
		time.Sleep(time.Microsecond)
	}
	assert.Greater(t, len(seen), 1, "production delayer should mix in entropy")
}

func TestDelayer_DegenerateBands(t *testing.T) {
	assert.Equal(t, 50*time.Millisecond, NewDelayer(50*time.Millisecond, 50*time.Millisecond).Delay("x"))
	// max below min collapses to min
	assert.Equal(t, 80*time.Millisecond, NewDelayer(80*time.Millisecond, 10*time.Millisecond).Delay("x"))
	// negative min collapses to zero
	assert.Equal(t, time.Duration(0), NewDelayer(-time.Second, -time.Second).Delay("x"))
}

func TestDelayer_SleepHonorsContext(t *testing.T) {
	d := NewDelayer(5*time.Second, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := d.Sleep(ctx, "scroll")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

// fakePage satisfies browser.Page with no-ops so tests can override just
// the methods they exercise.
type fakePage struct{}

func (fakePage) Navigate(string) error                          { return nil }
func (fakePage) WaitForLoadState(time.Duration) error           { return nil }
func (fakePage) Evaluate(string) (interface{}, error)           { return nil, nil }
func (fakePage) WaitForFunction(string, time.Duration) error    { return nil }
func (fakePage) Hover(string) error                             { return nil }
func (fakePage) Click(string) error                             { return nil }
func (fakePage) OnResponse(func(browser.Response)) func()       { return func() {} }

type heightPage struct {
	fakePage
	heights []interface{}
	calls   int
}

func (p *heightPage) Evaluate(expression string) (interface{}, error) {
	if p.calls >= len(p.heights) {
		return p.heights[len(p.heights)-1], nil
	}
	v := p.heights[p.calls]
	p.calls++
	return v, nil
}

func TestWaitForStable_SettlesOnRepeatedHeight(t *testing.T) {
	page := &heightPage{heights: []interface{}{float64(1000), float64(2000), float64(2000), float64(2000)}}

	err := WaitForStable(context.Background(), page, 10*time.Second)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, page.calls, 3)
}

func TestWaitForStable_TimesOutWhileGrowing(t *testing.T) {
	page := &heightPage{}
	for i := 0; i < 100; i++ {
		page.heights = append(page.heights, float64(i*100))
	}

	err := WaitForStable(context.Background(), page, 700*time.Millisecond)
	assert.Error(t, err)
}
