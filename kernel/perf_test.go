package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElapsedWraps(t *testing.T) {
	assert.Equal(t, uint64(5), Elapsed(10, 15, 99))
	assert.Equal(t, uint64(6), Elapsed(97, 3, 99))
	assert.Equal(t, uint64(0), Elapsed(42, 42, 99))
	assert.Equal(t, uint64(3), Elapsed(math.MaxUint64-1, 1, math.MaxUint64))
}

func TestPerfPartitionsAcrossWraparound(t *testing.T) {
	const max = 999
	start := uint64(900)
	p := NewPerf(start, max)

	// Readings cross the 999 -> 0 boundary twice.
	steps := []struct {
		phase Phase
		now   uint64
	}{
		{PhasePlatform, 950},
		{PhaseApplets, 20},
		{PhaseWaiting, 500},
		{PhasePlatform, 510},
		{PhaseApplets, 990},
		{PhaseWaiting, 100},
		{PhasePlatform, 130},
	}
	var wall uint64
	prev := start
	for _, s := range steps {
		p.Mark(s.phase, s.now)
		wall += Elapsed(prev, s.now, max)
		prev = s.now
	}

	assert.Equal(t, wall, p.Total())
	assert.Equal(t, uint64(50+10+30), p.Platform)
	assert.Equal(t, uint64(70+480), p.Applets)
	assert.Equal(t, uint64(480+110), p.Waiting)
	assert.Equal(t, (prev+(max+1)-start)%(max+1), p.Total()%(max+1))
}
