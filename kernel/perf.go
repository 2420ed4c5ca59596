package kernel

// Phase is who owns the CPU between two marks.
type Phase uint8

const (
	// PhasePlatform is host dispatch logic.
	PhasePlatform Phase = iota
	// PhaseApplets is applet code, including callbacks.
	PhaseApplets
	// PhaseWaiting is suspension inside wait-for-callback.
	PhaseWaiting
)

// Perf partitions elapsed board time between the three phases.
//
// Clock readings wrap after Max; each Mark charges the elapsed time since
// the previous mark to the phase that just ended.
type Perf struct {
	Platform uint64
	Applets  uint64
	Waiting  uint64

	last uint64
	max  uint64
}

// NewPerf starts accounting at clock reading now.
func NewPerf(now, max uint64) *Perf {
	return &Perf{last: now, max: max}
}

// Mark charges the time since the previous mark to ended.
func (p *Perf) Mark(ended Phase, now uint64) {
	d := Elapsed(p.last, now, p.max)
	p.last = now
	switch ended {
	case PhasePlatform:
		p.Platform += d
	case PhaseApplets:
		p.Applets += d
	case PhaseWaiting:
		p.Waiting += d
	}
}

// Total returns the sum of the three counters.
func (p *Perf) Total() uint64 { return p.Platform + p.Applets + p.Waiting }

// Elapsed is the wraparound-safe difference now-prev on a clock that
// counts 0..max inclusive. It assumes at most one wrap between readings.
func Elapsed(prev, now, max uint64) uint64 {
	if now >= prev {
		return now - prev
	}
	// Wrapped: remaining ticks to max, one tick to 0, then now.
	return max - prev + 1 + now
}
