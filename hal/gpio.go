package hal

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// GPIOMode selects whether a pin is an input or output.
type GPIOMode uint8

const (
	GPIOModeInput GPIOMode = iota
	GPIOModeOutput
)

// GPIOPull selects the pull resistor configuration.
type GPIOPull uint8

const (
	GPIOPullNone GPIOPull = iota
	GPIOPullUp
	GPIOPullDown
)

// GPIOCaps declares what operations a pin supports.
type GPIOCaps uint8

const (
	GPIOCapInput GPIOCaps = 1 << iota
	GPIOCapOutput
	GPIOCapPullUp
	GPIOCapPullDown
)

// GPIO is the board's set of general-purpose pins.
type GPIO interface {
	Capability
	Counted
	Configure(id ID[KindGPIO], mode GPIOMode, pull GPIOPull) error
	Read(id ID[KindGPIO]) (bool, error)
	Write(id ID[KindGPIO], level bool) error
	// LastWrite returns the level last written to an output pin.
	LastWrite(id ID[KindGPIO]) (bool, error)
}

// GPIOPin is a single digital IO pin.
type GPIOPin interface {
	Name() string
	Caps() GPIOCaps
	Configure(mode GPIOMode, pull GPIOPull) error
	Read() (level bool, err error)
	Write(level bool) error
}

// NewPinGPIO exposes a fixed pin list as a GPIO capability.
func NewPinGPIO(pins []GPIOPin) GPIO {
	if len(pins) == 0 {
		return UnsupportedGPIO{}
	}
	return &pinGPIO{pins: pins, last: make([]bool, len(pins))}
}

type pinGPIO struct {
	mu   sync.Mutex
	pins []GPIOPin
	last []bool
}

func (g *pinGPIO) Supported() bool { return true }
func (g *pinGPIO) Count() int      { return len(g.pins) }

func (g *pinGPIO) Configure(id ID[KindGPIO], mode GPIOMode, pull GPIOPull) error {
	if err := g.pins[id.Index()].Configure(mode, pull); err != nil {
		return &Error{Space: SpaceUser, Code: CodeInvalidArgument, Msg: err.Error()}
	}
	return nil
}

func (g *pinGPIO) Read(id ID[KindGPIO]) (bool, error) {
	level, err := g.pins[id.Index()].Read()
	if err != nil {
		return false, &Error{Space: SpaceUser, Code: CodeInvalidState, Msg: err.Error()}
	}
	return level, nil
}

func (g *pinGPIO) Write(id ID[KindGPIO], level bool) error {
	if err := g.pins[id.Index()].Write(level); err != nil {
		return &Error{Space: SpaceUser, Code: CodeInvalidState, Msg: err.Error()}
	}
	g.mu.Lock()
	g.last[id.Index()] = level
	g.mu.Unlock()
	return nil
}

func (g *pinGPIO) LastWrite(id ID[KindGPIO]) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last[id.Index()], nil
}

type virtualPin struct {
	mu    sync.Mutex
	name  string
	caps  GPIOCaps
	mode  GPIOMode
	pull  GPIOPull
	level bool
}

func newVirtualPin(name string, caps GPIOCaps) *virtualPin {
	return &virtualPin{
		name: name,
		caps: caps,
		mode: GPIOModeInput,
		pull: GPIOPullNone,
	}
}

func (p *virtualPin) Name() string   { return p.name }
func (p *virtualPin) Caps() GPIOCaps { return p.caps }

func (p *virtualPin) Configure(mode GPIOMode, pull GPIOPull) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch mode {
	case GPIOModeInput:
		if p.caps&GPIOCapInput == 0 {
			return fmt.Errorf("gpio: pin %s: input unsupported", p.name)
		}
	case GPIOModeOutput:
		if p.caps&GPIOCapOutput == 0 {
			return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", p.name)
	}

	switch pull {
	case GPIOPullNone:
	case GPIOPullUp:
		if p.caps&GPIOCapPullUp == 0 {
			return fmt.Errorf("gpio: pin %s: pull-up unsupported", p.name)
		}
	case GPIOPullDown:
		if p.caps&GPIOCapPullDown == 0 {
			return fmt.Errorf("gpio: pin %s: pull-down unsupported", p.name)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid pull", p.name)
	}

	p.mode = mode
	p.pull = pull
	// An unconnected input follows its pull resistor.
	if mode == GPIOModeInput {
		p.level = pull == GPIOPullUp
	}
	return nil
}

func (p *virtualPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

func (p *virtualPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.level = level
	return nil
}

// signalPin is an input that toggles with a fixed period and duty cycle.
type signalPin struct {
	mu   sync.Mutex
	name string

	t0     time.Time
	now    func() time.Time
	period time.Duration
	high   time.Duration
}

func newSignalPin(name string, period, high time.Duration) GPIOPin {
	return newSignalPinWithClock(name, period, high, time.Now)
}

func newSignalPinWithClock(name string, period, high time.Duration, now func() time.Time) GPIOPin {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	if now == nil {
		now = time.Now
	}
	if period <= 0 {
		period = 1 * time.Second
	}
	if high < 0 {
		high = 0
	}
	if high > period {
		high = period
	}
	return &signalPin{
		name:   name,
		t0:     now(),
		now:    now,
		period: period,
		high:   high,
	}
}

func (p *signalPin) Name() string   { return p.name }
func (p *signalPin) Caps() GPIOCaps { return GPIOCapInput }

func (p *signalPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if mode != GPIOModeInput {
		return fmt.Errorf("gpio: pin %s: only input supported", p.name)
	}
	if pull != GPIOPullNone {
		return fmt.Errorf("gpio: pin %s: pull unsupported", p.name)
	}
	return nil
}

func (p *signalPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := p.now().Sub(p.t0)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return elapsed%p.period < p.high, nil
}

func (p *signalPin) Write(level bool) error {
	_ = level
	return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
}

// ledPin mirrors one LED as an output-only pin.
type ledPin struct {
	name string
	set  func(on bool) error
	get  func() (bool, error)
}

func newLEDPin(name string, get func() (bool, error), set func(on bool) error) GPIOPin {
	if set == nil || get == nil {
		return nil
	}
	return &ledPin{name: name, get: get, set: set}
}

func (p *ledPin) Name() string   { return p.name }
func (p *ledPin) Caps() GPIOCaps { return GPIOCapOutput }

func (p *ledPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: only output supported", p.name)
	}
	if pull != GPIOPullNone {
		return fmt.Errorf("gpio: pin %s: pull unsupported", p.name)
	}
	return nil
}

func (p *ledPin) Read() (bool, error)    { return p.get() }
func (p *ledPin) Write(level bool) error { return p.set(level) }
