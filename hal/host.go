//go:build !tinygo

package hal

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"boardlet/internal/buildinfo"
	"boardlet/internal/config"
)

// Host is the desktop simulator board.
//
// Its producers (Press, Inject, Submit and the timer goroutines) run on
// their own goroutines and only touch the scheduler through the Sink.
type Host struct {
	logger *slog.Logger
	sink   Sink

	debug    *hostDebug
	led      LED
	button   Button
	timer    Timer
	uart     UART
	usb      USBSerial
	gpio     GPIO
	radio    Radio
	crypto   Crypto
	store    Store
	update   Update
	platform *hostPlatform
	protocol Protocol

	// Concrete handles for the simulator's input side.
	leds    *hostLED
	buttons *hostButton
	uarts   *hostUART
	radios  *hostRadio
	proto   *hostProtocol
}

// HostOption customizes NewHost.
type HostOption func(*hostOptions)

type hostOptions struct {
	stdin  io.Reader
	stdout io.Writer
	now    func() time.Time
}

// WithStdio sets the streams behind debug output and USB serial.
func WithStdio(r io.Reader, w io.Writer) HostOption {
	return func(o *hostOptions) {
		o.stdin = r
		o.stdout = w
	}
}

// WithClock replaces the wall clock behind the debug time counter.
func WithClock(now func() time.Time) HostOption {
	return func(o *hostOptions) { o.now = now }
}

// NewHost builds a simulator board from a profile. Capabilities with a zero
// count or disabled in the profile are Unsupported stubs.
func NewHost(b config.Board, logger *slog.Logger, sink Sink, opts ...HostOption) (*Host, error) {
	o := hostOptions{stdin: os.Stdin, stdout: os.Stdout, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "host")

	h := &Host{
		logger: logger,
		sink:   sink,
		debug:  newHostDebug(o.stdout, o.now, b.ClockMax),
		led:    UnsupportedLED{},
		button: UnsupportedButton{},
		timer:  UnsupportedTimer{},
		uart:   UnsupportedUART{},
		usb:    UnsupportedUSBSerial{},
		radio:  UnsupportedRadio{},
		crypto: UnsupportedCrypto{},
		store:  UnsupportedStore{},
		update: UnsupportedUpdate{},
		platform: &hostPlatform{
			serial:  []byte(b.Serial),
			version: []byte(buildinfo.Short()),
			logger:  logger,
		},
		protocol: UnsupportedProtocol{},
	}

	if b.LEDs > 0 {
		h.leds = &hostLED{on: make([]bool, b.LEDs), logger: logger}
		h.led = h.leds
	}
	if b.Buttons > 0 {
		h.buttons = &hostButton{enabled: make([]bool, b.Buttons), sink: sink}
		h.button = h.buttons
	}
	if b.Timers > 0 {
		h.timer = newGoTimer(b.Timers, sink)
	}
	if b.UARTs > 0 {
		h.uarts = newHostUART(b.UARTs, sink)
		h.uart = h.uarts
	}
	if b.USBSerial {
		h.usb = newHostUSBSerial(o.stdin, o.stdout, sink, logger)
	}
	if b.Radio {
		h.radios = &hostRadio{sink: sink}
		h.radio = h.radios
	}
	if b.Crypto {
		h.crypto = hostCrypto{}
	}
	if b.Protocol {
		h.proto = &hostProtocol{sink: sink}
		h.protocol = h.proto
	}
	h.gpio = NewPinGPIO(h.hostPins(b.GPIOs))

	if b.Store.Path != "" {
		st, err := openHostStore(b.Store.Path)
		if err != nil {
			return nil, err
		}
		h.store = st
	}
	if u := b.Update; u.Path != "" {
		up, err := openHostUpdate(u.Path, u.Size, u.PageSize, u.ChunkSize, logger)
		if err != nil {
			return nil, err
		}
		h.update = up
	}
	return h, nil
}

// hostPins lays out n pins: the first mirrors LED 0 when there is one, the
// last is a 1 Hz square wave when there are more than two, the rest are
// free virtual pins.
func (h *Host) hostPins(n int) []GPIOPin {
	pins := make([]GPIOPin, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case i == 0 && h.leds != nil:
			leds := h.leds
			pins = append(pins, newLEDPin("LED0",
				func() (bool, error) { return leds.get(0), nil },
				func(on bool) error { leds.set(0, on); return nil },
			))
		case i == n-1 && n > 2:
			pins = append(pins, newSignalPin("SIG1HZ", time.Second, 500*time.Millisecond))
		default:
			pins = append(pins, newVirtualPin(fmt.Sprintf("GPIO%d", i), GPIOCapInput|GPIOCapOutput|GPIOCapPullUp|GPIOCapPullDown))
		}
	}
	return pins
}

func (h *Host) Debug() Debug         { return h.debug }
func (h *Host) LED() LED             { return h.led }
func (h *Host) Button() Button       { return h.button }
func (h *Host) Timer() Timer         { return h.timer }
func (h *Host) UART() UART           { return h.uart }
func (h *Host) USBSerial() USBSerial { return h.usb }
func (h *Host) GPIO() GPIO           { return h.gpio }
func (h *Host) Radio() Radio         { return h.radio }
func (h *Host) Rng() Rng             { return hostRng{} }
func (h *Host) Crypto() Crypto       { return h.crypto }
func (h *Host) Store() Store         { return h.store }
func (h *Host) Update() Update       { return h.update }
func (h *Host) Platform() Platform   { return h.platform }
func (h *Host) Protocol() Protocol   { return h.protocol }
func (h *Host) Vendor() Vendor       { return UnsupportedVendor{} }

// Press simulates a button edge. It is a no-op for unknown buttons.
func (h *Host) Press(button int, pressed bool) {
	if h.buttons != nil {
		h.buttons.press(button, pressed)
	}
}

// InjectUART appends bytes to a UART's receive buffer.
func (h *Host) InjectUART(uart int, data []byte) {
	if h.uarts != nil {
		h.uarts.inject(uart, data)
	}
}

// UARTOutput drains what the applet has written to a UART.
func (h *Host) UARTOutput(uart int) []byte {
	if h.uarts == nil {
		return nil
	}
	return h.uarts.output(uart)
}

// InjectRadio queues a received packet.
func (h *Host) InjectRadio(packet []byte) {
	if h.radios != nil {
		h.radios.inject(packet)
	}
}

// Submit queues a platform protocol request.
func (h *Host) Submit(req []byte) {
	if h.proto != nil {
		h.proto.submit(req)
	}
}

// Responses returns the platform protocol responses written so far.
func (h *Host) Responses() [][]byte {
	if h.proto == nil {
		return nil
	}
	return h.proto.responses()
}

// LEDStates returns a snapshot of the LED states.
func (h *Host) LEDStates() []bool {
	if h.leds == nil {
		return nil
	}
	return h.leds.snapshot()
}

// Console returns the most recent applet output lines.
func (h *Host) Console() []string { return h.debug.console.lines() }

// Rebooted reports whether the applet asked for a reboot.
func (h *Host) Rebooted() bool { return h.platform.rebooted.Load() }

type hostDebug struct {
	mu      sync.Mutex
	w       io.Writer
	console *consoleLog

	now func() time.Time
	t0  time.Time
	max uint64
}

func newHostDebug(w io.Writer, now func() time.Time, max uint64) *hostDebug {
	if max == 0 {
		max = math.MaxUint64
	}
	return &hostDebug{w: w, console: newConsoleLog(consoleLines), now: now, t0: now(), max: max}
}

func (d *hostDebug) Supported() bool { return true }

func (d *hostDebug) Println(line string) {
	d.mu.Lock()
	if d.w != nil {
		fmt.Fprintln(d.w, line)
	}
	d.mu.Unlock()
	d.console.append(line)
}

func (d *hostDebug) Time() uint64 {
	us := uint64(d.now().Sub(d.t0) / time.Microsecond)
	if d.max == math.MaxUint64 {
		return us
	}
	return us % (d.max + 1)
}

func (d *hostDebug) TimeMax() uint64 { return d.max }

type hostLED struct {
	mu     sync.Mutex
	on     []bool
	logger *slog.Logger
}

func (l *hostLED) Supported() bool { return true }
func (l *hostLED) Count() int      { return len(l.on) }

func (l *hostLED) Get(id ID[KindLED]) (bool, error) { return l.get(id.Index()), nil }

func (l *hostLED) Set(id ID[KindLED], on bool) error {
	l.set(id.Index(), on)
	return nil
}

func (l *hostLED) get(i uint32) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on[i]
}

func (l *hostLED) set(i uint32, on bool) {
	l.mu.Lock()
	changed := l.on[i] != on
	l.on[i] = on
	l.mu.Unlock()
	if changed {
		l.logger.Debug("led", "led", i, "on", on)
	}
}

func (l *hostLED) snapshot() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]bool(nil), l.on...)
}

// hostButton pushes under mu so a press racing Disable is either delivered
// before Disable returns or not at all.
type hostButton struct {
	mu      sync.Mutex
	enabled []bool
	sink    Sink
}

func (b *hostButton) Supported() bool { return true }
func (b *hostButton) Count() int      { return len(b.enabled) }

func (b *hostButton) Enable(id ID[KindButton]) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled[id.Index()] = true
	return nil
}

func (b *hostButton) Disable(id ID[KindButton]) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled[id.Index()] = false
	return nil
}

func (b *hostButton) press(i int, pressed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.enabled) || !b.enabled[i] {
		return
	}
	b.sink.Push(ButtonEvent{Button: uint32(i), Pressed: pressed})
}

type hostRng struct{}

func (hostRng) Supported() bool { return true }

func (hostRng) FillBytes(p []byte) error {
	if _, err := rand.Read(p); err != nil {
		return &Error{Space: SpaceWorld, Code: CodeGeneric, Msg: err.Error()}
	}
	return nil
}

type hostPlatform struct {
	serial   []byte
	version  []byte
	logger   *slog.Logger
	rebooted atomic.Bool
}

func (p *hostPlatform) Supported() bool { return true }
func (p *hostPlatform) Serial() []byte  { return p.serial }
func (p *hostPlatform) Version() []byte { return p.version }

func (p *hostPlatform) Reboot() error {
	p.logger.Info("reboot requested")
	p.rebooted.Store(true)
	return nil
}
