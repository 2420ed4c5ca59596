//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"machine"
	"math"
	"time"
)

// Pico is a Raspberry Pi Pico class board.
//
// UART0 on GP0 (TX) / GP1 (RX), 115200 8N1, carries debug output and is
// also exposed to applets as UART 0. Buttons are active-low on GP14 and
// GP15. Update writes the flash data region after the program.
type Pico struct {
	debug  *uartDebug
	led    *pinLED
	button *pinButton
	timer  *goTimer
	uart   *tinyGoUART
	gpio   GPIO
	update Update
}

// NewPico configures the board. Events are pushed to sink from pin
// interrupts and timer goroutines.
func NewPico(sink Sink) *Pico {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led := &pinLED{pin: ledPin}

	p := &Pico{
		debug:  &uartDebug{uart: uart, t0: time.Now()},
		led:    led,
		button: newPinButton(sink, machine.GP14, machine.GP15),
		timer:  newGoTimer(2, sink),
		uart:   &tinyGoUART{uart: uart, sink: sink},
		gpio: NewPinGPIO([]GPIOPin{newLEDPin("LED",
			func() (bool, error) { return ledPin.Get(), nil },
			func(on bool) error { ledPin.Set(on); return nil },
		)}),
		update: newTinyGoUpdate(),
	}
	return p
}

func (p *Pico) Debug() Debug         { return p.debug }
func (p *Pico) LED() LED             { return p.led }
func (p *Pico) Button() Button       { return p.button }
func (p *Pico) Timer() Timer         { return p.timer }
func (p *Pico) UART() UART           { return p.uart }
func (p *Pico) USBSerial() USBSerial { return UnsupportedUSBSerial{} }
func (p *Pico) GPIO() GPIO           { return p.gpio }
func (p *Pico) Radio() Radio         { return UnsupportedRadio{} }
func (p *Pico) Rng() Rng             { return tinyGoRng{} }
func (p *Pico) Crypto() Crypto       { return UnsupportedCrypto{} }
func (p *Pico) Store() Store         { return UnsupportedStore{} }
func (p *Pico) Update() Update       { return p.update }
func (p *Pico) Platform() Platform   { return picoPlatform{} }
func (p *Pico) Protocol() Protocol   { return UnsupportedProtocol{} }
func (p *Pico) Vendor() Vendor       { return UnsupportedVendor{} }

type uartDebug struct {
	uart *machine.UART
	t0   time.Time
}

func (d *uartDebug) Supported() bool { return true }

func (d *uartDebug) Println(line string) {
	for i := 0; i < len(line); i++ {
		d.uart.WriteByte(line[i])
	}
	d.uart.WriteByte('\r')
	d.uart.WriteByte('\n')
}

func (d *uartDebug) Time() uint64    { return uint64(time.Since(d.t0) / time.Microsecond) }
func (d *uartDebug) TimeMax() uint64 { return math.MaxUint64 }

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) Supported() bool                  { return true }
func (l *pinLED) Count() int                       { return 1 }
func (l *pinLED) Get(ID[KindLED]) (bool, error)    { return l.pin.Get(), nil }
func (l *pinLED) Set(_ ID[KindLED], on bool) error { l.pin.Set(on); return nil }
